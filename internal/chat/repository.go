package chat

import (
	"strings"

	"doc-collab-server/internal/domain"

	"gorm.io/gorm"
)

// ChatRepository defines the interface for chat and message data access
type ChatRepository interface {
	FindPair(a, b uint64) (*domain.Chat, error)
	FindByID(id uint64) (*domain.Chat, error)
	Create(chat *domain.Chat) error
	ListByAuthor(authorID uint64) ([]domain.Chat, error)
	CreateMessage(msg *domain.Message) error
	ListMessages(chatID uint64) ([]domain.Message, error)
	SearchMessages(authorID uint64, keyword string) ([]domain.Message, error)
}

// ChatRepositoryImpl implements ChatRepository
type ChatRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new chat repository
func NewRepository(db *gorm.DB) ChatRepository {
	return &ChatRepositoryImpl{db: db}
}

// FindPair looks the chat up under both orderings of the pair; chats
// are unordered and only logically unique.
func (r *ChatRepositoryImpl) FindPair(a, b uint64) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.db.Where(
		"(initiator_id = ? AND recipient_id = ?) OR (initiator_id = ? AND recipient_id = ?)",
		a, b, b, a,
	).First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepositoryImpl) FindByID(id uint64) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.db.First(&chat, id).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *ChatRepositoryImpl) Create(chat *domain.Chat) error {
	return r.db.Create(chat).Error
}

func (r *ChatRepositoryImpl) ListByAuthor(authorID uint64) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.Where("initiator_id = ? OR recipient_id = ?", authorID, authorID).Find(&chats).Error
	return chats, err
}

func (r *ChatRepositoryImpl) CreateMessage(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

func (r *ChatRepositoryImpl) ListMessages(chatID uint64) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.Where("chat_id = ?", chatID).Order("id ASC").Find(&messages).Error
	return messages, err
}

func (r *ChatRepositoryImpl) SearchMessages(authorID uint64, keyword string) ([]domain.Message, error) {
	var messages []domain.Message
	pattern := "%" + strings.ToLower(keyword) + "%"
	err := r.db.Where(
		"(sender_id = ? OR receiver_id = ?) AND LOWER(body) LIKE ?",
		authorID, authorID, pattern,
	).Order("id DESC").Find(&messages).Error
	return messages, err
}

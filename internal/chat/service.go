package chat

import (
	"context"
	defError "errors"

	"doc-collab-server/internal/domain"
	"doc-collab-server/internal/errors"

	"gorm.io/gorm"
)

const NameNotMember = "chat.not_member"

// AuthorProvider checks that chat parties exist.
type AuthorProvider interface {
	GetAuthor(ctx context.Context, id uint64) (*domain.Author, error)
}

// Service defines the interface for messaging logic
type Service interface {
	GetOrCreateChat(ctx context.Context, a1, a2, actorID uint64) (*domain.Chat, error)
	ListChats(ctx context.Context, actorID uint64) ([]domain.Chat, error)
	GetChat(ctx context.Context, chatID, actorID uint64) (*domain.Chat, error)
	Send(ctx context.Context, senderID, receiverID uint64, body string, actorID uint64) (*domain.Message, error)
	History(ctx context.Context, chatID uint64, page, pageSize int, actorID uint64) ([]domain.Message, error)
	SearchMessages(ctx context.Context, keyword string, actorID uint64) ([]domain.Message, error)
}

// DefaultService implements Service
type DefaultService struct {
	repository ChatRepository
	authors    AuthorProvider
}

// NewService creates a new chat service
func NewService(repository ChatRepository, authors AuthorProvider) Service {
	return &DefaultService{repository: repository, authors: authors}
}

// GetOrCreateChat resolves the chat between two authors, creating it
// on first contact. One chat per unordered pair: both orderings are
// checked before creating. The actor must be one of the parties.
func (s *DefaultService) GetOrCreateChat(ctx context.Context, a1, a2, actorID uint64) (*domain.Chat, error) {
	if actorID == 0 || (actorID != a1 && actorID != a2) {
		return nil, errors.Biz(NameNotMember)
	}
	if _, err := s.authors.GetAuthor(ctx, a1); err != nil {
		return nil, err
	}
	if _, err := s.authors.GetAuthor(ctx, a2); err != nil {
		return nil, err
	}

	chat, err := s.repository.FindPair(a1, a2)
	if err == nil {
		return chat, nil
	}
	if !defError.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat = &domain.Chat{InitiatorID: &a1, RecipientID: &a2}
	if err := s.repository.Create(chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// ListChats lists every chat the actor takes part in.
func (s *DefaultService) ListChats(ctx context.Context, actorID uint64) ([]domain.Chat, error) {
	if actorID == 0 {
		return nil, errors.Forbidden()
	}
	return s.repository.ListByAuthor(actorID)
}

// GetChat fetches one chat, parties only.
func (s *DefaultService) GetChat(ctx context.Context, chatID, actorID uint64) (*domain.Chat, error) {
	chat, err := s.repository.FindByID(chatID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound()
		}
		return nil, err
	}
	if !chat.Member(actorID) {
		return nil, errors.Biz(NameNotMember)
	}
	return chat, nil
}

// Send appends a message, resolving (or creating) the pair's chat
// first. Only the sender can submit their own messages.
func (s *DefaultService) Send(ctx context.Context, senderID, receiverID uint64, body string, actorID uint64) (*domain.Message, error) {
	if actorID == 0 || actorID != senderID {
		return nil, errors.Forbidden()
	}
	if body == "" {
		return nil, errors.BadRequest("empty message")
	}

	chat, err := s.GetOrCreateChat(ctx, senderID, receiverID, actorID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ChatID:     chat.ID,
		SenderID:   &senderID,
		ReceiverID: &receiverID,
		Body:       body,
	}
	if err := s.repository.CreateMessage(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// History pages through a chat newest-first: all message ids are
// reversed, the page is sliced out, then re-filtered to messages where
// the actor is sender or receiver. The re-check is defensive; chat
// membership already implies it.
func (s *DefaultService) History(ctx context.Context, chatID uint64, page, pageSize int, actorID uint64) ([]domain.Message, error) {
	chat, err := s.GetChat(ctx, chatID, actorID)
	if err != nil {
		return nil, err
	}
	if page < 0 || pageSize <= 0 {
		return nil, errors.BadRequest("invalid page")
	}

	messages, err := s.repository.ListMessages(chat.ID)
	if err != nil {
		return nil, err
	}

	// newest-id-first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	start := page * pageSize
	if start >= len(messages) {
		return []domain.Message{}, nil
	}
	end := start + pageSize
	if end > len(messages) {
		end = len(messages)
	}

	pageSlice := messages[start:end]
	filtered := make([]domain.Message, 0, len(pageSlice))
	for _, m := range pageSlice {
		if (m.SenderID != nil && *m.SenderID == actorID) || (m.ReceiverID != nil && *m.ReceiverID == actorID) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// SearchMessages filters the actor's own messages by body substring.
func (s *DefaultService) SearchMessages(ctx context.Context, keyword string, actorID uint64) ([]domain.Message, error) {
	if actorID == 0 {
		return nil, errors.Forbidden()
	}
	return s.repository.SearchMessages(actorID, keyword)
}

package author

import (
	"doc-collab-server/internal/domain"

	"gorm.io/gorm"
)

// AuthorRepository defines the interface for author and token data access
type AuthorRepository interface {
	Create(author *domain.Author) error
	Save(author *domain.Author) error
	FindByEmail(email string) (*domain.Author, error)
	FindByID(id uint64) (*domain.Author, error)
	Search(nickname string) ([]domain.Author, error)
	FindToken(authorID uint64) (*domain.Token, error)
	FindTokenByContent(content string) (*domain.Token, error)
	CreateToken(token *domain.Token) error
	SaveToken(token *domain.Token) error
}

// AuthorRepositoryImpl implements AuthorRepository
type AuthorRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new author repository
func NewRepository(db *gorm.DB) AuthorRepository {
	return &AuthorRepositoryImpl{db: db}
}

func (r *AuthorRepositoryImpl) Create(author *domain.Author) error {
	return r.db.Create(author).Error
}

func (r *AuthorRepositoryImpl) Save(author *domain.Author) error {
	return r.db.Save(author).Error
}

func (r *AuthorRepositoryImpl) FindByEmail(email string) (*domain.Author, error) {
	var author domain.Author
	err := r.db.Where("email = ?", email).First(&author).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *AuthorRepositoryImpl) FindByID(id uint64) (*domain.Author, error) {
	var author domain.Author
	err := r.db.First(&author, id).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// Search lists authors by exact nickname, or all when empty.
func (r *AuthorRepositoryImpl) Search(nickname string) ([]domain.Author, error) {
	var authors []domain.Author
	q := r.db
	if nickname != "" {
		q = q.Where("nickname = ?", nickname)
	}
	err := q.Find(&authors).Error
	return authors, err
}

func (r *AuthorRepositoryImpl) FindToken(authorID uint64) (*domain.Token, error) {
	var token domain.Token
	err := r.db.Where("author_id = ?", authorID).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *AuthorRepositoryImpl) FindTokenByContent(content string) (*domain.Token, error) {
	var token domain.Token
	err := r.db.Where("content = ?", content).First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *AuthorRepositoryImpl) CreateToken(token *domain.Token) error {
	return r.db.Create(token).Error
}

func (r *AuthorRepositoryImpl) SaveToken(token *domain.Token) error {
	return r.db.Save(token).Error
}

package doctree

import (
	"doc-collab-server/internal/domain"

	"gorm.io/gorm"
)

// DocTreeRepository defines the interface for tree persistence
type DocTreeRepository interface {
	FindByAuthor(authorID uint64) (*domain.DocTree, error)
	Create(tree *domain.DocTree) error
	Save(tree *domain.DocTree) error
}

// DocTreeRepositoryImpl implements DocTreeRepository
type DocTreeRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new doc tree repository
func NewRepository(db *gorm.DB) DocTreeRepository {
	return &DocTreeRepositoryImpl{db: db}
}

func (r *DocTreeRepositoryImpl) FindByAuthor(authorID uint64) (*domain.DocTree, error) {
	var tree domain.DocTree
	err := r.db.Where("author_id = ?", authorID).First(&tree).Error
	if err != nil {
		return nil, err
	}
	return &tree, nil
}

func (r *DocTreeRepositoryImpl) Create(tree *domain.DocTree) error {
	return r.db.Create(tree).Error
}

func (r *DocTreeRepositoryImpl) Save(tree *domain.DocTree) error {
	return r.db.Save(tree).Error
}

package document

import (
	"doc-collab-server/internal/domain"

	"gorm.io/gorm"
)

// DocumentRepository defines the interface for document data access
type DocumentRepository interface {
	CreateWithOwner(doc *domain.Doc, ownerID uint64) error
	FindByID(id uint64) (*domain.Doc, error)
	FindByIDs(ids []uint64) ([]domain.Doc, error)
	Save(doc *domain.Doc) error
	DeleteWithAccess(docID uint64) error
	BulkDelete(docIDs []uint64) error
	BulkUnlink(authorID uint64, docIDs []uint64) error
}

// DocumentRepositoryImpl implements DocumentRepository
type DocumentRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new document repository
func NewRepository(db *gorm.DB) DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

// CreateWithOwner creates the document and its owner access row as one
// unit. A document without an owner row is an invariant violation, so
// the two writes share a transaction.
func (r *DocumentRepositoryImpl) CreateWithOwner(doc *domain.Doc, ownerID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}
		return tx.Create(&domain.Access{
			AuthorID: ownerID,
			DocID:    doc.ID,
			Role:     domain.RoleOwner,
		}).Error
	})
}

func (r *DocumentRepositoryImpl) FindByID(id uint64) (*domain.Doc, error) {
	var doc domain.Doc
	err := r.db.First(&doc, id).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) FindByIDs(ids []uint64) ([]domain.Doc, error) {
	var docs []domain.Doc
	if len(ids) == 0 {
		return docs, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&docs).Error
	return docs, err
}

func (r *DocumentRepositoryImpl) Save(doc *domain.Doc) error {
	return r.db.Save(doc).Error
}

// DeleteWithAccess hard-deletes the document and cascades its access
// and invite rows.
func (r *DocumentRepositoryImpl) DeleteWithAccess(docID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doc_id = ?", docID).Delete(&domain.Access{}).Error; err != nil {
			return err
		}
		if err := tx.Where("doc_id = ?", docID).Delete(&domain.InviteToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Doc{}, docID).Error
	})
}

// BulkDelete removes documents and their access rows in two bulk
// statements.
func (r *DocumentRepositoryImpl) BulkDelete(docIDs []uint64) error {
	if len(docIDs) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doc_id IN ?", docIDs).Delete(&domain.Access{}).Error; err != nil {
			return err
		}
		if err := tx.Where("doc_id IN ?", docIDs).Delete(&domain.InviteToken{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", docIDs).Delete(&domain.Doc{}).Error
	})
}

// BulkUnlink removes only the author's own access rows; the documents
// survive for everyone else.
func (r *DocumentRepositoryImpl) BulkUnlink(authorID uint64, docIDs []uint64) error {
	if len(docIDs) == 0 {
		return nil
	}
	return r.db.Where("author_id = ? AND doc_id IN ?", authorID, docIDs).Delete(&domain.Access{}).Error
}

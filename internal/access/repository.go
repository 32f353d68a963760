package access

import (
	"doc-collab-server/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessRepository defines the interface for access and invite rows
type AccessRepository interface {
	Find(authorID, docID uint64) (*domain.Access, error)
	Upsert(authorID, docID uint64, role domain.Role) error
	Delete(authorID, docID uint64) error
	ListByAuthor(authorID uint64) ([]domain.Access, error)
	ListByAuthorAndRole(authorID uint64, role domain.Role) ([]domain.Access, error)
	FindOwner(docID uint64) (*domain.Access, error)
	FindInvite(docID uint64, role domain.Role) (*domain.InviteToken, error)
	CreateInvite(invite *domain.InviteToken) error
	ListInvites(docID uint64) ([]domain.InviteToken, error)
}

// AccessRepositoryImpl implements AccessRepository
type AccessRepositoryImpl struct {
	db *gorm.DB
}

// NewRepository creates a new access repository
func NewRepository(db *gorm.DB) AccessRepository {
	return &AccessRepositoryImpl{db: db}
}

func (r *AccessRepositoryImpl) Find(authorID, docID uint64) (*domain.Access, error) {
	var access domain.Access
	err := r.db.Where("author_id = ? AND doc_id = ?", authorID, docID).First(&access).Error
	if err != nil {
		return nil, err
	}
	return &access, nil
}

// Upsert creates the access row or updates its role, keeping at most
// one row per (author, doc) pair.
func (r *AccessRepositoryImpl) Upsert(authorID, docID uint64, role domain.Role) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "author_id"}, {Name: "doc_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"role": role}),
	}).Create(&domain.Access{
		AuthorID: authorID,
		DocID:    docID,
		Role:     role,
	}).Error
}

func (r *AccessRepositoryImpl) Delete(authorID, docID uint64) error {
	return r.db.Where("author_id = ? AND doc_id = ?", authorID, docID).Delete(&domain.Access{}).Error
}

func (r *AccessRepositoryImpl) ListByAuthor(authorID uint64) ([]domain.Access, error) {
	var accesses []domain.Access
	err := r.db.Where("author_id = ?", authorID).Find(&accesses).Error
	return accesses, err
}

func (r *AccessRepositoryImpl) ListByAuthorAndRole(authorID uint64, role domain.Role) ([]domain.Access, error) {
	var accesses []domain.Access
	err := r.db.Where("author_id = ? AND role = ?", authorID, role).Find(&accesses).Error
	return accesses, err
}

func (r *AccessRepositoryImpl) FindOwner(docID uint64) (*domain.Access, error) {
	var access domain.Access
	err := r.db.Where("doc_id = ? AND role = ?", docID, domain.RoleOwner).First(&access).Error
	if err != nil {
		return nil, err
	}
	return &access, nil
}

func (r *AccessRepositoryImpl) FindInvite(docID uint64, role domain.Role) (*domain.InviteToken, error) {
	var invite domain.InviteToken
	err := r.db.Where("doc_id = ? AND role = ?", docID, role).First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *AccessRepositoryImpl) CreateInvite(invite *domain.InviteToken) error {
	return r.db.Create(invite).Error
}

func (r *AccessRepositoryImpl) ListInvites(docID uint64) ([]domain.InviteToken, error) {
	var invites []domain.InviteToken
	err := r.db.Where("doc_id = ?", docID).Find(&invites).Error
	return invites, err
}

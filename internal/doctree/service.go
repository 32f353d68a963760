package doctree

import (
	"context"
	defError "errors"
	"strconv"

	"doc-collab-server/internal/domain"
	"doc-collab-server/internal/errors"
	"doc-collab-server/internal/utils"

	"gorm.io/gorm"
)

// AccessProvider lists the documents an author can reach.
type AccessProvider interface {
	AccessibleDocIDs(ctx context.Context, authorID uint64) ([]uint64, error)
}

// DocProvider resolves document metadata for tree leaves.
type DocProvider interface {
	FindDocs(ctx context.Context, ids []uint64) ([]domain.Doc, error)
}

// Service defines the interface for the document tree reconciler
type Service interface {
	Get(ctx context.Context, authorID, actorID uint64) (string, error)
	Save(ctx context.Context, authorID uint64, content string, actorID uint64) (string, error)
}

// DefaultService implements Service
type DefaultService struct {
	repository DocTreeRepository
	accesses   AccessProvider
	docs       DocProvider
}

// NewService creates a new doc tree service
func NewService(repository DocTreeRepository, accesses AccessProvider, docs DocProvider) Service {
	return &DefaultService{repository: repository, accesses: accesses, docs: docs}
}

// leafKey derives the stable child key a synthesized leaf is inserted
// under. Collisions are acceptable: keys are display ordering hints,
// not identity.
func leafKey(doc domain.Doc) string {
	return utils.Digest(doc.Label+"-"+strconv.FormatUint(doc.ID, 10), 3)
}

// Get returns the author's tree, reconciled so that every currently
// accessible document appears as a leaf. Reconciliation only adds:
// leaves for lost documents linger until the client prunes them.
// Self only.
func (s *DefaultService) Get(ctx context.Context, authorID, actorID uint64) (string, error) {
	if actorID == 0 || actorID != authorID {
		return "", errors.Forbidden()
	}

	row, created, err := s.loadOrCreate(authorID)
	if err != nil {
		return "", err
	}

	root, err := domain.ParseTree(row.Content)
	if err != nil {
		// a corrupt stored tree heals into a fresh reconciled one
		root = domain.NewBranch()
	}

	changed, err := s.reconcile(ctx, authorID, root)
	if err != nil {
		return "", err
	}

	if changed || created {
		content, err := root.Serialize()
		if err != nil {
			return "", err
		}
		row.Content = content
		row.Timestamp = utils.NowMillis()
		if err := s.repository.Save(row); err != nil {
			return "", err
		}
	}
	return row.Content, nil
}

// Save sanitizes and persists a client-supplied tree: every leaf is
// stripped to exactly {id, recycled} before storage, then the tree is
// reconciled like on read. Self only.
func (s *DefaultService) Save(ctx context.Context, authorID uint64, content string, actorID uint64) (string, error) {
	if actorID == 0 || actorID != authorID {
		return "", errors.Forbidden()
	}

	root, err := domain.ParseTree(content)
	if err != nil {
		return "", errors.BadRequest("malformed tree")
	}
	root.Trim()

	if _, err := s.reconcile(ctx, authorID, root); err != nil {
		return "", err
	}

	serialized, err := root.Serialize()
	if err != nil {
		return "", err
	}

	row, _, err := s.loadOrCreate(authorID)
	if err != nil {
		return "", err
	}
	row.Content = serialized
	row.Timestamp = utils.NowMillis()
	if err := s.repository.Save(row); err != nil {
		return "", err
	}
	return row.Content, nil
}

func (s *DefaultService) loadOrCreate(authorID uint64) (*domain.DocTree, bool, error) {
	row, err := s.repository.FindByAuthor(authorID)
	if err == nil {
		return row, false, nil
	}
	if !defError.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	row = &domain.DocTree{
		AuthorID:  authorID,
		Content:   "",
		Timestamp: utils.NowMillis(),
	}
	if err := s.repository.Create(row); err != nil {
		return nil, false, err
	}
	return row, true, nil
}

func (s *DefaultService) reconcile(ctx context.Context, authorID uint64, root *domain.TreeNode) (bool, error) {
	ids, err := s.accesses.AccessibleDocIDs(ctx, authorID)
	if err != nil {
		return false, err
	}
	docs, err := s.docs.FindDocs(ctx, ids)
	if err != nil {
		return false, err
	}
	return root.Reconcile(docs, leafKey), nil
}

package document

import (
	"context"
	defError "errors"
	"sort"
	"strconv"
	"strings"

	"doc-collab-server/internal/access"
	"doc-collab-server/internal/domain"
	"doc-collab-server/internal/errors"
	"doc-collab-server/internal/logger"

	"gorm.io/gorm"
)

// maxRangeSpan bounds a single "from-to" expansion.
const maxRangeSpan = 10000

// DocPatch is a partial document metadata update.
type DocPatch struct {
	Label    *string
	Type     *string
	Recycled *bool
}

// BatchDeleteResult partitions a batch-delete input by what actually
// happened to each id. Partial success is expected and reported, not
// an error.
type BatchDeleteResult struct {
	Deleted  []uint64 `json:"deleted"`
	Unlinked []uint64 `json:"unlinked"`
	Denied   []uint64 `json:"denied"`
}

// Service defines the interface for document registry logic
type Service interface {
	Create(ctx context.Context, label, docType string, authorID, actorID uint64) (*domain.Doc, error)
	Get(ctx context.Context, docID, actorID uint64, code string) (*domain.Doc, error)
	Edit(ctx context.Context, docID uint64, patch DocPatch, actorID uint64) (*domain.Doc, error)
	Delete(ctx context.Context, docID, actorID uint64) error
	ListByRole(ctx context.Context, authorID uint64, role domain.Role, actorID uint64) ([]domain.Doc, error)
	BatchResolve(ctx context.Context, ids []uint64, ranges []string, actorID uint64) ([]domain.Doc, error)
	BatchDelete(ctx context.Context, ids []uint64, ranges []string, actorID uint64) (*BatchDeleteResult, error)
	Search(ctx context.Context, keyword string, actorID uint64) ([]domain.Doc, error)
}

// DefaultService implements Service
type DefaultService struct {
	repository DocumentRepository
	engine     access.Engine
}

// NewService creates a new document service
func NewService(repository DocumentRepository, engine access.Engine) Service {
	return &DefaultService{repository: repository, engine: engine}
}

// Provider adapts the repository for the access engine's document
// lookups without a package cycle.
type Provider struct {
	repository DocumentRepository
}

func NewProvider(repository DocumentRepository) *Provider {
	return &Provider{repository: repository}
}

func (p *Provider) FindDoc(ctx context.Context, id uint64) (*domain.Doc, error) {
	doc, err := p.repository.FindByID(id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound()
		}
		return nil, err
	}
	return doc, nil
}

func (p *Provider) FindDocs(ctx context.Context, ids []uint64) ([]domain.Doc, error) {
	return p.repository.FindByIDs(ids)
}

// Create registers a document owned by authorID. Authors only create
// documents for themselves.
func (s *DefaultService) Create(ctx context.Context, label, docType string, authorID, actorID uint64) (*domain.Doc, error) {
	if actorID == 0 || actorID != authorID {
		return nil, errors.Forbidden()
	}

	doc := &domain.Doc{Label: label, Type: docType}
	if err := s.repository.CreateWithOwner(doc, authorID); err != nil {
		return nil, err
	}
	log := logger.With("document")
	log.Info().Uint64("id", doc.ID).Uint64("owner", authorID).Msg("document created")
	return doc, nil
}

// Get fetches document metadata for a reader. A redeemable invite code
// may ride along and is applied before the read check, so following an
// invite link grants and reads in one round trip.
func (s *DefaultService) Get(ctx context.Context, docID, actorID uint64, code string) (*domain.Doc, error) {
	doc, err := s.repository.FindByID(docID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound()
		}
		return nil, err
	}

	if code != "" {
		if err := s.engine.Redeem(ctx, docID, actorID, code); err != nil {
			return nil, err
		}
	}

	if !s.engine.CanRead(ctx, actorID, docID) {
		return nil, errors.Biz(access.NameNotReader)
	}
	return doc, nil
}

// Edit updates document metadata, dominator only.
func (s *DefaultService) Edit(ctx context.Context, docID uint64, patch DocPatch, actorID uint64) (*domain.Doc, error) {
	doc, err := s.Get(ctx, docID, actorID, "")
	if err != nil {
		return nil, err
	}
	if !s.engine.CanDominate(ctx, actorID, docID) {
		return nil, errors.Biz(access.NameNotDominator)
	}

	if patch.Label != nil {
		doc.Label = *patch.Label
	}
	if patch.Type != nil {
		doc.Type = *patch.Type
	}
	if patch.Recycled != nil {
		doc.Recycled = *patch.Recycled
	}
	if err := s.repository.Save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete is contextual: the owner hard-deletes the document and all
// its access rows; a lesser member merely removes their own access and
// the document persists for everyone else.
func (s *DefaultService) Delete(ctx context.Context, docID, actorID uint64) error {
	if _, err := s.repository.FindByID(docID); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound()
		}
		return err
	}

	switch role := s.engine.RoleOf(ctx, actorID, docID); {
	case role == domain.RoleOwner:
		return s.repository.DeleteWithAccess(docID)
	case role >= domain.RoleRead:
		return s.engine.RemoveAccess(ctx, actorID, docID)
	default:
		return errors.Biz(access.NameNotReader)
	}
}

// ListByRole lists the documents authorID joined with exactly the
// given role. Self only.
func (s *DefaultService) ListByRole(ctx context.Context, authorID uint64, role domain.Role, actorID uint64) ([]domain.Doc, error) {
	if actorID == 0 || actorID != authorID {
		return nil, errors.Forbidden()
	}
	ids, err := s.engine.ListByRole(ctx, authorID, role)
	if err != nil {
		return nil, err
	}
	return s.repository.FindByIDs(ids)
}

// expandBatch unions explicit ids with inclusive "from-to" ranges.
func expandBatch(ids []uint64, ranges []string) (map[uint64]bool, error) {
	set := map[uint64]bool{}
	for _, id := range ids {
		set[id] = true
	}
	for _, r := range ranges {
		parts := strings.SplitN(r, "-", 2)
		if len(parts) != 2 {
			return nil, errors.BadRequest("malformed range " + r)
		}
		from, err1 := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
		to, err2 := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
		if err1 != nil || err2 != nil {
			return nil, errors.BadRequest("malformed range " + r)
		}
		if to > from && to-from > maxRangeSpan {
			return nil, errors.BadRequest("range too wide " + r)
		}
		for id := from; id <= to; id++ {
			set[id] = true
		}
	}
	return set, nil
}

// BatchResolve expands ranges, unions with explicit ids, and returns
// the documents the actor can read. Denied and missing ids are
// silently dropped; omission is the only signal.
func (s *DefaultService) BatchResolve(ctx context.Context, ids []uint64, ranges []string, actorID uint64) ([]domain.Doc, error) {
	set, err := expandBatch(ids, ranges)
	if err != nil {
		return nil, err
	}

	resolved := make([]domain.Doc, 0, len(set))
	for id := range set {
		if !s.engine.CanRead(ctx, actorID, id) {
			continue
		}
		doc, err := s.repository.FindByID(id)
		if err != nil {
			continue
		}
		resolved = append(resolved, *doc)
	}
	sort.Slice(resolved, func(i, j int) bool { return resolved[i].ID < resolved[j].ID })
	return resolved, nil
}

// BatchDelete expands the same way, then partitions by the actor's own
// role: owner → deleted, lesser access → unlinked, none → denied. The
// three buckets are disjoint and cover the resolved input set.
func (s *DefaultService) BatchDelete(ctx context.Context, ids []uint64, ranges []string, actorID uint64) (*BatchDeleteResult, error) {
	set, err := expandBatch(ids, ranges)
	if err != nil {
		return nil, err
	}

	result := &BatchDeleteResult{
		Deleted:  []uint64{},
		Unlinked: []uint64{},
		Denied:   []uint64{},
	}
	for id := range set {
		switch role := s.engine.RoleOf(ctx, actorID, id); {
		case role == domain.RoleOwner:
			result.Deleted = append(result.Deleted, id)
		case role >= domain.RoleRead:
			result.Unlinked = append(result.Unlinked, id)
		default:
			result.Denied = append(result.Denied, id)
		}
	}

	if err := s.repository.BulkDelete(result.Deleted); err != nil {
		return nil, err
	}
	if err := s.repository.BulkUnlink(actorID, result.Unlinked); err != nil {
		return nil, err
	}

	sortIDs(result.Deleted)
	sortIDs(result.Unlinked)
	sortIDs(result.Denied)
	return result, nil
}

func sortIDs(ids []uint64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

// Search filters the actor's accessible documents by case-insensitive
// label substring.
func (s *DefaultService) Search(ctx context.Context, keyword string, actorID uint64) ([]domain.Doc, error) {
	ids, err := s.engine.AccessibleDocIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}
	docs, err := s.repository.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(keyword)
	matched := make([]domain.Doc, 0, len(docs))
	for _, doc := range docs {
		if strings.Contains(strings.ToLower(doc.Label), needle) {
			matched = append(matched, doc)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched, nil
}

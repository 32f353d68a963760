package doctree

import (
	"context"
	"testing"

	"doc-collab-server/internal/domain"
	apiError "doc-collab-server/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeTreeRepo is an in-memory DocTreeRepository.
type fakeTreeRepo struct {
	rows   map[uint64]domain.DocTree
	nextID uint64
	saves  int
}

func newFakeTreeRepo() *fakeTreeRepo {
	return &fakeTreeRepo{rows: map[uint64]domain.DocTree{}, nextID: 1}
}

func (r *fakeTreeRepo) FindByAuthor(authorID uint64) (*domain.DocTree, error) {
	row, ok := r.rows[authorID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

func (r *fakeTreeRepo) Create(row *domain.DocTree) error {
	row.ID = r.nextID
	r.nextID++
	r.rows[row.AuthorID] = *row
	return nil
}

func (r *fakeTreeRepo) Save(row *domain.DocTree) error {
	r.rows[row.AuthorID] = *row
	r.saves++
	return nil
}

type fakeAccesses struct {
	accessible map[uint64][]uint64
}

func (f *fakeAccesses) AccessibleDocIDs(ctx context.Context, authorID uint64) ([]uint64, error) {
	return f.accessible[authorID], nil
}

type fakeDocs struct {
	docs map[uint64]domain.Doc
}

func (f *fakeDocs) FindDocs(ctx context.Context, ids []uint64) ([]domain.Doc, error) {
	var out []domain.Doc
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func setup(accessible []uint64, docs ...domain.Doc) (Service, *fakeTreeRepo) {
	repo := newFakeTreeRepo()
	byID := map[uint64]domain.Doc{}
	for _, doc := range docs {
		byID[doc.ID] = doc
	}
	service := NewService(
		repo,
		&fakeAccesses{accessible: map[uint64][]uint64{1: accessible}},
		&fakeDocs{docs: byID},
	)
	return service, repo
}

func leafIDs(t *testing.T, content string) map[uint64]bool {
	t.Helper()
	root, err := domain.ParseTree(content)
	require.NoError(t, err)
	return root.LeafIDs()
}

func TestGet_CreatesAndReconcilesFreshTree(t *testing.T) {
	service, repo := setup(
		[]uint64{10, 20},
		domain.Doc{ID: 10, Label: "a"},
		domain.Doc{ID: 20, Label: "b", Recycled: true},
	)
	ctx := context.Background()

	content, err := service.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]bool{10: true, 20: true}, leafIDs(t, content))

	// stored row matches what was returned
	row, err := repo.FindByAuthor(1)
	require.NoError(t, err)
	assert.Equal(t, content, row.Content)
}

func TestGet_SelfOnly(t *testing.T) {
	service, _ := setup(nil)
	ctx := context.Background()

	_, err := service.Get(ctx, 1, 2)
	var biz *apiError.BizError
	require.ErrorAs(t, err, &biz)
	assert.Equal(t, apiError.NameForbidden, biz.Name)

	_, err = service.Get(ctx, 1, 0)
	require.ErrorAs(t, err, &biz)
	assert.Equal(t, apiError.NameForbidden, biz.Name)
}

func TestGet_IdempotentWhenNothingChanged(t *testing.T) {
	service, repo := setup([]uint64{10}, domain.Doc{ID: 10, Label: "a"})
	ctx := context.Background()

	first, err := service.Get(ctx, 1, 1)
	require.NoError(t, err)
	savesAfterFirst := repo.saves

	second, err := service.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, savesAfterFirst, repo.saves, "an unchanged tree is not rewritten")
}

func TestGet_CorruptTreeHeals(t *testing.T) {
	service, repo := setup([]uint64{10}, domain.Doc{ID: 10, Label: "a"})
	ctx := context.Background()

	repo.rows[1] = domain.DocTree{ID: 1, AuthorID: 1, Content: "{not json"}

	content, err := service.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]bool{10: true}, leafIDs(t, content))
}

func TestGet_ReconcileAddsNewlyAccessible(t *testing.T) {
	repo := newFakeTreeRepo()
	accesses := &fakeAccesses{accessible: map[uint64][]uint64{1: {10}}}
	docs := &fakeDocs{docs: map[uint64]domain.Doc{
		10: {ID: 10, Label: "a"},
		20: {ID: 20, Label: "b"},
	}}
	service := NewService(repo, accesses, docs)
	ctx := context.Background()

	content, err := service.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]bool{10: true}, leafIDs(t, content))

	// a grant lands between reads
	accesses.accessible[1] = []uint64{10, 20}

	content, err = service.Get(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]bool{10: true, 20: true}, leafIDs(t, content))
}

func TestSave_TrimsClientFields(t *testing.T) {
	service, _ := setup([]uint64{5}, domain.Doc{ID: 5, Label: "kept"})
	ctx := context.Background()

	submitted := `{"children":{"mine":{"id":5,"recycled":false,"label":"injected","selected":true}}}`
	content, err := service.Save(ctx, 1, submitted, 1)
	require.NoError(t, err)

	assert.NotContains(t, content, "injected")
	assert.NotContains(t, content, "selected")
	assert.Equal(t, map[uint64]bool{5: true}, leafIDs(t, content))
}

func TestSave_ReconcilesAfterTrim(t *testing.T) {
	service, _ := setup(
		[]uint64{5, 6},
		domain.Doc{ID: 5, Label: "kept"},
		domain.Doc{ID: 6, Label: "missing"},
	)
	ctx := context.Background()

	// the client forgot doc 6; reconciliation restores it
	content, err := service.Save(ctx, 1, `{"children":{"mine":{"id":5}}}`, 1)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]bool{5: true, 6: true}, leafIDs(t, content))
}

func TestSave_KeepsClientStructure(t *testing.T) {
	service, _ := setup([]uint64{5}, domain.Doc{ID: 5, Label: "kept"})
	ctx := context.Background()

	submitted := `{"children":{"folder":{"children":{"nested":{"id":5}}}}}`
	content, err := service.Save(ctx, 1, submitted, 1)
	require.NoError(t, err)

	root, err := domain.ParseTree(content)
	require.NoError(t, err)
	folder, ok := root.Children["folder"]
	require.True(t, ok, "user folders survive the round trip")
	assert.False(t, folder.IsLeaf())
}

func TestSave_MalformedTree(t *testing.T) {
	service, _ := setup(nil)
	ctx := context.Background()

	_, err := service.Save(ctx, 1, "{broken", 1)
	var biz *apiError.BizError
	require.ErrorAs(t, err, &biz)
	assert.Equal(t, apiError.NameBadRequest, biz.Name)
}

func TestSave_SelfOnly(t *testing.T) {
	service, _ := setup(nil)
	ctx := context.Background()

	_, err := service.Save(ctx, 1, "{}", 2)
	var biz *apiError.BizError
	require.ErrorAs(t, err, &biz)
	assert.Equal(t, apiError.NameForbidden, biz.Name)
}

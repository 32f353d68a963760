package access

import (
	"context"
	"testing"

	"doc-collab-server/internal/domain"
	apiError "doc-collab-server/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepo is an in-memory AccessRepository.
type fakeRepo struct {
	accesses []domain.Access
	invites  []domain.InviteToken
	nextID   uint64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1}
}

func (r *fakeRepo) Find(authorID, docID uint64) (*domain.Access, error) {
	for i := range r.accesses {
		if r.accesses[i].AuthorID == authorID && r.accesses[i].DocID == docID {
			a := r.accesses[i]
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) Upsert(authorID, docID uint64, role domain.Role) error {
	for i := range r.accesses {
		if r.accesses[i].AuthorID == authorID && r.accesses[i].DocID == docID {
			r.accesses[i].Role = role
			return nil
		}
	}
	r.accesses = append(r.accesses, domain.Access{ID: r.nextID, AuthorID: authorID, DocID: docID, Role: role})
	r.nextID++
	return nil
}

func (r *fakeRepo) Delete(authorID, docID uint64) error {
	for i := range r.accesses {
		if r.accesses[i].AuthorID == authorID && r.accesses[i].DocID == docID {
			r.accesses = append(r.accesses[:i], r.accesses[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeRepo) ListByAuthor(authorID uint64) ([]domain.Access, error) {
	var out []domain.Access
	for _, a := range r.accesses {
		if a.AuthorID == authorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListByAuthorAndRole(authorID uint64, role domain.Role) ([]domain.Access, error) {
	var out []domain.Access
	for _, a := range r.accesses {
		if a.AuthorID == authorID && a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindOwner(docID uint64) (*domain.Access, error) {
	for i := range r.accesses {
		if r.accesses[i].DocID == docID && r.accesses[i].Role == domain.RoleOwner {
			a := r.accesses[i]
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) FindInvite(docID uint64, role domain.Role) (*domain.InviteToken, error) {
	for i := range r.invites {
		if r.invites[i].DocID == docID && r.invites[i].Role == role {
			inv := r.invites[i]
			return &inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRepo) CreateInvite(invite *domain.InviteToken) error {
	invite.ID = r.nextID
	r.nextID++
	r.invites = append(r.invites, *invite)
	return nil
}

func (r *fakeRepo) ListInvites(docID uint64) ([]domain.InviteToken, error) {
	var out []domain.InviteToken
	for _, inv := range r.invites {
		if inv.DocID == docID {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeDocs struct {
	docs map[uint64]domain.Doc
}

func (f *fakeDocs) FindDoc(ctx context.Context, id uint64) (*domain.Doc, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, apiError.NotFound()
	}
	return &doc, nil
}

type fakeAuthors struct {
	ids map[uint64]bool
}

func (f *fakeAuthors) GetAuthor(ctx context.Context, id uint64) (*domain.Author, error) {
	if !f.ids[id] {
		return nil, apiError.NotFound()
	}
	return &domain.Author{ID: id, Active: true}, nil
}

type fakeNotifier struct {
	changes []string
	kicks   []uint64
}

func (f *fakeNotifier) AccessChanged(docID, authorID uint64, role string) {
	f.changes = append(f.changes, role)
}

func (f *fakeNotifier) Kicked(docID, authorID uint64) {
	f.kicks = append(f.kicks, authorID)
}

const (
	ownerID  = uint64(1)
	bobID    = uint64(2)
	carolID  = uint64(3)
	theDocID = uint64(10)
)

func setupEngine() (Engine, *fakeRepo, *fakeNotifier) {
	repo := newFakeRepo()
	repo.Upsert(ownerID, theDocID, domain.RoleOwner)
	notifier := &fakeNotifier{}
	engine := NewEngine(
		repo,
		&fakeDocs{docs: map[uint64]domain.Doc{theDocID: {ID: theDocID, Label: "shared"}}},
		&fakeAuthors{ids: map[uint64]bool{ownerID: true, bobID: true, carolID: true}},
		notifier,
		"http://front.local",
	)
	return engine, repo, notifier
}

func bizName(t *testing.T, err error) string {
	t.Helper()
	var biz *apiError.BizError
	require.ErrorAs(t, err, &biz)
	return biz.Name
}

func TestRoleOf(t *testing.T) {
	engine, _, _ := setupEngine()
	ctx := context.Background()

	assert.Equal(t, domain.RoleOwner, engine.RoleOf(ctx, ownerID, theDocID))
	assert.Equal(t, domain.RoleNone, engine.RoleOf(ctx, bobID, theDocID))
	assert.Equal(t, domain.RoleNone, engine.RoleOf(ctx, 0, theDocID))

	assert.True(t, engine.CanDominate(ctx, ownerID, theDocID))
	assert.False(t, engine.CanRead(ctx, bobID, theDocID))
}

func TestGrant_ThenQueryReturnsRole(t *testing.T) {
	engine, _, notifier := setupEngine()
	ctx := context.Background()

	require.NoError(t, engine.Grant(ctx, theDocID, bobID, domain.RoleRead, ownerID))

	dto, err := engine.QueryAccess(ctx, bobID, theDocID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRead, dto.Role)
	assert.Equal(t, []string{"read"}, notifier.changes)
}

func TestGrant_UpsertsInsteadOfDuplicating(t *testing.T) {
	engine, repo, _ := setupEngine()
	ctx := context.Background()

	require.NoError(t, engine.Grant(ctx, theDocID, bobID, domain.RoleRead, ownerID))
	require.NoError(t, engine.Grant(ctx, theDocID, bobID, domain.RoleCollaborate, ownerID))

	rows := 0
	for _, a := range repo.accesses {
		if a.AuthorID == bobID && a.DocID == theDocID {
			rows++
			assert.Equal(t, domain.RoleCollaborate, a.Role)
		}
	}
	assert.Equal(t, 1, rows)
}

func TestGrant_OwnerRoleAlwaysFails(t *testing.T) {
	engine, _, _ := setupEngine()
	ctx := context.Background()

	err := engine.Grant(ctx, theDocID, bobID, domain.RoleOwner, ownerID)
	assert.Equal(t, NameOnlyOneOwner, bizName(t, err))
}

func TestGrant_RequiresDominator(t *testing.T) {
	engine, _, _ := setupEngine()
	ctx := context.Background()

	require.NoError(t, engine.Grant(ctx, theDocID, bobID, domain.RoleCollaborate, ownerID))

	err := engine.Grant(ctx, theDocID, carolID, domain.RoleRead, bobID)
	assert.Equal(t, NameNotDominator, bizName(t, err))

	err = engine.Grant(ctx, theDocID, carolID, domain.RoleRead, carolID)
	assert.Equal(t, NameNotReader, bizName(t, err))
}

func TestGrant_CannotTouchOwnerRow(t *testing.T) {
	engine, _, _ := setupEngine()
	ctx := context.Background()

	err := engine.Grant(ctx, theDocID, ownerID, domain.RoleRead, ownerID)
	assert.Equal(t, NameCannotEditOwner, bizName(t, err))
}

func TestGrant_InvalidRole(t *testing.T) {
	engine, _, _ := setupEngine()
	ctx := context.Background()

	err := engine.Grant(ctx, theDocID, bobID, domain.Role(7), ownerID)
	assert.Equal(t, NameInvalidRole, bizName(t, err))
}

func TestOwnerInvariant_SingleOwnerSurvivesGrants(t *testing.T) {
	engine, repo, _ := setupEngine()
	ctx := context.Background()

	require.NoError(t, engine.Grant(ctx, theDocID, bobID, domain.RoleCollaborate, ownerID))
	require.NoError(t, engine.Grant(ctx, theDocID, carolID, domain.RoleRead, ownerID))
	require.NoError(t, engine.Revoke(ctx, theDocID, carolID, ownerID))

	owners := 0
	for _, a := range repo.accesses {
		if a.DocID == theDocID && a.Role == domain.RoleOwner {
			owners++
		}
	}
	assert.Equal(t, 1, owners)
}

func TestRevoke_OwnerCannotSelfRevoke(t *testing.T) {
	engine, _, _ := setupEngine()
	ctx := context.Background()

	err := engine.Revoke(ctx, theDocID, ownerID, ownerID)
	assert.Equal(t, NameCannotEditOwner, bizName(t, err))
}

func TestRevoke_MemberCanLeave(t *testing.T) {
	engine, _, notifier := setupEngine()
	ctx := context.Background()

	require.NoError(t, engine.Grant(ctx, theDocID, bobID, domain.RoleRead, ownerID))
	require.NoError(t, engine.Revoke(ctx, theDocID, bobID, bobID))

	assert.Equal(t, domain.RoleNone, engine.RoleOf(ctx, bobID, theDocID))
	assert.Equal(t, []uint64{bobID}, notifier.kicks)
}

func TestRevoke_MemberCannotKickOthers(t *testing.T) {
	engine, _, _ := setupEngine()
	ctx := context.Background()

	require.NoError(t, engine.Grant(ctx, theDocID, bobID, domain.RoleRead, ownerID))
	require.NoError(t, engine.Grant(ctx, theDocID, carolID, domain.RoleRead, ownerID))

	err := engine.Revoke(ctx, theDocID, carolID, bobID)
	assert.Equal(t, apiError.NameForbidden, bizName(t, err))
}

func TestQueryAccess_NonMemberForbidden(t *testing.T) {
	engine, _, _ := setupEngine()
	ctx := context.Background()

	_, err := engine.QueryAccess(ctx, ownerID, theDocID, bobID)
	assert.Equal(t, apiError.NameForbidden, bizName(t, err))
}

func TestQueryAccess_MissingRowNotFound(t *testing.T) {
	engine, _, _ := setupEngine()
	ctx := context.Background()

	_, err := engine.QueryAccess(ctx, bobID, theDocID, ownerID)
	assert.Equal(t, apiError.NameNotFound, bizName(t, err))
}

func TestInviteLink_LazyCreateAndReuse(t *testing.T) {
	engine, repo, _ := setupEngine()
	ctx := context.Background()

	link1, err := engine.IssueInviteLink(ctx, theDocID, domain.RoleRead, ownerID)
	require.NoError(t, err)
	assert.Contains(t, link1, "http://front.local/#/invite/10/")

	link2, err := engine.IssueInviteLink(ctx, theDocID, domain.RoleRead, ownerID)
	require.NoError(t, err)
	assert.Equal(t, link1, link2)
	assert.Len(t, repo.invites, 1)

	_, err = engine.IssueInviteLink(ctx, theDocID, domain.RoleCollaborate, ownerID)
	require.NoError(t, err)
	assert.Len(t, repo.invites, 2)
}

func TestInviteLink_RequiresReadAccess(t *testing.T) {
	engine, _, _ := setupEngine()
	ctx := context.Background()

	_, err := engine.IssueInviteLink(ctx, theDocID, domain.RoleRead, bobID)
	assert.Equal(t, NameNotReader, bizName(t, err))
}

func TestRedeem_GrantsMatchingRole(t *testing.T) {
	engine, repo, _ := setupEngine()
	ctx := context.Background()

	_, err := engine.IssueInviteLink(ctx, theDocID, domain.RoleCollaborate, ownerID)
	require.NoError(t, err)
	code := repo.invites[0].Content

	require.NoError(t, engine.Redeem(ctx, theDocID, bobID, code))
	assert.Equal(t, domain.RoleCollaborate, engine.RoleOf(ctx, bobID, theDocID))

	// idempotent re-grant
	require.NoError(t, engine.Redeem(ctx, theDocID, bobID, code))
	assert.Equal(t, domain.RoleCollaborate, engine.RoleOf(ctx, bobID, theDocID))
}

func TestRedeem_UnknownCodeIgnored(t *testing.T) {
	engine, _, _ := setupEngine()
	ctx := context.Background()

	require.NoError(t, engine.Redeem(ctx, theDocID, bobID, "nope"))
	assert.Equal(t, domain.RoleNone, engine.RoleOf(ctx, bobID, theDocID))
}

func TestRedeem_OwnerIsNoop(t *testing.T) {
	engine, repo, _ := setupEngine()
	ctx := context.Background()

	_, err := engine.IssueInviteLink(ctx, theDocID, domain.RoleRead, ownerID)
	require.NoError(t, err)
	code := repo.invites[0].Content

	require.NoError(t, engine.Redeem(ctx, theDocID, ownerID, code))
	assert.Equal(t, domain.RoleOwner, engine.RoleOf(ctx, ownerID, theDocID))
}

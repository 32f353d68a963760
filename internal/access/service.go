package access

import (
	"context"
	defError "errors"
	"fmt"

	"doc-collab-server/internal/domain"
	"doc-collab-server/internal/errors"
	"doc-collab-server/internal/logger"
	"doc-collab-server/internal/utils"

	"gorm.io/gorm"
)

const (
	NameNotReader       = "doc.not_r"
	NameNotDominator    = "doc.not_d"
	NameOnlyOneOwner    = "doc.only_one_d"
	NameCannotEditOwner = "doc.cannot_edit_d"
	NameInvalidRole     = "doc.invalid_role"
)

// AccessDTO is the queryAccess response shape.
type AccessDTO struct {
	AuthorID uint64      `json:"author_id"`
	Role     domain.Role `json:"role"`
}

// DocProvider looks up documents for the engine.
type DocProvider interface {
	FindDoc(ctx context.Context, id uint64) (*domain.Doc, error)
}

// AuthorProvider checks that grant targets exist.
type AuthorProvider interface {
	GetAuthor(ctx context.Context, id uint64) (*domain.Author, error)
}

// ChangeNotifier announces grants and revocations, fire-and-forget.
type ChangeNotifier interface {
	AccessChanged(docID, authorID uint64, role string)
	Kicked(docID, authorID uint64)
}

// Engine resolves and mutates the (author, document, role) relation.
type Engine interface {
	RoleOf(ctx context.Context, authorID, docID uint64) domain.Role
	CanRead(ctx context.Context, authorID, docID uint64) bool
	CanCollaborate(ctx context.Context, authorID, docID uint64) bool
	CanDominate(ctx context.Context, authorID, docID uint64) bool
	Grant(ctx context.Context, docID, targetID uint64, role domain.Role, actorID uint64) error
	Revoke(ctx context.Context, docID, targetID, actorID uint64) error
	QueryAccess(ctx context.Context, targetID, docID, actorID uint64) (*AccessDTO, error)
	IssueInviteLink(ctx context.Context, docID uint64, role domain.Role, actorID uint64) (string, error)
	Redeem(ctx context.Context, docID, authorID uint64, code string) error
	AccessibleDocIDs(ctx context.Context, authorID uint64) ([]uint64, error)
	RemoveAccess(ctx context.Context, authorID, docID uint64) error
	ListByRole(ctx context.Context, authorID uint64, role domain.Role) ([]uint64, error)
}

// DefaultEngine implements Engine
type DefaultEngine struct {
	repository AccessRepository
	docs       DocProvider
	authors    AuthorProvider
	notifier   ChangeNotifier
	frontend   string
}

// NewEngine creates a new access engine
func NewEngine(
	repository AccessRepository,
	docs DocProvider,
	authors AuthorProvider,
	notifier ChangeNotifier,
	frontend string,
) Engine {
	return &DefaultEngine{
		repository: repository,
		docs:       docs,
		authors:    authors,
		notifier:   notifier,
		frontend:   frontend,
	}
}

// RoleOf resolves the author's role on a document with a single
// lookup. Anonymous actors (id 0) and missing rows yield RoleNone.
func (e *DefaultEngine) RoleOf(ctx context.Context, authorID, docID uint64) domain.Role {
	if authorID == 0 || docID == 0 {
		return domain.RoleNone
	}
	access, err := e.repository.Find(authorID, docID)
	if err != nil {
		return domain.RoleNone
	}
	return access.Role
}

func (e *DefaultEngine) CanRead(ctx context.Context, authorID, docID uint64) bool {
	return e.RoleOf(ctx, authorID, docID) >= domain.RoleRead
}

func (e *DefaultEngine) CanCollaborate(ctx context.Context, authorID, docID uint64) bool {
	return e.RoleOf(ctx, authorID, docID) >= domain.RoleCollaborate
}

func (e *DefaultEngine) CanDominate(ctx context.Context, authorID, docID uint64) bool {
	return e.RoleOf(ctx, authorID, docID) >= domain.RoleOwner
}

// Grant upserts the target's role on a document. Ownership is never
// grantable here and an existing owner's row is untouchable.
func (e *DefaultEngine) Grant(ctx context.Context, docID, targetID uint64, role domain.Role, actorID uint64) error {
	if _, err := e.docs.FindDoc(ctx, docID); err != nil {
		return err
	}
	if !e.CanRead(ctx, actorID, docID) {
		return errors.Biz(NameNotReader)
	}
	if !e.CanDominate(ctx, actorID, docID) {
		return errors.Biz(NameNotDominator)
	}
	if role == domain.RoleOwner {
		return errors.Biz(NameOnlyOneOwner)
	}
	if !role.Valid() {
		return errors.Biz(NameInvalidRole)
	}
	if _, err := e.authors.GetAuthor(ctx, targetID); err != nil {
		return err
	}
	if e.RoleOf(ctx, targetID, docID) == domain.RoleOwner {
		return errors.Biz(NameCannotEditOwner)
	}

	if err := e.repository.Upsert(targetID, docID, role); err != nil {
		return err
	}

	e.notifier.AccessChanged(docID, targetID, role.String())
	return nil
}

// Revoke removes the target's access row. A dominator may kick anyone
// but themself; everyone else may only remove their own access.
func (e *DefaultEngine) Revoke(ctx context.Context, docID, targetID, actorID uint64) error {
	if _, err := e.docs.FindDoc(ctx, docID); err != nil {
		return err
	}

	if e.CanDominate(ctx, actorID, docID) {
		if targetID == actorID {
			return errors.Biz(NameCannotEditOwner)
		}
	} else if targetID != actorID {
		return errors.Forbidden()
	}

	if _, err := e.repository.Find(targetID, docID); err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound()
		}
		return err
	}
	if err := e.repository.Delete(targetID, docID); err != nil {
		return err
	}

	e.notifier.Kicked(docID, targetID)
	return nil
}

// QueryAccess returns the target's access row. The acting author must
// hold some access themselves so non-members cannot enumerate the
// access list.
func (e *DefaultEngine) QueryAccess(ctx context.Context, targetID, docID, actorID uint64) (*AccessDTO, error) {
	if !e.CanRead(ctx, actorID, docID) {
		return nil, errors.Forbidden()
	}
	access, err := e.repository.Find(targetID, docID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound()
		}
		return nil, err
	}
	return &AccessDTO{AuthorID: access.AuthorID, Role: access.Role}, nil
}

// IssueInviteLink returns a redeemable URL granting role on the
// document, creating the invite token on first use and reusing it
// afterwards. Any reader may share a document.
func (e *DefaultEngine) IssueInviteLink(ctx context.Context, docID uint64, role domain.Role, actorID uint64) (string, error) {
	if role != domain.RoleRead && role != domain.RoleCollaborate {
		return "", errors.Biz(NameInvalidRole)
	}
	if _, err := e.docs.FindDoc(ctx, docID); err != nil {
		return "", err
	}
	if !e.CanRead(ctx, actorID, docID) {
		return "", errors.Biz(NameNotReader)
	}

	invite, err := e.repository.FindInvite(docID, role)
	if err != nil {
		if !defError.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		invite = &domain.InviteToken{
			DocID:   docID,
			Role:    role,
			Content: utils.GenToken(),
		}
		if err := e.repository.CreateInvite(invite); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%s/#/invite/%d/%s", e.frontend, docID, invite.Content), nil
}

// Redeem matches code against the document's invite tokens and grants
// the presenting author the matching role on the document's owner's
// authority. Re-redeeming is an idempotent re-grant; an unknown code
// is ignored.
func (e *DefaultEngine) Redeem(ctx context.Context, docID, authorID uint64, code string) error {
	if authorID == 0 || code == "" {
		return nil
	}
	invites, err := e.repository.ListInvites(docID)
	if err != nil {
		return err
	}
	for _, invite := range invites {
		if invite.Content != code {
			continue
		}
		// the document's owner vouches for the grant; the normal
		// actor-dominance check does not apply on this path
		owner, err := e.repository.FindOwner(docID)
		if err != nil {
			return err
		}
		if authorID == owner.AuthorID {
			return nil
		}
		if err := e.repository.Upsert(authorID, docID, invite.Role); err != nil {
			return err
		}
		log := logger.With("access")
		log.Info().
			Uint64("doc", docID).
			Uint64("author", authorID).
			Str("role", invite.Role.String()).
			Msg("invite redeemed")
		e.notifier.AccessChanged(docID, authorID, invite.Role.String())
		return nil
	}
	return nil
}

// AccessibleDocIDs lists every document id the author holds any role on.
func (e *DefaultEngine) AccessibleDocIDs(ctx context.Context, authorID uint64) ([]uint64, error) {
	accesses, err := e.repository.ListByAuthor(authorID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(accesses))
	for _, a := range accesses {
		ids = append(ids, a.DocID)
	}
	return ids, nil
}

// RemoveAccess deletes the author's own row without the revoke rules;
// the document registry's self-unlink path uses it.
func (e *DefaultEngine) RemoveAccess(ctx context.Context, authorID, docID uint64) error {
	return e.repository.Delete(authorID, docID)
}

// ListByRole lists the documents the author joined with exactly role.
func (e *DefaultEngine) ListByRole(ctx context.Context, authorID uint64, role domain.Role) ([]uint64, error) {
	accesses, err := e.repository.ListByAuthorAndRole(authorID, role)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(accesses))
	for _, a := range accesses {
		ids = append(ids, a.DocID)
	}
	return ids, nil
}

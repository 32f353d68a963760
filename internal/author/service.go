package author

import (
	"context"
	defError "errors"
	"strconv"
	"time"

	"doc-collab-server/internal/domain"
	"doc-collab-server/internal/errors"
	"doc-collab-server/internal/logger"
	"doc-collab-server/internal/utils"
	"doc-collab-server/redis"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	NameDuplicated  = "register.duplicated"
	NameInvalidCode = "check.invalid_code"
	NameLoginWrong  = "login.wrong"
	NameInactive    = "login.inactive"
	NameProfile     = "profile.forbidden"

	tokenCachePrefix = "token:"
	tokenCacheTTL    = time.Hour
)

// WelcomeNotifier delivers the registration mail, fire-and-forget.
type WelcomeNotifier interface {
	Welcome(email, nickname, code string)
}

// Service defines the interface for identity and session logic
type Service interface {
	Register(ctx context.Context, email, password, nickname string) (string, error)
	Activate(ctx context.Context, code, token string) error
	Login(ctx context.Context, email, password string) (string, error)
	ResolveToken(ctx context.Context, token string) (*domain.Author, error)
	GetAuthor(ctx context.Context, id uint64) (*domain.Author, error)
	EditProfile(ctx context.Context, id uint64, email, nickname string, actorID uint64) (*domain.Author, error)
	SearchAuthors(ctx context.Context, nickname string) ([]domain.SafeAuthor, error)
	AuthorExists(ctx context.Context, email string) (*domain.SafeAuthor, error)
}

// DefaultService implements Service
type DefaultService struct {
	repository AuthorRepository
	cache      *redis.Cache
	notifier   WelcomeNotifier
}

// NewService creates a new author service
func NewService(repository AuthorRepository, cache *redis.Cache, notifier WelcomeNotifier) Service {
	return &DefaultService{repository: repository, cache: cache, notifier: notifier}
}

// Register creates an inactive author and issues their token. An email
// held by an inactive author is overwritten instead of rejected, so an
// author who lost the activation mail can just register again.
func (s *DefaultService) Register(ctx context.Context, email, password, nickname string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	existing, err := s.repository.FindByEmail(email)
	if err != nil && !defError.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var author *domain.Author
	if existing != nil {
		if existing.Active {
			return "", errors.Biz(NameDuplicated)
		}
		existing.Nickname = nickname
		existing.PasswordHash = string(hash)
		if err := s.repository.Save(existing); err != nil {
			return "", err
		}
		author = existing
	} else {
		author = &domain.Author{
			Email:        email,
			Nickname:     nickname,
			PasswordHash: string(hash),
			Active:       false,
		}
		if err := s.repository.Create(author); err != nil {
			return "", err
		}
	}

	token, err := s.rotateToken(ctx, author.ID)
	if err != nil {
		return "", err
	}

	s.notifier.Welcome(author.Email, author.Nickname, utils.DeriveCode(token))
	return token, nil
}

// Activate flips the author active when code matches the one derived
// from their token. One-way: there is no deactivation path.
func (s *DefaultService) Activate(ctx context.Context, code, token string) error {
	row, err := s.repository.FindTokenByContent(token)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.Biz(NameInvalidCode)
		}
		return err
	}
	if code == "" || code != utils.DeriveCode(row.Content) {
		return errors.Biz(NameInvalidCode)
	}

	author, err := s.repository.FindByID(row.AuthorID)
	if err != nil {
		return err
	}
	author.Active = true
	return s.repository.Save(author)
}

// Login checks credentials and rotates the author's token. The old
// token stops resolving immediately: one live session per author.
func (s *DefaultService) Login(ctx context.Context, email, password string) (string, error) {
	author, err := s.repository.FindByEmail(email)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.Biz(NameLoginWrong)
		}
		return "", err
	}
	if !author.Active {
		return "", errors.Biz(NameInactive)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(author.PasswordHash), []byte(password)); err != nil {
		return "", errors.Biz(NameLoginWrong)
	}

	return s.rotateToken(ctx, author.ID)
}

// rotateToken replaces the author's token content with a fresh value,
// creating the row on first issue. Concurrent logins race to
// last-writer-wins, which is acceptable.
func (s *DefaultService) rotateToken(ctx context.Context, authorID uint64) (string, error) {
	fresh := utils.GenToken()
	now := utils.NowMillis()

	row, err := s.repository.FindToken(authorID)
	if err != nil {
		if !defError.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		if err := s.repository.CreateToken(&domain.Token{
			AuthorID:  authorID,
			Content:   fresh,
			Timestamp: now,
		}); err != nil {
			return "", err
		}
		return fresh, nil
	}

	old := row.Content
	row.Content = fresh
	row.Timestamp = now
	if err := s.repository.SaveToken(row); err != nil {
		return "", err
	}
	s.cache.Del(ctx, tokenCachePrefix+old)
	return fresh, nil
}

// ResolveToken maps a bearer token to its author. Unknown tokens
// resolve to nil without error; permission checks downstream reject
// the anonymous actor. Sessions do not expire.
func (s *DefaultService) ResolveToken(ctx context.Context, token string) (*domain.Author, error) {
	if token == "" {
		return nil, nil
	}

	if cached, ok := s.cache.Get(ctx, tokenCachePrefix+token); ok {
		if id, err := parseID(cached); err == nil {
			author, err := s.repository.FindByID(id)
			if err == nil {
				return author, nil
			}
		}
	}

	row, err := s.repository.FindTokenByContent(token)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	author, err := s.repository.FindByID(row.AuthorID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, tokenCachePrefix+token, formatID(author.ID), tokenCacheTTL)
	return author, nil
}

func (s *DefaultService) GetAuthor(ctx context.Context, id uint64) (*domain.Author, error) {
	author, err := s.repository.FindByID(id)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound()
		}
		return nil, err
	}
	return author, nil
}

// EditProfile updates email/nickname, self only.
func (s *DefaultService) EditProfile(ctx context.Context, id uint64, email, nickname string, actorID uint64) (*domain.Author, error) {
	author, err := s.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID != author.ID {
		return nil, errors.Biz(NameProfile)
	}
	if email != "" {
		author.Email = email
	}
	if nickname != "" {
		author.Nickname = nickname
	}
	if err := s.repository.Save(author); err != nil {
		return nil, err
	}
	log := logger.With("author")
	log.Info().Uint64("id", author.ID).Msg("profile updated")
	return author, nil
}

func (s *DefaultService) SearchAuthors(ctx context.Context, nickname string) ([]domain.SafeAuthor, error) {
	authors, err := s.repository.Search(nickname)
	if err != nil {
		return nil, err
	}
	safe := make([]domain.SafeAuthor, 0, len(authors))
	for i := range authors {
		safe = append(safe, authors[i].ToSafeAuthor())
	}
	return safe, nil
}

func (s *DefaultService) AuthorExists(ctx context.Context, email string) (*domain.SafeAuthor, error) {
	author, err := s.repository.FindByEmail(email)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound()
		}
		return nil, err
	}
	safe := author.ToSafeAuthor()
	return &safe, nil
}

func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

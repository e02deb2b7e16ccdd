package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/carsales/catalog-api/internal/core/domain"
	"github.com/carsales/catalog-api/internal/core/ports"
)

// SessionIssuer signs session tokens for an authenticated account.
type SessionIssuer interface {
	Issue(account *domain.Account) (token string, expiresAt time.Time, err error)
}

// AuthService implements registration, login and the admin seeding helpers.
type AuthService struct {
	repo      ports.AuthRepository
	issuer    SessionIssuer
	cost      int
	dummyHash []byte
	log       zerolog.Logger
	now       func() time.Time
}

// NewAuthService builds an AuthService. A cost outside bcrypt's accepted
// range falls back to bcrypt.DefaultCost.
func NewAuthService(repo ports.AuthRepository, issuer SessionIssuer, cost int, log zerolog.Logger) (*AuthService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// Compared against on unknown emails so a miss costs the same as a wrong password.
	dummy, err := bcrypt.GenerateFromPassword([]byte("no-such-account"), cost)
	if err != nil {
		return nil, fmt.Errorf("auth service: dummy hash: %w", err)
	}
	return &AuthService{
		repo:      repo,
		issuer:    issuer,
		cost:      cost,
		dummyHash: dummy,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register creates a User account for email and returns a session for it.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.Session, error) {
	account, err := s.createAccount(ctx, email, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint64("account_id", account.ID).Msg("account registered")
	return s.issue(account)
}

// Login verifies the credentials. Unknown emails, wrong passwords and
// unreadable stored hashes all yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	normalized := domain.NormalizeEmail(email)
	password = strings.TrimSpace(password)

	account, err := s.repo.FindByNormalizedEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.Warn().Uint64("account_id", account.ID).Err(err).Msg("stored password hash unreadable")
		}
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(account)
}

// EnsureAdmin creates an Admin account for email unless an admin already
// exists. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	n, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	account, err := s.createAccount(ctx, email, password, domain.RoleAdmin)
	if err != nil {
		return false, err
	}

	s.log.Info().Uint64("account_id", account.ID).Str("email", account.Email).Msg("admin account created")
	return true, nil
}

// NormalizeStoredEmails rewrites accounts whose stored email is not in
// normalized form. Rows that would collide with an existing normalized email
// are left untouched and logged.
func (s *AuthService) NormalizeStoredEmails(ctx context.Context) (int, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, a := range accounts {
		normalized := domain.NormalizeEmail(a.Email)
		if a.Email == normalized && a.NormalizedEmail == normalized {
			continue
		}
		if err := s.repo.UpdateEmail(ctx, a.ID, normalized, normalized); err != nil {
			if errors.Is(err, domain.ErrDuplicateEmail) {
				s.log.Warn().Uint64("account_id", a.ID).Msg("normalized email collides with another account, skipped")
				continue
			}
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *AuthService) createAccount(ctx context.Context, email, password string, role domain.Role) (*domain.Account, error) {
	normalized := domain.NormalizeEmail(email)
	if normalized == "" {
		return nil, domain.NewValidationError("email", "is required")
	}
	password = strings.TrimSpace(password)
	if password == "" {
		return nil, domain.NewValidationError("password", "is required")
	}

	_, err := s.repo.FindByNormalizedEmail(ctx, normalized)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateEmail
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.NewValidationError("password", "must be at most 72 bytes")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		Email:           normalized,
		NormalizedEmail: normalized,
		PasswordHash:    string(hash),
		Role:            role,
		CreatedAt:       s.now(),
	}
	// A concurrent registration that slipped past the lookup surfaces here
	// as domain.ErrDuplicateEmail from the unique index.
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AuthService) issue(account *domain.Account) (*domain.Session, error) {
	tok, expiresAt, err := s.issuer.Issue(account)
	if err != nil {
		return nil, err
	}
	return &domain.Session{
		Token:     tok,
		Email:     account.Email,
		Role:      account.Role,
		ExpiresAt: expiresAt,
	}, nil
}

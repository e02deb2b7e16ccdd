package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/carsales/catalog-api/internal/core/domain"
	"github.com/carsales/catalog-api/internal/pkg/token"
)

type stubAuthRepo struct {
	accounts  []*domain.Account
	nextID    uint64
	findErr   error
	createErr error
	// skipLookup makes FindByNormalizedEmail miss, simulating a registration
	// that raced past the duplicate check.
	skipLookup bool
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAuthRepo) FindByNormalizedEmail(_ context.Context, normalized string) (*domain.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.skipLookup {
		return nil, domain.ErrNotFound
	}
	for _, a := range r.accounts {
		if a.NormalizedEmail == normalized {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubAuthRepo) Create(_ context.Context, account *domain.Account) error {
	if r.createErr != nil {
		return r.createErr
	}
	// mirrors the unique index on normalized_email
	for _, a := range r.accounts {
		if a.NormalizedEmail == account.NormalizedEmail {
			return domain.ErrDuplicateEmail
		}
	}
	r.nextID++
	account.ID = r.nextID
	r.accounts = append(r.accounts, cloneAccount(account))
	return nil
}

func (r *stubAuthRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	var n int64
	for _, a := range r.accounts {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *stubAuthRepo) List(_ context.Context) ([]*domain.Account, error) {
	out := make([]*domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		out = append(out, cloneAccount(a))
	}
	return out, nil
}

func (r *stubAuthRepo) UpdateEmail(_ context.Context, id uint64, email, normalized string) error {
	for _, a := range r.accounts {
		if a.ID != id && a.NormalizedEmail == normalized {
			return domain.ErrDuplicateEmail
		}
	}
	for _, a := range r.accounts {
		if a.ID == id {
			a.Email = email
			a.NormalizedEmail = normalized
			return nil
		}
	}
	return domain.ErrNotFound
}

func newTestIssuer() *token.Issuer {
	return token.NewIssuer(token.Config{Secret: "secret", Issuer: "CarSalesAPI", Audience: "CarSalesAPI"})
}

func newTestAuthService(t *testing.T, repo *stubAuthRepo) *AuthService {
	t.Helper()
	svc, err := NewAuthService(repo, newTestIssuer(), bcrypt.MinCost, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)

	session, err := svc.Register(context.Background(), "  Alice@Example.COM ", " pass123 ")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected token")
	}
	if session.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", session.Email)
	}
	if session.Role != domain.RoleUser {
		t.Fatalf("expected role User, got %s", session.Role)
	}

	stored := repo.accounts[0]
	if stored.NormalizedEmail != "alice@example.com" {
		t.Fatalf("unexpected normalized email %q", stored.NormalizedEmail)
	}
	if stored.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash must match trimmed password: %v", err)
	}
}

func TestAuthService_Register_DuplicateIgnoresCaseAndWhitespace(t *testing.T) {
	pairs := [][2]string{
		{"bob@example.com", "BOB@example.com"},
		{"bob@example.com", "  bob@example.com\t"},
		{" Bob@Example.Com", "bOB@EXAMPLE.COM  "},
	}
	for _, p := range pairs {
		repo := newStubAuthRepo()
		svc := newTestAuthService(t, repo)

		if _, err := svc.Register(context.Background(), p[0], "pass"); err != nil {
			t.Fatalf("first register %q: %v", p[0], err)
		}
		if _, err := svc.Register(context.Background(), p[1], "pass2"); !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Fatalf("register %q after %q: expected ErrDuplicateEmail, got %v", p[1], p[0], err)
		}
		if len(repo.accounts) != 1 {
			t.Fatalf("duplicate must not create an account, have %d", len(repo.accounts))
		}
	}
}

func TestAuthService_Register_RaceCaughtByUniqueIndex(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "eve@example.com", "pass"); err != nil {
		t.Fatalf("register: %v", err)
	}
	repo.skipLookup = true
	if _, err := svc.Register(context.Background(), "EVE@example.com", "pass"); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail from insert, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(t, newStubAuthRepo())

	var ve *domain.ValidationError
	if _, err := svc.Register(context.Background(), "   ", "pass"); !errors.As(err, &ve) || ve.Field != "email" {
		t.Fatalf("expected email ValidationError, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@b.c", "   "); !errors.As(err, &ve) || ve.Field != "password" {
		t.Fatalf("expected password ValidationError, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "a@b.c", strings.Repeat("x", 80)); !errors.As(err, &ve) || ve.Field != "password" {
		t.Fatalf("expected password ValidationError for long password, got %v", err)
	}
}

func TestAuthService_Register_StoreError(t *testing.T) {
	repo := newStubAuthRepo()
	repo.findErr = domain.WrapStore("find account", errors.New("db down"))
	svc := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "a@b.c", "pass")
	var se *domain.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
}

func TestAuthService_Login_Success_RoleInToken(t *testing.T) {
	for _, role := range []domain.Role{domain.RoleUser, domain.RoleAdmin} {
		repo := newStubAuthRepo()
		svc := newTestAuthService(t, repo)

		hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
		_ = repo.Create(context.Background(), &domain.Account{
			Email:           "carol@example.com",
			NormalizedEmail: "carol@example.com",
			PasswordHash:    string(hash),
			Role:            role,
		})

		session, err := svc.Login(context.Background(), " CAROL@example.com", "s3cret ")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if session.Role != role {
			t.Fatalf("expected session role %s, got %s", role, session.Role)
		}

		claims, err := newTestIssuer().Verify(session.Token)
		if err != nil {
			t.Fatalf("token invalid: %v", err)
		}
		if claims.Role != role {
			t.Fatalf("expected decoded role %s, got %s", role, claims.Role)
		}
		if claims.Email != "carol@example.com" || claims.Subject != "1" {
			t.Fatalf("unexpected claims: %+v", claims)
		}
	}
}

func TestAuthService_Login_FailuresAreUniform(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)
	if _, err := svc.Register(context.Background(), "dave@example.com", "goodpass"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPass := svc.Login(context.Background(), "dave@example.com", "badpass")
	_, noAccount := svc.Login(context.Background(), "ghost@example.com", "goodpass")

	if wrongPass != domain.ErrInvalidCredentials {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if noAccount != domain.ErrInvalidCredentials {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", noAccount)
	}
}

func TestAuthService_Login_CorruptHash(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)
	_ = repo.Create(context.Background(), &domain.Account{
		Email:           "frank@example.com",
		NormalizedEmail: "frank@example.com",
		PasswordHash:    "not-a-bcrypt-hash",
		Role:            domain.RoleUser,
	})

	if _, err := svc.Login(context.Background(), "frank@example.com", "whatever"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	repo := newStubAuthRepo()
	svc := newTestAuthService(t, repo)

	created, err := svc.EnsureAdmin(context.Background(), "Admin@CarSales.com", "Admin123!")
	if err != nil || !created {
		t.Fatalf("expected admin to be created, got created=%v err=%v", created, err)
	}
	if repo.accounts[0].Role != domain.RoleAdmin {
		t.Fatalf("expected Admin role, got %s", repo.accounts[0].Role)
	}

	created, err = svc.EnsureAdmin(context.Background(), "other@carsales.com", "pw")
	if err != nil || created {
		t.Fatalf("second EnsureAdmin must be a no-op, got created=%v err=%v", created, err)
	}

	session, err := svc.Login(context.Background(), "admin@carsales.com", "Admin123!")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if session.Role != domain.RoleAdmin {
		t.Fatalf("expected Admin session, got %s", session.Role)
	}
}

func TestAuthService_NormalizeStoredEmails(t *testing.T) {
	repo := newStubAuthRepo()
	repo.accounts = []*domain.Account{
		{ID: 1, Email: "  Mixed@Case.com", NormalizedEmail: "", Role: domain.RoleUser},
		{ID: 2, Email: "ok@example.com", NormalizedEmail: "ok@example.com", Role: domain.RoleUser},
		{ID: 3, Email: "OK@example.com", NormalizedEmail: "", Role: domain.RoleUser},
	}
	repo.nextID = 3
	svc := newTestAuthService(t, repo)

	updated, err := svc.NormalizeStoredEmails(context.Background())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if updated != 1 {
		t.Fatalf("expected 1 updated row, got %d", updated)
	}
	if repo.accounts[0].Email != "mixed@case.com" || repo.accounts[0].NormalizedEmail != "mixed@case.com" {
		t.Fatalf("row 1 not normalized: %+v", repo.accounts[0])
	}
	if repo.accounts[2].Email != "OK@example.com" {
		t.Fatalf("colliding row must be left untouched: %+v", repo.accounts[2])
	}
}

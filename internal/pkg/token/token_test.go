package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/carsales/catalog-api/internal/core/domain"
)

func testIssuer() *Issuer {
	return NewIssuer(Config{Secret: "secret", Issuer: "CarSalesAPI", Audience: "CarSalesAPI"})
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	iss := testIssuer()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	iss.now = func() time.Time { return fixed }

	raw, exp, err := iss.Issue(&domain.Account{ID: 42, Email: "alice@example.com", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.Equal(fixed.Add(24 * time.Hour)) {
		t.Fatalf("expected 24h expiry, got %v", exp)
	}

	claims, err := iss.Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "42" || claims.Email != "alice@example.com" || claims.Role != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if id, _ := claims.AccountID(); id != 42 {
		t.Fatalf("expected account id 42, got %d", id)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti to be set")
	}
}

func TestIssuer_Verify_Expired(t *testing.T) {
	iss := testIssuer()
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return issuedAt }
	raw, _, _ := iss.Issue(&domain.Account{ID: 1, Email: "a@b.c", Role: domain.RoleUser})

	iss.now = func() time.Time { return issuedAt.Add(25 * time.Hour) }
	if _, err := iss.Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_Verify_WrongAudience(t *testing.T) {
	other := NewIssuer(Config{Secret: "secret", Issuer: "CarSalesAPI", Audience: "SomeoneElse"})
	raw, _, _ := other.Issue(&domain.Account{ID: 1, Email: "a@b.c", Role: domain.RoleUser})

	if _, err := testIssuer().Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_Verify_WrongIssuer(t *testing.T) {
	other := NewIssuer(Config{Secret: "secret", Issuer: "Elsewhere", Audience: "CarSalesAPI"})
	raw, _, _ := other.Issue(&domain.Account{ID: 1, Email: "a@b.c", Role: domain.RoleUser})

	if _, err := testIssuer().Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_Verify_WrongSecret(t *testing.T) {
	other := NewIssuer(Config{Secret: "not-the-secret", Issuer: "CarSalesAPI", Audience: "CarSalesAPI"})
	raw, _, _ := other.Issue(&domain.Account{ID: 1, Email: "a@b.c", Role: domain.RoleUser})

	if _, err := testIssuer().Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_Verify_UnknownRole(t *testing.T) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   "1",
		"email": "a@b.c",
		"role":  "Superuser",
		"iss":   "CarSalesAPI",
		"aud":   "CarSalesAPI",
		"exp":   now.Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := testIssuer().Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for unknown role, got %v", err)
	}
}

func TestIssuer_Verify_RejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  "1",
		"role": "Admin",
		"iss":  "CarSalesAPI",
		"aud":  "CarSalesAPI",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := testIssuer().Verify(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

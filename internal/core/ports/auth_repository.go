package ports

import (
	"context"

	"github.com/carsales/catalog-api/internal/core/domain"
)

// AuthRepository defines persistence for accounts. Implementations keep a
// unique index on the normalized email and report a violation of it as
// domain.ErrDuplicateEmail.
type AuthRepository interface {
	// FindByNormalizedEmail returns domain.ErrNotFound when no account matches.
	FindByNormalizedEmail(ctx context.Context, normalizedEmail string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	List(ctx context.Context) ([]*domain.Account, error)
	// UpdateEmail rewrites both the stored and the normalized email of id.
	UpdateEmail(ctx context.Context, id uint64, email, normalizedEmail string) error
}

package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/carsales/catalog-api/internal/core/domain"
)

// ListingFilter carries the conjunctive query over listings. Nil bounds and
// empty strings mean "no filter".
type ListingFilter struct {
	ActiveOnly bool
	Search     string // substring of make, model or description
	Make       string // exact match
	MinYear    *int
	MaxYear    *int
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Page       int // 1-based, already normalized by the service
	PageSize   int
}

// ListingRepository defines persistence operations for listings.
type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) error
	// Save overwrites every column of an existing listing.
	Save(ctx context.Context, l *domain.Listing) error
	// FindByID returns domain.ErrNotFound when id is missing, or inactive and
	// activeOnly is set.
	FindByID(ctx context.Context, id uint64, activeOnly bool) (*domain.Listing, error)
	// List returns one page ordered newest-first and the total count of the
	// filtered (not page-limited) set.
	List(ctx context.Context, filter ListingFilter) ([]*domain.Listing, int64, error)
	// ListAll returns every listing newest-first, inactive ones included.
	ListAll(ctx context.Context) ([]*domain.Listing, error)
	Count(ctx context.Context) (int64, error)
}

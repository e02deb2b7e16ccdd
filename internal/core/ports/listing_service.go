package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/carsales/catalog-api/internal/core/domain"
)

// ListingInput holds the mutable fields of a listing.
type ListingInput struct {
	Make        string          `json:"make"        validate:"notblank,max=100"`
	Model       string          `json:"model"       validate:"notblank,max=100"`
	Year        int             `json:"year"        validate:"gte=1900,lte=2100"`
	Price       decimal.Decimal `json:"price"       validate:"gte=0"`
	Mileage     int             `json:"mileage"     validate:"gte=0"`
	Description string          `json:"description" validate:"max=2000"`
}

// SearchInput carries the public search parameters. Page and PageSize are
// normalized by the service (page < 1 -> 1, size < 1 -> 10, size > 100 -> 100).
type SearchInput struct {
	Search   string
	Make     string
	MinYear  *int
	MaxYear  *int
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
	PageSize int
}

// PagedResult is one page of a filtered listing query.
type PagedResult struct {
	Items      []*domain.Listing
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

// ListingService defines the catalog use cases, public and admin.
type ListingService interface {
	Search(ctx context.Context, in SearchInput) (*PagedResult, error)
	GetPublic(ctx context.Context, id uint64) (*domain.Listing, error)
	GetAdmin(ctx context.Context, id uint64) (*domain.Listing, error)
	ListAll(ctx context.Context) ([]*domain.Listing, error)
	Create(ctx context.Context, in ListingInput) (*domain.Listing, error)
	Update(ctx context.Context, id uint64, in ListingInput) (*domain.Listing, error)
	Deactivate(ctx context.Context, id uint64) error
}

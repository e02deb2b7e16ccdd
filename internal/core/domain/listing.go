package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinListingYear       = 1900
	MaxListingYear       = 2100
	MaxMakeLength        = 100
	MaxModelLength       = 100
	MaxDescriptionLength = 2000
)

// Listing is a vehicle offered in the catalog. Inactive listings are hidden
// from every public read path.
type Listing struct {
	ID          uint64
	Make        string
	Model       string
	Year        int
	Price       decimal.Decimal
	Mileage     int
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Active      bool
}

// Deactivate performs the one-way Active -> Inactive transition.
func (l *Listing) Deactivate(now time.Time) {
	l.Active = false
	l.UpdatedAt = now
}

package sqldb

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/carsales/catalog-api/internal/core/domain"
)

type accountModel struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	Email           string    `gorm:"size:255;not null"`
	NormalizedEmail string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash    string    `gorm:"size:255;not null"`
	Role            string    `gorm:"size:20;not null;default:User;index"`
	CreatedAt       time.Time `gorm:"not null"`
}

func (accountModel) TableName() string { return "accounts" }

func accountFromDomain(a *domain.Account) *accountModel {
	return &accountModel{
		ID:              a.ID,
		Email:           a.Email,
		NormalizedEmail: a.NormalizedEmail,
		PasswordHash:    a.PasswordHash,
		Role:            a.Role.String(),
		CreatedAt:       a.CreatedAt,
	}
}

func (m *accountModel) toDomain() (*domain.Account, error) {
	role, err := domain.ParseRole(m.Role)
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		ID:              m.ID,
		Email:           m.Email,
		NormalizedEmail: m.NormalizedEmail,
		PasswordHash:    m.PasswordHash,
		Role:            role,
		CreatedAt:       m.CreatedAt.UTC(),
	}, nil
}

type listingModel struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement"`
	Make        string          `gorm:"size:100;not null;index"`
	Model       string          `gorm:"size:100;not null"`
	Year        int             `gorm:"not null;index"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Mileage     int             `gorm:"not null"`
	Description string          `gorm:"size:2000"`
	CreatedAt   time.Time       `gorm:"not null;index:idx_listings_active_created,priority:2"`
	UpdatedAt   time.Time       `gorm:"not null"`
	Active      bool            `gorm:"not null;default:true;index:idx_listings_active_created,priority:1"`
}

func (listingModel) TableName() string { return "listings" }

func listingFromDomain(l *domain.Listing) *listingModel {
	return &listingModel{
		ID:          l.ID,
		Make:        l.Make,
		Model:       l.Model,
		Year:        l.Year,
		Price:       l.Price,
		Mileage:     l.Mileage,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		Active:      l.Active,
	}
}

func (m *listingModel) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:          m.ID,
		Make:        m.Make,
		Model:       m.Model,
		Year:        m.Year,
		Price:       m.Price,
		Mileage:     m.Mileage,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
		Active:      m.Active,
	}
}

// isUniqueViolation covers dialectors that do not implement error
// translation as well as those that do.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

package sqldb

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/carsales/catalog-api/internal/core/domain"
	"github.com/carsales/catalog-api/internal/core/ports"
)

const newestFirst = "created_at DESC, id DESC"

// likeEscaper escapes LIKE wildcards using '!' which needs no quoting in any
// of the supported dialects.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type ListingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	m := listingFromDomain(l)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return domain.WrapStore("insert listing", err)
	}
	l.ID = m.ID
	return nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domain.Listing) error {
	res := r.db.WithContext(ctx).Model(&listingModel{}).Where("id = ?", l.ID).Updates(map[string]any{
		"make":        l.Make,
		"model":       l.Model,
		"year":        l.Year,
		"price":       l.Price,
		"mileage":     l.Mileage,
		"description": l.Description,
		"updated_at":  l.UpdatedAt,
		"active":      l.Active,
	})
	if res.Error != nil {
		return domain.WrapStore("update listing", res.Error)
	}
	if res.RowsAffected == 0 {
		// MySQL reports zero affected rows for an unchanged row.
		var n int64
		if err := r.db.WithContext(ctx).Model(&listingModel{}).Where("id = ?", l.ID).Count(&n).Error; err != nil {
			return domain.WrapStore("update listing", err)
		}
		if n == 0 {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id uint64, activeOnly bool) (*domain.Listing, error) {
	q := r.db.WithContext(ctx).Where("id = ?", id)
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var m listingModel
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.WrapStore("find listing", err)
	}
	return m.toDomain(), nil
}

func (r *ListingRepository) List(ctx context.Context, f ports.ListingFilter) ([]*domain.Listing, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&listingModel{}).Scopes(filterScope(f)).Count(&total).Error; err != nil {
		return nil, 0, domain.WrapStore("count listings", err)
	}

	var rows []listingModel
	err := r.db.WithContext(ctx).
		Scopes(filterScope(f)).
		Order(newestFirst).
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, domain.WrapStore("list listings", err)
	}
	return toDomainListings(rows), total, nil
}

func (r *ListingRepository) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	var rows []listingModel
	if err := r.db.WithContext(ctx).Order(newestFirst).Find(&rows).Error; err != nil {
		return nil, domain.WrapStore("list listings", err)
	}
	return toDomainListings(rows), nil
}

func (r *ListingRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&listingModel{}).Count(&n).Error; err != nil {
		return 0, domain.WrapStore("count listings", err)
	}
	return n, nil
}

func filterScope(f ports.ListingFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if f.ActiveOnly {
			tx = tx.Where("active = ?", true)
		}
		if f.Search != "" {
			pattern := "%" + likeEscaper.Replace(f.Search) + "%"
			tx = tx.Where(
				"(make LIKE ? ESCAPE '!' OR model LIKE ? ESCAPE '!' OR description LIKE ? ESCAPE '!')",
				pattern, pattern, pattern,
			)
		}
		if f.Make != "" {
			tx = tx.Where("make = ?", f.Make)
		}
		if f.MinYear != nil {
			tx = tx.Where("year >= ?", *f.MinYear)
		}
		if f.MaxYear != nil {
			tx = tx.Where("year <= ?", *f.MaxYear)
		}
		if f.MinPrice != nil {
			tx = tx.Where("price >= ?", *f.MinPrice)
		}
		if f.MaxPrice != nil {
			tx = tx.Where("price <= ?", *f.MaxPrice)
		}
		return tx
	}
}

func toDomainListings(rows []listingModel) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}

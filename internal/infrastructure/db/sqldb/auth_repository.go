package sqldb

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/carsales/catalog-api/internal/core/domain"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) FindByNormalizedEmail(ctx context.Context, normalized string) (*domain.Account, error) {
	var m accountModel
	err := r.db.WithContext(ctx).Where("normalized_email = ?", normalized).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.WrapStore("find account", err)
	}
	account, err := m.toDomain()
	if err != nil {
		return nil, domain.WrapStore("decode account", fmt.Errorf("account %d: %w", m.ID, err))
	}
	return account, nil
}

func (r *AuthRepository) Create(ctx context.Context, account *domain.Account) error {
	m := accountFromDomain(account)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return domain.WrapStore("insert account", err)
	}
	account.ID = m.ID
	return nil
}

func (r *AuthRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&accountModel{}).Where("role = ?", role.String()).Count(&n).Error
	if err != nil {
		return 0, domain.WrapStore("count accounts", err)
	}
	return n, nil
}

func (r *AuthRepository) List(ctx context.Context) ([]*domain.Account, error) {
	var rows []accountModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, domain.WrapStore("list accounts", err)
	}
	out := make([]*domain.Account, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toDomain()
		if err != nil {
			return nil, domain.WrapStore("decode account", fmt.Errorf("account %d: %w", rows[i].ID, err))
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *AuthRepository) UpdateEmail(ctx context.Context, id uint64, email, normalized string) error {
	res := r.db.WithContext(ctx).Model(&accountModel{}).Where("id = ?", id).Updates(map[string]any{
		"email":            email,
		"normalized_email": normalized,
	})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.ErrDuplicateEmail
		}
		return domain.WrapStore("update account email", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

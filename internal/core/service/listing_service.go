package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/carsales/catalog-api/internal/core/domain"
	"github.com/carsales/catalog-api/internal/core/ports"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ListingService struct {
	repo      ports.ListingRepository
	validator *listingValidator
	logger    zerolog.Logger
	now       func() time.Time
}

func NewListingService(repo ports.ListingRepository, logger zerolog.Logger) *ListingService {
	return &ListingService{
		repo:      repo,
		validator: newListingValidator(),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Search returns one page of active listings matching every provided filter,
// newest first.
func (s *ListingService) Search(ctx context.Context, in ports.SearchInput) (*ports.PagedResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	size := in.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	// (queryPage-1)*size must fit in an int; any page past that is empty anyway.
	queryPage := page
	if limit := math.MaxInt / size; queryPage > limit {
		queryPage = limit
	}

	items, total, err := s.repo.List(ctx, ports.ListingFilter{
		ActiveOnly: true,
		Search:     blankToEmpty(in.Search),
		Make:       blankToEmpty(in.Make),
		MinYear:    in.MinYear,
		MaxYear:    in.MaxYear,
		MinPrice:   in.MinPrice,
		MaxPrice:   in.MaxPrice,
		Page:       queryPage,
		PageSize:   size,
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Listing{}
	}

	return &ports.PagedResult{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages(total, size),
	}, nil
}

// GetPublic returns an active listing.
func (s *ListingService) GetPublic(ctx context.Context, id uint64) (*domain.Listing, error) {
	return s.find(ctx, id, true)
}

// GetAdmin returns a listing regardless of its active flag.
func (s *ListingService) GetAdmin(ctx context.Context, id uint64) (*domain.Listing, error) {
	return s.find(ctx, id, false)
}

func (s *ListingService) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Listing{}
	}
	return items, nil
}

// Create validates in and stores a new active listing.
func (s *ListingService) Create(ctx context.Context, in ports.ListingInput) (*domain.Listing, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	now := s.now()
	l := &domain.Listing{
		Make:        in.Make,
		Model:       in.Model,
		Year:        in.Year,
		Price:       in.Price,
		Mileage:     in.Mileage,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Active:      true,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Error().Err(err).Msg("failed to create listing")
		return nil, err
	}

	s.logger.Info().Uint64("listing_id", l.ID).Str("make", l.Make).Str("model", l.Model).Msg("listing created")
	return l, nil
}

// Update overwrites every mutable field of listing id. CreatedAt and Active
// are left as they are.
func (s *ListingService) Update(ctx context.Context, id uint64, in ports.ListingInput) (*domain.Listing, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	l, err := s.find(ctx, id, false)
	if err != nil {
		return nil, err
	}

	l.Make = in.Make
	l.Model = in.Model
	l.Year = in.Year
	l.Price = in.Price
	l.Mileage = in.Mileage
	l.Description = in.Description
	l.UpdatedAt = s.touch(l.CreatedAt)

	if err := s.repo.Save(ctx, l); err != nil {
		s.logger.Error().Err(err).Uint64("listing_id", id).Msg("failed to update listing")
		return nil, err
	}

	s.logger.Info().Uint64("listing_id", id).Msg("listing updated")
	return l, nil
}

// Deactivate soft-deletes listing id. Deactivating an inactive listing is a
// no-op success apart from the refreshed UpdatedAt.
func (s *ListingService) Deactivate(ctx context.Context, id uint64) error {
	l, err := s.find(ctx, id, false)
	if err != nil {
		return err
	}

	l.Deactivate(s.touch(l.CreatedAt))
	if err := s.repo.Save(ctx, l); err != nil {
		s.logger.Error().Err(err).Uint64("listing_id", id).Msg("failed to deactivate listing")
		return err
	}

	s.logger.Info().Uint64("listing_id", id).Msg("listing deactivated")
	return nil
}

func (s *ListingService) find(ctx context.Context, id uint64, activeOnly bool) (*domain.Listing, error) {
	l, err := s.repo.FindByID(ctx, id, activeOnly)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{ID: id}
		}
		return nil, err
	}
	return l, nil
}

// touch returns the current time, never earlier than createdAt.
func (s *ListingService) touch(createdAt time.Time) time.Time {
	now := s.now()
	if now.Before(createdAt) {
		return createdAt
	}
	return now
}

// blankToEmpty drops whitespace-only filter values; others are kept verbatim.
func blankToEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

func totalPages(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

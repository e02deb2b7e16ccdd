package handler

import (
	"encoding/json"

	"github.com/carsales/catalog-api/internal/core/domain"
	"github.com/carsales/catalog-api/internal/core/ports"
)

// --- Request → Service input ---

func toListingInput(req listingRequest) ports.ListingInput {
	return ports.ListingInput{
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Price:       req.Price,
		Mileage:     req.Mileage,
		Description: req.Description,
	}
}

// --- Service result → HTTP response ---

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		Email:     s.Email,
		Role:      s.Role.String(),
		ExpiresAt: s.ExpiresAt.UTC(),
	}
}

func toListingResponse(l *domain.Listing) listingResponse {
	return listingResponse{
		ID:          l.ID,
		Make:        l.Make,
		Model:       l.Model,
		Year:        l.Year,
		Price:       json.Number(l.Price.String()),
		Mileage:     l.Mileage,
		Description: l.Description,
		CreatedAt:   l.CreatedAt.UTC(),
		UpdatedAt:   l.UpdatedAt.UTC(),
		IsActive:    l.Active,
	}
}

func toListingResponses(items []*domain.Listing) []listingResponse {
	out := make([]listingResponse, len(items))
	for i, l := range items {
		out[i] = toListingResponse(l)
	}
	return out
}

func toPagedResponse(r *ports.PagedResult) pagedListingsResponse {
	return pagedListingsResponse{
		Items:      toListingResponses(r.Items),
		TotalCount: r.TotalCount,
		Page:       r.Page,
		PageSize:   r.PageSize,
		TotalPages: r.TotalPages,
	}
}

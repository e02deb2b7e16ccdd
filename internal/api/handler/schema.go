package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// --- Auth ---

type credentialsRequest struct {
	Email    string `json:"email"    validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type meResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// --- Listings ---

// listingRequest accepts price either as a JSON number or a string.
type listingRequest struct {
	Make        string          `json:"make"`
	Model       string          `json:"model"`
	Year        int             `json:"year"`
	Price       decimal.Decimal `json:"price"       swaggertype:"number"`
	Mileage     int             `json:"mileage"`
	Description string          `json:"description"`
}

type listingResponse struct {
	ID          uint64      `json:"id"`
	Make        string      `json:"make"`
	Model       string      `json:"model"`
	Year        int         `json:"year"`
	Price       json.Number `json:"price"       swaggertype:"number"`
	Mileage     int         `json:"mileage"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	IsActive    bool        `json:"isActive"`
}

type pagedListingsResponse struct {
	Items      []listingResponse `json:"items"`
	TotalCount int64             `json:"totalCount"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/carsales/catalog-api/internal/api/metrics"
	"github.com/carsales/catalog-api/internal/core/ports"
)

// AdminListingHandler serves catalog management for admins. Inactive
// listings are visible here.
type AdminListingHandler struct {
	service ports.ListingService
}

func NewAdminListingHandler(service ports.ListingService) *AdminListingHandler {
	return &AdminListingHandler{service: service}
}

// List handles GET /api/admin/cars.
//
// @Summary      List all listings
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   listingResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/cars [get]
func (h *AdminListingHandler) List(c echo.Context) error {
	items, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponses(items))
}

// Get handles GET /api/admin/cars/:id.
//
// @Summary      Get any listing
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Listing ID"
// @Success      200  {object}  listingResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/cars/{id} [get]
func (h *AdminListingHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	l, err := h.service.GetAdmin(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

// Create handles POST /api/admin/cars.
//
// @Summary      Create a listing
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      listingRequest  true  "Listing"
// @Success      201   {object}  listingResponse
// @Failure      400   {object}  errorResponse
// @Router       /admin/cars [post]
func (h *AdminListingHandler) Create(c echo.Context) error {
	var req listingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	l, err := h.service.Create(c.Request().Context(), toListingInput(req))
	if err != nil {
		return err
	}
	metrics.ListingMutationsTotal.WithLabelValues("create").Inc()

	c.Response().Header().Set(echo.HeaderLocation, "/api/admin/cars/"+strconv.FormatUint(l.ID, 10))
	return c.JSON(http.StatusCreated, toListingResponse(l))
}

// Update handles PUT /api/admin/cars/:id.
//
// @Summary      Update a listing
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Listing ID"
// @Param        body  body      listingRequest  true  "Listing"
// @Success      200   {object}  listingResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /admin/cars/{id} [put]
func (h *AdminListingHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req listingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	l, err := h.service.Update(c.Request().Context(), id, toListingInput(req))
	if err != nil {
		return err
	}
	metrics.ListingMutationsTotal.WithLabelValues("update").Inc()

	return c.JSON(http.StatusOK, toListingResponse(l))
}

// Delete handles DELETE /api/admin/cars/:id. The listing is deactivated,
// never removed.
//
// @Summary      Deactivate a listing
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  int  true  "Listing ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /admin/cars/{id} [delete]
func (h *AdminListingHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.service.Deactivate(c.Request().Context(), id); err != nil {
		return err
	}
	metrics.ListingMutationsTotal.WithLabelValues("deactivate").Inc()

	return c.NoContent(http.StatusNoContent)
}

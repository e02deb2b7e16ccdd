package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carsales/catalog-api/internal/api/metrics"
	"github.com/carsales/catalog-api/internal/core/ports"
)

// ListingHandler serves the public, read-only catalog.
type ListingHandler struct {
	service ports.ListingService
}

func NewListingHandler(service ports.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// Search handles GET /api/cars.
//
// @Summary      Search active listings
// @Tags         cars
// @Produce      json
// @Param        search    query     string  false  "Substring of make, model or description"
// @Param        make      query     string  false  "Exact make"
// @Param        minYear   query     int     false  "Minimum year (inclusive)"
// @Param        maxYear   query     int     false  "Maximum year (inclusive)"
// @Param        minPrice  query     number  false  "Minimum price (inclusive)"
// @Param        maxPrice  query     number  false  "Maximum price (inclusive)"
// @Param        page      query     int     false  "Page number, 1-based"  default(1)
// @Param        pageSize  query     int     false  "Page size, at most 100"  default(10)
// @Success      200       {object}  pagedListingsResponse
// @Failure      400       {object}  errorResponse
// @Router       /cars [get]
func (h *ListingHandler) Search(c echo.Context) error {
	in, err := searchInput(c)
	if err != nil {
		return err
	}

	result, err := h.service.Search(c.Request().Context(), in)
	if err != nil {
		return err
	}
	metrics.SearchResultCount.Observe(float64(result.TotalCount))

	return c.JSON(http.StatusOK, toPagedResponse(result))
}

// Get handles GET /api/cars/:id.
//
// @Summary      Get an active listing
// @Tags         cars
// @Produce      json
// @Param        id   path      int  true  "Listing ID"
// @Success      200  {object}  listingResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /cars/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	l, err := h.service.GetPublic(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

func searchInput(c echo.Context) (ports.SearchInput, error) {
	in := ports.SearchInput{
		Search: c.QueryParam("search"),
		Make:   c.QueryParam("make"),
	}

	var err error
	if in.MinYear, err = queryInt(c, "minYear"); err != nil {
		return in, err
	}
	if in.MaxYear, err = queryInt(c, "maxYear"); err != nil {
		return in, err
	}
	if in.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return in, err
	}
	if in.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return in, err
	}

	page, err := queryInt(c, "page")
	if err != nil {
		return in, err
	}
	size, err := queryInt(c, "pageSize")
	if err != nil {
		return in, err
	}
	in.Page = intOrZero(page)
	in.PageSize = intOrZero(size)
	return in, nil
}

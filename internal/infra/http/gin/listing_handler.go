package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rento/internal/app/dto"
	listingapp "rento/internal/app/handlers/listings"
	"rento/internal/app/queries"
	"rento/internal/domain/shared/fault"
)

var errInvalidNumber = fault.New(fault.Validation, "Numeric filters must be non-negative numbers")

// ListingHandler serves the public apartment catalog.
type ListingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

// Catalog responds with a filtered collection of apartments.
func (h ListingHandler) Catalog(c *gin.Context) {
	query := listingapp.SearchCatalogQuery{
		ViewerID:      viewerID(c),
		City:          strings.TrimSpace(c.Query("city")),
		Region:        strings.TrimSpace(c.Query("region")),
		OnlyAvailable: parseFlag(c.Query("available")),
		Sort:          strings.TrimSpace(c.Query("sortBy")),
	}
	var err error
	if query.MinPrice, err = parseInt64(c.Query("minPrice")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if query.MaxPrice, err = parseInt64(c.Query("maxPrice")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if query.MinBedrooms, err = parseInt(c.Query("bedrooms")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if query.MinBathrooms, err = parseInt(c.Query("bathrooms")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	items, err := queries.Ask[listingapp.SearchCatalogQuery, []dto.Listing](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondList(c, items)
}

func (h ListingHandler) Overview(c *gin.Context) {
	query := listingapp.GetOverviewQuery{ListingID: c.Param("id"), ViewerID: viewerID(c)}
	result, err := queries.Ask[listingapp.GetOverviewQuery, dto.ListingDetail](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, "", result)
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true
	default:
		return false
	}
}

func parseInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errInvalidNumber
	}
	return value, nil
}

func parseInt64(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, errInvalidNumber
	}
	return value, nil
}

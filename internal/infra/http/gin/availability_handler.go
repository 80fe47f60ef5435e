package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rento/internal/app/dto"
	availabilityapp "rento/internal/app/handlers/availability"
	listingapp "rento/internal/app/handlers/listings"
	"rento/internal/app/queries"
)

// AvailabilityHandler exposes an apartment's booked ranges and stay quotes.
type AvailabilityHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	query := availabilityapp.GetCalendarQuery{ListingID: c.Param("id")}
	ranges, err := queries.Ask[availabilityapp.GetCalendarQuery, []dto.BookedRange](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondList(c, ranges)
}

// Quote prices a prospective stay without booking it.
func (h AvailabilityHandler) Quote(c *gin.Context) {
	start, err := parseOptionalDate(c.Query("start_date"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	end, err := parseOptionalDate(c.Query("end_date"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	query := listingapp.QuoteStayQuery{ListingID: c.Param("id"), StartDate: start, EndDate: end}
	quote, err := queries.Ask[listingapp.QuoteStayQuery, dto.Quote](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, "", quote)
}

package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rento/internal/app/commands"
	"rento/internal/app/dto"
	bookingapp "rento/internal/app/handlers/booking"
	"rento/internal/app/queries"
	domainbooking "rento/internal/domain/booking"
	"rento/internal/domain/shared/daterange"
	"rento/internal/domain/shared/fault"
)

var errInvalidDate = fault.Wrap(fault.Validation, daterange.ErrInvalidDate, "Dates must use the YYYY-MM-DD format")

// Availability and overlap rejections surface as 400 on booking creation.
var createBookingStatus = statusOverride{fault.Conflict: http.StatusBadRequest}

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createBookingRequest struct {
	ApartmentID string `json:"apartment_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, _ := currentPrincipal(c)
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, errInvalidBody)
		return
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	cmd := bookingapp.CreateBookingCommand{
		BookingID:       uuid.NewString(),
		RequesterID:     user.UserID,
		ListingID:       strings.TrimSpace(req.ApartmentID),
		StartDate:       start,
		EndDate:         end,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	if cmd.ListingID == "" {
		respondError(c, h.Logger, domainbooking.ErrContactRequired)
		return
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err, createBookingStatus)
		return
	}
	respondData(c, http.StatusCreated, "Booking created successfully", result.Booking)
}

func (h BookingHandler) List(c *gin.Context) {
	user, _ := currentPrincipal(c)
	query := bookingapp.ListBookingsQuery{RequesterID: user.UserID, Status: strings.TrimSpace(c.Query("status"))}
	items, err := queries.Ask[bookingapp.ListBookingsQuery, []dto.Booking](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondList(c, items)
}

func (h BookingHandler) Get(c *gin.Context) {
	user, _ := currentPrincipal(c)
	query := bookingapp.GetBookingQuery{RequesterID: user.UserID, BookingID: c.Param("id")}
	item, err := queries.Ask[bookingapp.GetBookingQuery, dto.Booking](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, "", item)
}

func (h BookingHandler) Cancel(c *gin.Context) {
	user, _ := currentPrincipal(c)
	cmd := bookingapp.CancelBookingCommand{RequesterID: user.UserID, BookingID: c.Param("id")}
	item, err := commands.Dispatch[bookingapp.CancelBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, "Booking cancelled successfully", item)
}

func (h BookingHandler) Confirm(c *gin.Context) {
	user, _ := currentPrincipal(c)
	cmd := bookingapp.ConfirmBookingCommand{CallerID: user.UserID, BookingID: c.Param("id")}
	item, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, *dto.Booking](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, "Booking confirmed successfully", item)
}

// parseOptionalDate leaves blank values zero so the command reports the missing field.
func parseOptionalDate(raw string) (daterange.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return daterange.Date{}, nil
	}
	d, err := daterange.Parse(raw)
	if err != nil {
		return daterange.Date{}, errInvalidDate
	}
	return d, nil
}

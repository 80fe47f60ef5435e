package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"rento/internal/app/clock"
	"rento/internal/app/commands"
	"rento/internal/app/dto"
	"rento/internal/app/middleware"
	"rento/internal/app/outbox"
	"rento/internal/app/uow"
	"rento/internal/domain/availability"
	domainbooking "rento/internal/domain/booking"
	domainlistings "rento/internal/domain/listings"
	"rento/internal/domain/shared/daterange"
)

const CreateBookingKey = "booking.create"

type CreateBookingCommand struct {
	BookingID       string `validate:"required"`
	RequesterID     string `validate:"required"`
	ListingID       string `validate:"required"`
	StartDate       daterange.Date
	EndDate         daterange.Date
	Name            string
	Email           string
	Phone           string
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return CreateBookingKey }

func (c CreateBookingCommand) ActorID() string { return c.RequesterID }

// IdempotencyKey scopes the client key to the requester.
func (c CreateBookingCommand) IdempotencyKey() string {
	key := strings.TrimSpace(c.IdempotencyKeyV)
	if key == "" {
		return ""
	}
	return c.RequesterID + ":" + key
}

func (c CreateBookingCommand) hasContact() bool {
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.Email) != "" && strings.TrimSpace(c.Phone) != ""
}

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	Booking      dto.Booking `json:"booking"`
	BilledMonths int         `json:"billed_months"`
}

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	if cmd.StartDate.IsZero() || cmd.EndDate.IsZero() || !cmd.hasContact() {
		return nil, domainbooking.ErrContactRequired
	}
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx
	unit := scope.Unit

	listing, err := unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	existing, err := unit.Bookings().ListActiveByListing(ctx, listing.ID)
	if err != nil {
		return nil, err
	}

	quote, err := availability.Evaluate(listing, cmd.StartDate, cmd.EndDate, existing, h.Clock.Today())
	if err != nil {
		var rejection *availability.Rejection
		if errors.As(err, &rejection) {
			logger(h.Logger).Info("booking rejected", "listing_id", listing.ID, "reason", rejection.Reason)
		}
		return nil, err
	}

	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:          domainbooking.BookingID(cmd.BookingID),
		ListingID:   listing.ID,
		RequesterID: cmd.RequesterID,
		Range:       daterange.DateRange{Start: cmd.StartDate, End: cmd.EndDate},
		Total:       quote.Total,
		Contact:     domainbooking.Contact{Name: cmd.Name, Email: cmd.Email, Phone: cmd.Phone},
		CreatedAt:   h.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Bookings().Insert(ctx, booking); err != nil {
		if errors.Is(err, domainbooking.ErrOverlap) {
			logger(h.Logger).Info("booking lost overlap race", "listing_id", listing.ID)
			return nil, availability.Reject(availability.DateRangeConflict)
		}
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return nil, err
	}
	if err := scope.Commit(); err != nil {
		return nil, err
	}

	logger(h.Logger).Info("booking created", "booking_id", booking.ID, "listing_id", listing.ID, "months", quote.BilledMonths, "total", quote.Total.Amount)
	return &CreateBookingResult{
		Booking:      dto.MapBooking(booking, listing, dto.BookingSummaryView),
		BilledMonths: quote.BilledMonths,
	}, nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

var (
	_ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
	_ middleware.IdempotentCommand                                  = CreateBookingCommand{}
	_ middleware.Attributed                                         = CreateBookingCommand{}
)

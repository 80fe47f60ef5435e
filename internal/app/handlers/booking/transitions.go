package booking

import (
	"context"
	"errors"
	"log/slog"

	"rento/internal/app/clock"
	"rento/internal/app/commands"
	"rento/internal/app/dto"
	"rento/internal/app/outbox"
	"rento/internal/app/uow"
	domainbooking "rento/internal/domain/booking"
	domainlistings "rento/internal/domain/listings"
)

const (
	CancelBookingKey  = "booking.cancel"
	ConfirmBookingKey = "booking.confirm"
)

type CancelBookingCommand struct {
	RequesterID string `validate:"required"`
	BookingID   string `validate:"required"`
}

func (c CancelBookingCommand) Key() string     { return CancelBookingKey }
func (c CancelBookingCommand) ActorID() string { return c.RequesterID }

type ConfirmBookingCommand struct {
	CallerID  string `validate:"required"`
	BookingID string `validate:"required"`
}

func (c ConfirmBookingCommand) Key() string     { return ConfirmBookingKey }
func (c ConfirmBookingCommand) ActorID() string { return c.CallerID }

type CancelBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	booking, err := scope.Unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if err := booking.Cancel(cmd.RequesterID, h.Clock.Today(), h.Clock.Now()); err != nil {
		return nil, err
	}
	if err := scope.Unit.Bookings().UpdateStatus(ctx, booking); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return nil, err
	}
	if err := scope.Commit(); err != nil {
		return nil, err
	}
	logger(h.Logger).Info("booking cancelled", "booking_id", booking.ID, "requester_id", cmd.RequesterID)
	out := dto.MapBooking(booking, nil, dto.BookingSummaryView)
	return &out, nil
}

type ConfirmBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (*dto.Booking, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	booking, err := scope.Unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	var owner domainlistings.OwnerID
	listing, err := scope.Unit.Listings().ByID(ctx, booking.ListingID)
	switch {
	case err == nil:
		owner = listing.Owner
	case errors.Is(err, domainlistings.ErrNotFound):
	default:
		return nil, err
	}
	if err := booking.Confirm(cmd.CallerID, owner, h.Clock.Now()); err != nil {
		return nil, err
	}
	if err := scope.Unit.Bookings().UpdateStatus(ctx, booking); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, booking); err != nil {
		return nil, err
	}
	if err := scope.Commit(); err != nil {
		return nil, err
	}
	logger(h.Logger).Info("booking confirmed", "booking_id", booking.ID, "owner_id", cmd.CallerID)
	out := dto.MapBooking(booking, listing, dto.BookingSummaryView)
	return &out, nil
}

var (
	_ commands.Handler[CancelBookingCommand, *dto.Booking]  = (*CancelBookingHandler)(nil)
	_ commands.Handler[ConfirmBookingCommand, *dto.Booking] = (*ConfirmBookingHandler)(nil)
)

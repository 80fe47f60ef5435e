package booking

import (
	"context"
	"errors"

	"rento/internal/app/dto"
	"rento/internal/app/queries"
	"rento/internal/app/uow"
	domainbooking "rento/internal/domain/booking"
	domainlistings "rento/internal/domain/listings"
	"rento/internal/domain/policy"
)

const (
	ListBookingsKey = "booking.list"
	GetBookingKey   = "booking.get"
)

type ListBookingsQuery struct {
	RequesterID string `validate:"required"`
	Status      string
}

func (q ListBookingsQuery) Key() string     { return ListBookingsKey }
func (q ListBookingsQuery) ActorID() string { return q.RequesterID }

type GetBookingQuery struct {
	RequesterID string `validate:"required"`
	BookingID   string `validate:"required"`
}

func (q GetBookingQuery) Key() string     { return GetBookingKey }
func (q GetBookingQuery) ActorID() string { return q.RequesterID }

type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) ([]dto.Booking, error) {
	status, err := domainbooking.ParseStatus(q.Status)
	if err != nil {
		return nil, err
	}
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	bookings, err := scope.Unit.Bookings().ListByRequester(ctx, q.RequesterID, status)
	if err != nil {
		return nil, err
	}
	listings := make(map[domainlistings.ListingID]*domainlistings.Listing)
	out := make([]dto.Booking, 0, len(bookings))
	for _, b := range bookings {
		listing, ok := listings[b.ListingID]
		if !ok {
			listing, err = lookupListing(ctx, scope.Unit, b.ListingID)
			if err != nil {
				return nil, err
			}
			listings[b.ListingID] = listing
		}
		out = append(out, dto.MapBooking(b, listing, dto.BookingSummaryView))
	}
	return out, nil
}

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (dto.Booking, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.Booking{}, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	booking, err := scope.Unit.Bookings().ByID(ctx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return dto.Booking{}, err
	}
	if !policy.Owns(q.RequesterID, booking.RequesterID) {
		return dto.Booking{}, domainbooking.ErrNotFound
	}
	listing, err := lookupListing(ctx, scope.Unit, booking.ListingID)
	if err != nil {
		return dto.Booking{}, err
	}
	return dto.MapBooking(booking, listing, dto.BookingDetailView), nil
}

// lookupListing tolerates listings that disappeared after the booking was made.
func lookupListing(ctx context.Context, unit uow.UnitOfWork, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	listing, err := unit.Listings().ByID(ctx, id)
	if errors.Is(err, domainlistings.ErrNotFound) {
		return nil, nil
	}
	return listing, err
}

var (
	_ queries.Handler[ListBookingsQuery, []dto.Booking] = (*ListBookingsHandler)(nil)
	_ queries.Handler[GetBookingQuery, dto.Booking]     = (*GetBookingHandler)(nil)
)

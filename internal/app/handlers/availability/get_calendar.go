package availability

import (
	"context"
	"sort"

	"rento/internal/app/clock"
	"rento/internal/app/dto"
	"rento/internal/app/queries"
	"rento/internal/app/uow"
	domainlistings "rento/internal/domain/listings"
)

const GetCalendarKey = "availability.calendar"

// GetCalendarQuery lists the listing's reserved ranges that have not ended yet.
type GetCalendarQuery struct {
	ListingID string `validate:"required"`
}

func (q GetCalendarQuery) Key() string { return GetCalendarKey }

type GetCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Clock      clock.Clock
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) ([]dto.BookedRange, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	listing, err := scope.Unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return nil, err
	}
	bookings, err := scope.Unit.Bookings().ListActiveByListing(ctx, listing.ID)
	if err != nil {
		return nil, err
	}
	today := h.Clock.Today()
	out := make([]dto.BookedRange, 0, len(bookings))
	for _, b := range bookings {
		if !b.Blocking() || b.Range.End.Before(today) {
			continue
		}
		out = append(out, dto.BookedRange{StartDate: b.Range.Start, EndDate: b.Range.End, Status: string(b.Status)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

var _ queries.Handler[GetCalendarQuery, []dto.BookedRange] = (*GetCalendarHandler)(nil)

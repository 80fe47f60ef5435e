package listings

import (
	"context"

	"rento/internal/app/clock"
	"rento/internal/app/dto"
	"rento/internal/app/queries"
	"rento/internal/app/uow"
	"rento/internal/domain/availability"
	domainlistings "rento/internal/domain/listings"
	"rento/internal/domain/shared/daterange"
	"rento/internal/domain/shared/fault"
)

const QuoteStayKey = "listings.quote"

var ErrQuoteDatesRequired = fault.New(fault.Validation, "Start date and end date are required")

// QuoteStayQuery prices a stay without reserving it.
type QuoteStayQuery struct {
	ListingID string `validate:"required"`
	StartDate daterange.Date
	EndDate   daterange.Date
}

func (q QuoteStayQuery) Key() string { return QuoteStayKey }

type QuoteStayHandler struct {
	UoWFactory uow.UoWFactory
	Clock      clock.Clock
}

func (h *QuoteStayHandler) Handle(ctx context.Context, q QuoteStayQuery) (dto.Quote, error) {
	if q.StartDate.IsZero() || q.EndDate.IsZero() {
		return dto.Quote{}, ErrQuoteDatesRequired
	}
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.Quote{}, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	listing, err := scope.Unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.Quote{}, err
	}
	existing, err := scope.Unit.Bookings().ListActiveByListing(ctx, listing.ID)
	if err != nil {
		return dto.Quote{}, err
	}
	quote, err := availability.Evaluate(listing, q.StartDate, q.EndDate, existing, h.Clock.Today())
	if err != nil {
		return dto.Quote{}, err
	}
	return dto.MapQuote(listing.ID, q.StartDate, q.EndDate, quote), nil
}

var _ queries.Handler[QuoteStayQuery, dto.Quote] = (*QuoteStayHandler)(nil)

package listings

import (
	"context"

	"rento/internal/app/dto"
	reviewsapp "rento/internal/app/handlers/reviews"
	"rento/internal/app/queries"
	"rento/internal/app/uow"
	domainlistings "rento/internal/domain/listings"
)

const GetOverviewKey = "listings.overview"

// GetOverviewQuery loads one listing with its reviews.
type GetOverviewQuery struct {
	ListingID string `validate:"required"`
	ViewerID  string
}

func (q GetOverviewQuery) Key() string { return GetOverviewKey }

type GetOverviewHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetOverviewHandler) Handle(ctx context.Context, q GetOverviewQuery) (dto.ListingDetail, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.ListingDetail{}, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	listing, err := scope.Unit.Listings().ByID(ctx, domainlistings.ListingID(q.ListingID))
	if err != nil {
		return dto.ListingDetail{}, err
	}
	items, err := scope.Unit.Reviews().ListByListing(ctx, listing.ID)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	reviews, err := reviewsapp.MapWithAuthors(ctx, scope.Unit, items, nil)
	if err != nil {
		return dto.ListingDetail{}, err
	}
	favs, err := favoriteSet(ctx, scope.Unit, q.ViewerID)
	if err != nil {
		return dto.ListingDetail{}, err
	}

	var favorite *bool
	if favs != nil {
		_, ok := favs[listing.ID]
		favorite = &ok
	}
	return dto.ListingDetail{Listing: dto.MapListing(listing, favorite), Reviews: reviews}, nil
}

var _ queries.Handler[GetOverviewQuery, dto.ListingDetail] = (*GetOverviewHandler)(nil)

package reviews

import (
	"context"
	"errors"

	"rento/internal/app/dto"
	"rento/internal/app/queries"
	"rento/internal/app/uow"
	domainlistings "rento/internal/domain/listings"
)

const (
	ListListingReviewsKey = "reviews.by_listing"
	ListUserReviewsKey    = "reviews.by_user"
)

type ListListingReviewsQuery struct {
	ListingID string `validate:"required"`
}

func (q ListListingReviewsQuery) Key() string { return ListListingReviewsKey }

type ListListingReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListListingReviewsHandler) Handle(ctx context.Context, q ListListingReviewsQuery) (dto.ListingReviews, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.ListingReviews{}, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	listingID := domainlistings.ListingID(q.ListingID)
	if _, err := scope.Unit.Listings().ByID(ctx, listingID); err != nil {
		return dto.ListingReviews{}, err
	}
	items, err := scope.Unit.Reviews().ListByListing(ctx, listingID)
	if err != nil {
		return dto.ListingReviews{}, err
	}
	stats, err := scope.Unit.Reviews().Stats(ctx, listingID)
	if err != nil {
		return dto.ListingReviews{}, err
	}
	mapped, err := MapWithAuthors(ctx, scope.Unit, items, nil)
	if err != nil {
		return dto.ListingReviews{}, err
	}
	return dto.ListingReviews{Reviews: mapped, Stats: dto.MapReviewStats(stats)}, nil
}

// ListUserReviewsQuery returns the caller's reviews with the reviewed apartment titles.
type ListUserReviewsQuery struct {
	UserID string `validate:"required"`
}

func (q ListUserReviewsQuery) Key() string     { return ListUserReviewsKey }
func (q ListUserReviewsQuery) ActorID() string { return q.UserID }

type ListUserReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListUserReviewsHandler) Handle(ctx context.Context, q ListUserReviewsQuery) ([]dto.Review, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	items, err := scope.Unit.Reviews().ListByAuthor(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	titles := make(map[domainlistings.ListingID]string)
	for _, r := range items {
		if _, ok := titles[r.ListingID]; ok {
			continue
		}
		listing, err := scope.Unit.Listings().ByID(ctx, r.ListingID)
		switch {
		case err == nil:
			titles[r.ListingID] = listing.Title
		case errors.Is(err, domainlistings.ErrNotFound):
			titles[r.ListingID] = ""
		default:
			return nil, err
		}
	}
	return MapWithAuthors(ctx, scope.Unit, items, func(id domainlistings.ListingID) string { return titles[id] })
}

var (
	_ queries.Handler[ListListingReviewsQuery, dto.ListingReviews] = (*ListListingReviewsHandler)(nil)
	_ queries.Handler[ListUserReviewsQuery, []dto.Review]          = (*ListUserReviewsHandler)(nil)
)

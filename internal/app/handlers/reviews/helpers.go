package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rento/internal/app/dto"
	"rento/internal/app/uow"
	domainlistings "rento/internal/domain/listings"
	domainreviews "rento/internal/domain/reviews"
	domainuser "rento/internal/domain/user"
)

// recalculateListingRating stores the review aggregate on the listing so catalog reads
// need no join.
func recalculateListingRating(ctx context.Context, unit uow.UnitOfWork, listingID domainlistings.ListingID, now time.Time) error {
	stats, err := unit.Reviews().Stats(ctx, listingID)
	if err != nil {
		return err
	}
	listing, err := unit.Listings().ByID(ctx, listingID)
	if err != nil {
		return err
	}
	listing.UpdateRating(stats.Average, stats.Total, now)
	return unit.Listings().Save(ctx, listing)
}

// MapWithAuthors converts reviews and resolves author names. Deleted authors map to an
// empty name.
func MapWithAuthors(ctx context.Context, unit uow.UnitOfWork, items []*domainreviews.Review, listingTitle func(domainlistings.ListingID) string) ([]dto.Review, error) {
	names := make(map[string]string)
	out := make([]dto.Review, 0, len(items))
	for _, r := range items {
		name, ok := names[r.AuthorID]
		if !ok {
			u, err := unit.Users().ByID(ctx, domainuser.ID(r.AuthorID))
			switch {
			case err == nil:
				name = u.Name
			case errors.Is(err, domainuser.ErrNotFound):
			default:
				return nil, err
			}
			names[r.AuthorID] = name
		}
		title := ""
		if listingTitle != nil {
			title = listingTitle(r.ListingID)
		}
		out = append(out, dto.MapReview(r, name, title))
	}
	return out, nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

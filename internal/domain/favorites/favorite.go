package favorites

import (
	"context"
	"strings"
	"time"

	"rento/internal/domain/listings"
	"rento/internal/domain/shared/fault"
)

var (
	ErrAlreadyFavorite = fault.New(fault.Conflict, "Apartment already in favorites")
	ErrNotFound        = fault.New(fault.NotFound, "Apartment not in favorites")
	ErrInvalid         = fault.New(fault.Validation, "User and apartment are required")
)

type Favorite struct {
	UserID    string
	ListingID listings.ListingID
	CreatedAt time.Time
}

type Repository interface {
	// Add fails with ErrAlreadyFavorite for an existing pair.
	Add(ctx context.Context, favorite Favorite) error
	Remove(ctx context.Context, userID string, listingID listings.ListingID) error
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID string) ([]Favorite, error)
}

func New(userID string, listingID listings.ListingID, now time.Time) (Favorite, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(string(listingID)) == "" {
		return Favorite{}, ErrInvalid
	}
	return Favorite{UserID: userID, ListingID: listingID, CreatedAt: now.UTC()}, nil
}

// Set indexes favorites by listing for marking catalog items.
func Set(favs []Favorite) map[listings.ListingID]struct{} {
	out := make(map[listings.ListingID]struct{}, len(favs))
	for _, f := range favs {
		out[f.ListingID] = struct{}{}
	}
	return out
}

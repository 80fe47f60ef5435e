package dto

import (
	"time"

	domainlistings "rento/internal/domain/listings"
)

type Listing struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Currency    string    `json:"currency"`
	Location    string    `json:"location"`
	Region      string    `json:"region"`
	Address     string    `json:"address"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Area        int       `json:"area"`
	Lat         *float64  `json:"lat"`
	Lng         *float64  `json:"lng"`
	Available   bool      `json:"available"`
	ImageURL    string    `json:"image_url"`
	Rating      float64   `json:"rating"`
	ReviewCount int       `json:"review_count"`
	Favorite    *bool     `json:"favorite,omitempty"`
	FavoritedAt time.Time `json:"favorited_at,omitzero"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListingDetail struct {
	Listing
	Reviews []Review `json:"reviews"`
}

// MapListing converts a listing. favorite is nil for anonymous callers.
func MapListing(l *domainlistings.Listing, favorite *bool) Listing {
	out := Listing{
		ID:          string(l.ID),
		OwnerID:     string(l.Owner),
		Title:       l.Title,
		Description: l.Description,
		Price:       l.MonthlyPrice.Amount,
		Currency:    l.MonthlyPrice.Currency,
		Location:    l.Location,
		Region:      l.Region,
		Address:     l.Address,
		Bedrooms:    l.Bedrooms,
		Bathrooms:   l.Bathrooms,
		Area:        l.Area,
		Available:   l.Available,
		ImageURL:    l.ImageURL,
		Rating:      l.Rating,
		ReviewCount: l.ReviewCount,
		Favorite:    favorite,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
	if l.Geo != nil {
		lat, lng := l.Geo.Lat, l.Geo.Lng
		out.Lat, out.Lng = &lat, &lng
	}
	return out
}

func MapListings(items []*domainlistings.Listing, favorites map[domainlistings.ListingID]struct{}) []Listing {
	out := make([]Listing, 0, len(items))
	for _, l := range items {
		var fav *bool
		if favorites != nil {
			_, ok := favorites[l.ID]
			fav = &ok
		}
		out = append(out, MapListing(l, fav))
	}
	return out
}

package listings

import (
	"context"
	"strings"
	"time"

	"rento/internal/domain/policy"
	"rento/internal/domain/shared/events"
	"rento/internal/domain/shared/fault"
	"rento/internal/domain/shared/money"
)

var (
	ErrNotFound          = fault.New(fault.NotFound, "Apartment not found")
	ErrRequiredFields    = fault.New(fault.Validation, "Title, price, location, and region are required")
	ErrInvalidPrice      = fault.New(fault.Validation, "Price must be a positive integer")
	ErrInvalidRooms      = fault.New(fault.Validation, "Bedrooms and bathrooms must be at least 1")
	ErrInvalidGeo        = fault.New(fault.Validation, "Coordinates are out of range")
	ErrHasActiveBookings = fault.New(fault.Conflict, "Apartment has active bookings and cannot be deleted")
	ErrNotOwner          = fault.New(fault.Forbidden, "Not authorized to modify this apartment")
)

type ListingID string

// OwnerID is empty for unowned seed listings.
type OwnerID string

type GeoPoint struct {
	Lat float64
	Lng float64
}

func (g GeoPoint) Valid() bool {
	return g.Lat >= -90 && g.Lat <= 90 && g.Lng >= -180 && g.Lng <= 180
}

type Listing struct {
	ID           ListingID
	Owner        OwnerID
	Title        string
	Description  string
	Location     string
	Region       string
	Address      string
	Bedrooms     int
	Bathrooms    int
	Area         int
	Geo          *GeoPoint
	MonthlyPrice money.Money
	Available    bool
	ImageURL     string
	Rating       float64
	ReviewCount  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	// Delete removes the listing together with its bookings, reviews and favorites.
	Delete(ctx context.Context, id ListingID) error
	Search(ctx context.Context, params SearchParams) ([]*Listing, error)
	Count(ctx context.Context) (int, error)
}

type CreateParams struct {
	ID           ListingID
	Owner        OwnerID
	Title        string
	Description  string
	Location     string
	Region       string
	Address      string
	Bedrooms     int
	Bathrooms    int
	Area         int
	Geo          *GeoPoint
	MonthlyPrice int64
	Currency     string
	Available    bool
	ImageURL     string
	Now          time.Time
}

func NewListing(params CreateParams) (*Listing, error) {
	title := strings.TrimSpace(params.Title)
	location := strings.TrimSpace(params.Location)
	region := strings.TrimSpace(params.Region)
	if strings.TrimSpace(string(params.ID)) == "" || title == "" || location == "" || region == "" {
		return nil, ErrRequiredFields
	}
	if params.MonthlyPrice <= 0 {
		return nil, ErrInvalidPrice
	}
	price, err := money.New(params.MonthlyPrice, params.Currency)
	if err != nil {
		return nil, fault.Wrap(fault.Validation, err, "Invalid currency")
	}
	bedrooms, bathrooms := params.Bedrooms, params.Bathrooms
	if bedrooms == 0 {
		bedrooms = 1
	}
	if bathrooms == 0 {
		bathrooms = 1
	}
	if bedrooms < 0 || bathrooms < 0 {
		return nil, ErrInvalidRooms
	}
	if params.Geo != nil && !params.Geo.Valid() {
		return nil, ErrInvalidGeo
	}
	now := params.Now.UTC()
	listing := &Listing{
		ID:           params.ID,
		Owner:        params.Owner,
		Title:        title,
		Description:  strings.TrimSpace(params.Description),
		Location:     location,
		Region:       region,
		Address:      strings.TrimSpace(params.Address),
		Bedrooms:     bedrooms,
		Bathrooms:    bathrooms,
		Area:         params.Area,
		Geo:          copyGeo(params.Geo),
		MonthlyPrice: price,
		Available:    params.Available,
		ImageURL:     strings.TrimSpace(params.ImageURL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	listing.Record(ListingCreated{ListingID: listing.ID, Owner: listing.Owner, At: now})
	return listing, nil
}

// UpdateParams carries a partial update; nil fields keep their current value.
type UpdateParams struct {
	Title        *string
	Description  *string
	Location     *string
	Region       *string
	Address      *string
	Bedrooms     *int
	Bathrooms    *int
	Area         *int
	Lat          *float64
	Lng          *float64
	MonthlyPrice *int64
	Available    *bool
	ImageURL     *string
}

func (l *Listing) Update(params UpdateParams, now time.Time) error {
	next := *l
	if params.Title != nil {
		next.Title = strings.TrimSpace(*params.Title)
	}
	if params.Description != nil {
		next.Description = strings.TrimSpace(*params.Description)
	}
	if params.Location != nil {
		next.Location = strings.TrimSpace(*params.Location)
	}
	if params.Region != nil {
		next.Region = strings.TrimSpace(*params.Region)
	}
	if params.Address != nil {
		next.Address = strings.TrimSpace(*params.Address)
	}
	if next.Title == "" || next.Location == "" || next.Region == "" {
		return ErrRequiredFields
	}
	if params.Bedrooms != nil {
		next.Bedrooms = *params.Bedrooms
	}
	if params.Bathrooms != nil {
		next.Bathrooms = *params.Bathrooms
	}
	if next.Bedrooms < 1 || next.Bathrooms < 1 {
		return ErrInvalidRooms
	}
	if params.Area != nil {
		next.Area = *params.Area
	}
	if params.Lat != nil || params.Lng != nil {
		geo := GeoPoint{}
		if next.Geo != nil {
			geo = *next.Geo
		}
		if params.Lat != nil {
			geo.Lat = *params.Lat
		}
		if params.Lng != nil {
			geo.Lng = *params.Lng
		}
		if !geo.Valid() {
			return ErrInvalidGeo
		}
		next.Geo = &geo
	}
	if params.MonthlyPrice != nil {
		if *params.MonthlyPrice <= 0 {
			return ErrInvalidPrice
		}
		next.MonthlyPrice.Amount = *params.MonthlyPrice
	}
	if params.Available != nil {
		next.Available = *params.Available
	}
	if params.ImageURL != nil {
		next.ImageURL = strings.TrimSpace(*params.ImageURL)
	}
	next.UpdatedAt = now.UTC()

	l.Title, l.Description, l.Location, l.Region, l.Address = next.Title, next.Description, next.Location, next.Region, next.Address
	l.Bedrooms, l.Bathrooms, l.Area, l.Geo = next.Bedrooms, next.Bathrooms, next.Area, next.Geo
	l.MonthlyPrice, l.Available, l.ImageURL, l.UpdatedAt = next.MonthlyPrice, next.Available, next.ImageURL, next.UpdatedAt
	l.Record(ListingUpdated{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

func (l *Listing) SetImage(url string, now time.Time) {
	l.ImageURL = strings.TrimSpace(url)
	l.UpdatedAt = now.UTC()
	l.Record(ListingUpdated{ListingID: l.ID, At: l.UpdatedAt})
}

// UpdateRating stores the aggregate of the listing's reviews.
func (l *Listing) UpdateRating(average float64, count int, now time.Time) {
	l.Rating = average
	l.ReviewCount = count
	l.UpdatedAt = now.UTC()
}

// EnsureOwner rejects every actor for unowned listings.
func (l *Listing) EnsureOwner(actor string) error {
	if !policy.Owns(actor, string(l.Owner)) {
		return ErrNotOwner
	}
	return nil
}

// Retire records the deletion; removing the row is the repository's job.
func (l *Listing) Retire(now time.Time) {
	l.Record(ListingDeleted{ListingID: l.ID, At: now.UTC()})
}

// Bookable reports whether the listing currently accepts bookings.
func (l *Listing) Bookable() bool {
	return l != nil && l.Available
}

func copyGeo(g *GeoPoint) *GeoPoint {
	if g == nil {
		return nil
	}
	out := *g
	return &out
}

package listings

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"rento/internal/app/clock"
	"rento/internal/app/commands"
	"rento/internal/app/dto"
	"rento/internal/app/outbox"
	"rento/internal/app/uow"
	domainbooking "rento/internal/domain/booking"
	domainlistings "rento/internal/domain/listings"
)

const (
	CreateListingKey = "listings.create"
	UpdateListingKey = "listings.update"
	DeleteListingKey = "listings.delete"
)

type ListingPayload struct {
	Title       string
	Description string
	Price       int64
	Currency    string
	Location    string
	Region      string
	Address     string
	Bedrooms    int
	Bathrooms   int
	Area        int
	Lat         *float64
	Lng         *float64
	Available   *bool
	ImageURL    string
}

type CreateListingCommand struct {
	OwnerID string `validate:"required"`
	Payload ListingPayload
}

func (c CreateListingCommand) Key() string     { return CreateListingKey }
func (c CreateListingCommand) ActorID() string { return c.OwnerID }

type CreateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *CreateListingHandler) Handle(ctx context.Context, cmd CreateListingCommand) (*dto.Listing, error) {
	p := cmd.Payload
	var geo *domainlistings.GeoPoint
	if p.Lat != nil && p.Lng != nil {
		geo = &domainlistings.GeoPoint{Lat: *p.Lat, Lng: *p.Lng}
	}
	available := true
	if p.Available != nil {
		available = *p.Available
	}
	listing, err := domainlistings.NewListing(domainlistings.CreateParams{
		ID:           domainlistings.ListingID(uuid.NewString()),
		Owner:        domainlistings.OwnerID(cmd.OwnerID),
		Title:        p.Title,
		Description:  p.Description,
		Location:     p.Location,
		Region:       p.Region,
		Address:      p.Address,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		Area:         p.Area,
		Geo:          geo,
		MonthlyPrice: p.Price,
		Currency:     p.Currency,
		Available:    available,
		ImageURL:     p.ImageURL,
		Now:          h.Clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	if err := scope.Unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}
	if err := scope.Commit(); err != nil {
		return nil, err
	}

	logger(h.Logger).Info("listing created", "listing_id", listing.ID, "owner_id", cmd.OwnerID)
	out := dto.MapListing(listing, nil)
	return &out, nil
}

type UpdateListingCommand struct {
	OwnerID   string `validate:"required"`
	ListingID string `validate:"required"`
	Changes   domainlistings.UpdateParams
}

func (c UpdateListingCommand) Key() string     { return UpdateListingKey }
func (c UpdateListingCommand) ActorID() string { return c.OwnerID }

type UpdateListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *UpdateListingHandler) Handle(ctx context.Context, cmd UpdateListingCommand) (*dto.Listing, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	listing, err := scope.Unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if err := listing.EnsureOwner(cmd.OwnerID); err != nil {
		return nil, err
	}
	if err := listing.Update(cmd.Changes, h.Clock.Now()); err != nil {
		return nil, err
	}
	if err := scope.Unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}
	if err := scope.Commit(); err != nil {
		return nil, err
	}

	logger(h.Logger).Info("listing updated", "listing_id", listing.ID, "owner_id", cmd.OwnerID)
	out := dto.MapListing(listing, nil)
	return &out, nil
}

type DeleteListingCommand struct {
	OwnerID   string `validate:"required"`
	ListingID string `validate:"required"`
}

func (c DeleteListingCommand) Key() string     { return DeleteListingKey }
func (c DeleteListingCommand) ActorID() string { return c.OwnerID }

// DeleteListingHandler removes a listing with its reviews, favorites and past bookings.
type DeleteListingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *DeleteListingHandler) Handle(ctx context.Context, cmd DeleteListingCommand) (struct{}, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return struct{}{}, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	listing, err := scope.Unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return struct{}{}, err
	}
	if err := listing.EnsureOwner(cmd.OwnerID); err != nil {
		return struct{}{}, err
	}
	active, err := scope.Unit.Bookings().ListActiveByListing(ctx, listing.ID)
	if err != nil {
		return struct{}{}, err
	}
	if domainbooking.BlocksRemoval(active, h.Clock.Today()) {
		return struct{}{}, domainlistings.ErrHasActiveBookings
	}
	listing.Retire(h.Clock.Now())
	if err := scope.Unit.Listings().Delete(ctx, listing.ID); err != nil {
		return struct{}{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return struct{}{}, err
	}
	if err := scope.Commit(); err != nil {
		return struct{}{}, err
	}

	logger(h.Logger).Info("listing deleted", "listing_id", listing.ID, "owner_id", cmd.OwnerID)
	return struct{}{}, nil
}

var (
	_ commands.Handler[CreateListingCommand, *dto.Listing] = (*CreateListingHandler)(nil)
	_ commands.Handler[UpdateListingCommand, *dto.Listing] = (*UpdateListingHandler)(nil)
	_ commands.Handler[DeleteListingCommand, struct{}]     = (*DeleteListingHandler)(nil)
)

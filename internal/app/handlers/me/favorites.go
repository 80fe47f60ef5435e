package me

import (
	"context"
	"errors"
	"log/slog"

	"rento/internal/app/clock"
	"rento/internal/app/commands"
	"rento/internal/app/dto"
	"rento/internal/app/queries"
	"rento/internal/app/uow"
	domainfavorites "rento/internal/domain/favorites"
	domainlistings "rento/internal/domain/listings"
)

const (
	AddFavoriteKey    = "me.favorites.add"
	RemoveFavoriteKey = "me.favorites.remove"
	ListFavoritesKey  = "me.favorites.list"
)

type AddFavoriteCommand struct {
	UserID    string `validate:"required"`
	ListingID string `validate:"required"`
}

func (c AddFavoriteCommand) Key() string     { return AddFavoriteKey }
func (c AddFavoriteCommand) ActorID() string { return c.UserID }

type AddFavoriteHandler struct {
	UoWFactory uow.UoWFactory
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *AddFavoriteHandler) Handle(ctx context.Context, cmd AddFavoriteCommand) (struct{}, error) {
	fav, err := domainfavorites.New(cmd.UserID, domainlistings.ListingID(cmd.ListingID), h.Clock.Now())
	if err != nil {
		return struct{}{}, err
	}
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return struct{}{}, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	if _, err := scope.Unit.Listings().ByID(ctx, fav.ListingID); err != nil {
		return struct{}{}, err
	}
	if err := scope.Unit.Favorites().Add(ctx, fav); err != nil {
		return struct{}{}, err
	}
	if err := scope.Commit(); err != nil {
		return struct{}{}, err
	}
	logger(h.Logger).Info("favorite added", "user_id", cmd.UserID, "listing_id", cmd.ListingID)
	return struct{}{}, nil
}

type RemoveFavoriteCommand struct {
	UserID    string `validate:"required"`
	ListingID string `validate:"required"`
}

func (c RemoveFavoriteCommand) Key() string     { return RemoveFavoriteKey }
func (c RemoveFavoriteCommand) ActorID() string { return c.UserID }

type RemoveFavoriteHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *RemoveFavoriteHandler) Handle(ctx context.Context, cmd RemoveFavoriteCommand) (struct{}, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return struct{}{}, err
	}
	defer scope.Close()

	if err := scope.Unit.Favorites().Remove(scope.Ctx, cmd.UserID, domainlistings.ListingID(cmd.ListingID)); err != nil {
		return struct{}{}, err
	}
	if err := scope.Commit(); err != nil {
		return struct{}{}, err
	}
	logger(h.Logger).Info("favorite removed", "user_id", cmd.UserID, "listing_id", cmd.ListingID)
	return struct{}{}, nil
}

// ListFavoritesQuery returns favorited listings, most recently favorited first.
type ListFavoritesQuery struct {
	UserID string `validate:"required"`
}

func (q ListFavoritesQuery) Key() string     { return ListFavoritesKey }
func (q ListFavoritesQuery) ActorID() string { return q.UserID }

type ListFavoritesHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListFavoritesHandler) Handle(ctx context.Context, q ListFavoritesQuery) ([]dto.Listing, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	favs, err := scope.Unit.Favorites().ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Listing, 0, len(favs))
	for _, fav := range favs {
		listing, err := scope.Unit.Listings().ByID(ctx, fav.ListingID)
		if errors.Is(err, domainlistings.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		marked := true
		item := dto.MapListing(listing, &marked)
		item.FavoritedAt = fav.CreatedAt
		out = append(out, item)
	}
	return out, nil
}

var (
	_ commands.Handler[AddFavoriteCommand, struct{}]     = (*AddFavoriteHandler)(nil)
	_ commands.Handler[RemoveFavoriteCommand, struct{}]  = (*RemoveFavoriteHandler)(nil)
	_ queries.Handler[ListFavoritesQuery, []dto.Listing] = (*ListFavoritesHandler)(nil)
)

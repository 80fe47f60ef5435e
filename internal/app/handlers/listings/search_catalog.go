package listings

import (
	"context"
	"log/slog"

	"rento/internal/app/dto"
	"rento/internal/app/queries"
	"rento/internal/app/uow"
	domainfavorites "rento/internal/domain/favorites"
	domainlistings "rento/internal/domain/listings"
)

const SearchCatalogKey = "listings.catalog"

// SearchCatalogQuery describes request filters. ViewerID is set for authenticated callers
// and turns on favorite marking.
type SearchCatalogQuery struct {
	ViewerID      string
	City          string
	Region        string
	MinPrice      int64 `validate:"gte=0"`
	MaxPrice      int64 `validate:"gte=0"`
	MinBedrooms   int   `validate:"gte=0"`
	MinBathrooms  int   `validate:"gte=0"`
	OnlyAvailable bool
	Sort          string `validate:"omitempty,oneof=newest price-low price-high rating"`
}

func (q SearchCatalogQuery) Key() string { return SearchCatalogKey }

// SearchCatalogHandler loads listings with applied filters.
type SearchCatalogHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchCatalogHandler) Handle(ctx context.Context, q SearchCatalogQuery) ([]dto.Listing, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	params := domainlistings.SearchParams{
		City:          q.City,
		Region:        q.Region,
		MinPrice:      q.MinPrice,
		MaxPrice:      q.MaxPrice,
		MinBedrooms:   q.MinBedrooms,
		MinBathrooms:  q.MinBathrooms,
		OnlyAvailable: q.OnlyAvailable,
		Sort:          domainlistings.CatalogSort(q.Sort),
	}.Normalized()
	items, err := scope.Unit.Listings().Search(ctx, params)
	if err != nil {
		return nil, err
	}
	favs, err := favoriteSet(ctx, scope.Unit, q.ViewerID)
	if err != nil {
		return nil, err
	}
	return dto.MapListings(items, favs), nil
}

// favoriteSet is nil for anonymous viewers so no favorite flag is rendered.
func favoriteSet(ctx context.Context, unit uow.UnitOfWork, viewerID string) (map[domainlistings.ListingID]struct{}, error) {
	if viewerID == "" {
		return nil, nil
	}
	favs, err := unit.Favorites().ListByUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return domainfavorites.Set(favs), nil
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

var _ queries.Handler[SearchCatalogQuery, []dto.Listing] = (*SearchCatalogHandler)(nil)

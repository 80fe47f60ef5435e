package listings

import (
	"context"

	"rento/internal/app/dto"
	"rento/internal/app/queries"
	"rento/internal/app/uow"
	domainlistings "rento/internal/domain/listings"
)

const ListOwnerListingsKey = "listings.by_owner"

// ListOwnerListingsQuery returns the caller's own listings, newest first.
type ListOwnerListingsQuery struct {
	OwnerID string `validate:"required"`
}

func (q ListOwnerListingsQuery) Key() string     { return ListOwnerListingsKey }
func (q ListOwnerListingsQuery) ActorID() string { return q.OwnerID }

type ListOwnerListingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListOwnerListingsHandler) Handle(ctx context.Context, q ListOwnerListingsQuery) ([]dto.Listing, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	items, err := scope.Unit.Listings().Search(ctx, domainlistings.SearchParams{
		Owner: domainlistings.OwnerID(q.OwnerID),
		Sort:  domainlistings.SortByNewest,
	})
	if err != nil {
		return nil, err
	}
	return dto.MapListings(items, nil), nil
}

var _ queries.Handler[ListOwnerListingsQuery, []dto.Listing] = (*ListOwnerListingsHandler)(nil)

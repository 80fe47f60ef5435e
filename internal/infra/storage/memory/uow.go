package memory

import (
	"context"
	"errors"

	"rento/internal/app/uow"
	domainbooking "rento/internal/domain/booking"
	domainfavorites "rento/internal/domain/favorites"
	domainlistings "rento/internal/domain/listings"
	domainreviews "rento/internal/domain/reviews"
	domainuser "rento/internal/domain/user"
)

// Factory hands out units over a shared Store. Writes apply immediately; Rollback does
// not undo them, so handlers validate before they write.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

type Factory struct {
	Store *Store
}

func NewFactory(store *Store) Factory {
	return Factory{Store: store}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{store: f.Store}, nil
}

type Unit struct {
	store *Store
}

func (u *Unit) Listings() domainlistings.Repository   { return u.store.Listings() }
func (u *Unit) Bookings() domainbooking.Repository    { return u.store.Bookings() }
func (u *Unit) Reviews() domainreviews.Repository     { return u.store.Reviews() }
func (u *Unit) Favorites() domainfavorites.Repository { return u.store.Favorites() }
func (u *Unit) Users() domainuser.Repository          { return u.store.Users() }

func (u *Unit) Commit(ctx context.Context) error   { return nil }
func (u *Unit) Rollback(ctx context.Context) error { return nil }

var _ uow.UoWFactory = Factory{}

// Package uow defines the transaction boundary shared by command and query handlers.
package uow

import (
	"context"

	domainbooking "rento/internal/domain/booking"
	domainfavorites "rento/internal/domain/favorites"
	domainlistings "rento/internal/domain/listings"
	domainreviews "rento/internal/domain/reviews"
	domainuser "rento/internal/domain/user"
)

// UnitOfWork exposes repositories bound to one transaction.
type UnitOfWork interface {
	Listings() domainlistings.Repository
	Bookings() domainbooking.Repository
	Reviews() domainreviews.Repository
	Favorites() domainfavorites.Repository
	Users() domainuser.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

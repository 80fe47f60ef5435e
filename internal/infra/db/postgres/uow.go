package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rento/internal/app/uow"
	domainbooking "rento/internal/domain/booking"
	domainfavorites "rento/internal/domain/favorites"
	domainlistings "rento/internal/domain/listings"
	domainreviews "rento/internal/domain/reviews"
	domainuser "rento/internal/domain/user"
)

var ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory missing pool")

type Factory struct {
	Pool *pgxpool.Pool
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Pool == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	if opts.ReadOnly {
		txOpts.AccessMode = pgx.ReadOnly
	}
	tx, err := f.Pool.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, err
	}
	return &Unit{tx: tx}, nil
}

// Unit binds every repository to one pgx transaction.
type Unit struct {
	tx pgx.Tx
}

func (u *Unit) Listings() domainlistings.Repository   { return &ListingRepository{tx: u.tx} }
func (u *Unit) Bookings() domainbooking.Repository    { return &BookingRepository{tx: u.tx} }
func (u *Unit) Reviews() domainreviews.Repository     { return &ReviewRepository{tx: u.tx} }
func (u *Unit) Favorites() domainfavorites.Repository { return &FavoriteRepository{tx: u.tx} }
func (u *Unit) Users() domainuser.Repository          { return &UserRepository{tx: u.tx} }

func (u *Unit) Commit(ctx context.Context) error {
	return u.tx.Commit(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}

var _ uow.UoWFactory = Factory{}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	domainfavorites "rento/internal/domain/favorites"
	domainlistings "rento/internal/domain/listings"
)

type FavoriteRepository struct {
	tx pgx.Tx
}

func (r *FavoriteRepository) Add(ctx context.Context, fav domainfavorites.Favorite) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO favorites (user_id, listing_id, created_at) VALUES ($1, $2, $3)`,
		fav.UserID, string(fav.ListingID), fav.CreatedAt)
	switch code, _ := pgCode(err); code {
	case codeUniqueViolation:
		return domainfavorites.ErrAlreadyFavorite
	case codeForeignKeyViolation:
		return domainlistings.ErrNotFound
	}
	return err
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID string, listingID domainlistings.ListingID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND listing_id = $2`, userID, string(listingID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainfavorites.ErrNotFound
	}
	return nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]domainfavorites.Favorite, error) {
	rows, err := r.tx.Query(ctx, `SELECT user_id, listing_id, created_at FROM favorites
		WHERE user_id = $1 ORDER BY created_at DESC, listing_id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]domainfavorites.Favorite, 0)
	for rows.Next() {
		var fav domainfavorites.Favorite
		if err := rows.Scan(&fav.UserID, &fav.ListingID, &fav.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, fav)
	}
	return out, rows.Err()
}

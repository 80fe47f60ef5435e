package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	domainlistings "rento/internal/domain/listings"
	domainreviews "rento/internal/domain/reviews"
)

type ReviewRepository struct {
	tx pgx.Tx
}

const reviewColumns = `id, listing_id, user_id, rating, comment, created_at, updated_at`

func scanReview(row pgx.Row) (*domainreviews.Review, error) {
	var rv domainreviews.Review
	if err := row.Scan(&rv.ID, &rv.ListingID, &rv.AuthorID, &rv.Rating, &rv.Comment, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	rv, err := scanReview(r.tx.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, string(id)))
	if isNoRows(err) {
		return nil, domainreviews.ErrNotFound
	}
	return rv, err
}

func (r *ReviewRepository) Insert(ctx context.Context, rv *domainreviews.Review) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO reviews (`+reviewColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(rv.ID), string(rv.ListingID), rv.AuthorID, rv.Rating, rv.Comment, rv.CreatedAt, rv.UpdatedAt)
	switch code, _ := pgCode(err); code {
	case codeUniqueViolation:
		return domainreviews.ErrDuplicate
	case codeForeignKeyViolation:
		return domainlistings.ErrNotFound
	}
	return err
}

func (r *ReviewRepository) Update(ctx context.Context, rv *domainreviews.Review) error {
	tag, err := r.tx.Exec(ctx, `UPDATE reviews SET rating = $2, comment = $3, updated_at = $4 WHERE id = $1`,
		string(rv.ID), rv.Rating, rv.Comment, rv.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainreviews.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ReviewID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainreviews.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) ListByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainreviews.Review, error) {
	return r.list(ctx, `WHERE listing_id = $1`, string(listingID))
}

func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domainreviews.Review, error) {
	return r.list(ctx, `WHERE user_id = $1`, authorID)
}

func (r *ReviewRepository) Stats(ctx context.Context, listingID domainlistings.ListingID) (domainreviews.Stats, error) {
	var (
		total int
		avg   float64
	)
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*), COALESCE(AVG(rating), 0)::float8 FROM reviews WHERE listing_id = $1`,
		string(listingID)).Scan(&total, &avg)
	if err != nil {
		return domainreviews.Stats{}, err
	}
	return domainreviews.Stats{Total: total, Average: domainreviews.RoundAverage(avg)}, nil
}

func (r *ReviewRepository) list(ctx context.Context, where string, arg any) ([]*domainreviews.Review, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+reviewColumns+` FROM reviews `+where+` ORDER BY created_at DESC, id DESC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domainreviews.Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

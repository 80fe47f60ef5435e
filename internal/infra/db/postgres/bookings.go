package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	domainbooking "rento/internal/domain/booking"
	domainlistings "rento/internal/domain/listings"
	"rento/internal/domain/shared/daterange"
	"rento/internal/domain/shared/money"
)

type BookingRepository struct {
	tx pgx.Tx
}

const bookingColumns = `id, listing_id, user_id, start_date, end_date, status, total_price, currency,
	contact_name, contact_email, contact_phone, created_at, updated_at`

func scanBooking(row pgx.Row) (*domainbooking.Booking, error) {
	var (
		b          domainbooking.Booking
		start, end time.Time
		total      int64
		currency   string
	)
	err := row.Scan(&b.ID, &b.ListingID, &b.RequesterID, &start, &end, &b.Status, &total, &currency,
		&b.Contact.Name, &b.Contact.Email, &b.Contact.Phone, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.Range = daterange.DateRange{Start: daterange.DateOf(start), End: daterange.DateOf(end)}
	b.TotalPrice = money.Money{Amount: total, Currency: currency}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]*domainbooking.Booking, error) {
	defer rows.Close()
	out := make([]*domainbooking.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	b, err := scanBooking(r.tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id)))
	if isNoRows(err) {
		return nil, domainbooking.ErrNotFound
	}
	return b, err
}

func (r *BookingRepository) ListActiveByListing(ctx context.Context, listingID domainlistings.ListingID) ([]*domainbooking.Booking, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE listing_id = $1 AND status <> 'cancelled'
		ORDER BY start_date`, string(listingID))
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *BookingRepository) ListByRequester(ctx context.Context, requesterID string, status domainbooking.Status) ([]*domainbooking.Booking, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id DESC`, requesterID, string(status))
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// Insert serializes writers per listing with a transaction-scoped advisory lock and
// re-checks for overlaps before writing. The exclusion constraint backs this up.
func (r *BookingRepository) Insert(ctx context.Context, b *domainbooking.Booking) error {
	if _, err := r.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, string(b.ListingID)); err != nil {
		return err
	}
	var overlap bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM bookings
		WHERE listing_id = $1 AND status <> 'cancelled' AND start_date <= $3 AND end_date >= $2
	)`, string(b.ListingID), b.Range.Start.Time(), b.Range.End.Time()).Scan(&overlap)
	if err != nil {
		return err
	}
	if overlap {
		return domainbooking.ErrOverlap
	}
	_, err = r.tx.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		string(b.ID), string(b.ListingID), b.RequesterID, b.Range.Start.Time(), b.Range.End.Time(), string(b.Status),
		b.TotalPrice.Amount, b.TotalPrice.Currency, b.Contact.Name, b.Contact.Email, b.Contact.Phone,
		b.CreatedAt, b.UpdatedAt)
	switch code, _ := pgCode(err); code {
	case "":
		return err
	case codeExclusionViolation, codeUniqueViolation:
		return domainbooking.ErrOverlap
	case codeForeignKeyViolation:
		return domainlistings.ErrNotFound
	default:
		return err
	}
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, b *domainbooking.Booking) error {
	tag, err := r.tx.Exec(ctx, `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`,
		string(b.ID), string(b.Status), b.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	domainlistings "rento/internal/domain/listings"
	"rento/internal/domain/shared/money"
)

type ListingRepository struct {
	tx pgx.Tx
}

const listingColumns = `id, owner_id, title, description, price, currency, location, region, address,
	bedrooms, bathrooms, area, lat, lng, available, image_url, rating, review_count, created_at, updated_at`

func scanListing(row pgx.Row) (*domainlistings.Listing, error) {
	var (
		l        domainlistings.Listing
		owner    *string
		lat, lng *float64
		price    int64
		currency string
	)
	err := row.Scan(&l.ID, &owner, &l.Title, &l.Description, &price, &currency, &l.Location, &l.Region, &l.Address,
		&l.Bedrooms, &l.Bathrooms, &l.Area, &lat, &lng, &l.Available, &l.ImageURL, &l.Rating, &l.ReviewCount,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		l.Owner = domainlistings.OwnerID(*owner)
	}
	if lat != nil && lng != nil {
		l.Geo = &domainlistings.GeoPoint{Lat: *lat, Lng: *lng}
	}
	l.MonthlyPrice = money.Money{Amount: price, Currency: currency}
	return &l, nil
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlistings.ListingID) (*domainlistings.Listing, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, string(id))
	listing, err := scanListing(row)
	if isNoRows(err) {
		return nil, domainlistings.ErrNotFound
	}
	return listing, err
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlistings.Listing) error {
	var owner *string
	if l.Owner != "" {
		o := string(l.Owner)
		owner = &o
	}
	var lat, lng *float64
	if l.Geo != nil {
		lat, lng = &l.Geo.Lat, &l.Geo.Lng
	}
	_, err := r.tx.Exec(ctx, `
		INSERT INTO listings (`+listingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			currency = EXCLUDED.currency,
			location = EXCLUDED.location,
			region = EXCLUDED.region,
			address = EXCLUDED.address,
			bedrooms = EXCLUDED.bedrooms,
			bathrooms = EXCLUDED.bathrooms,
			area = EXCLUDED.area,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			available = EXCLUDED.available,
			image_url = EXCLUDED.image_url,
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count,
			updated_at = EXCLUDED.updated_at`,
		string(l.ID), owner, l.Title, l.Description, l.MonthlyPrice.Amount, l.MonthlyPrice.Currency,
		l.Location, l.Region, l.Address, l.Bedrooms, l.Bathrooms, l.Area, lat, lng, l.Available,
		l.ImageURL, l.Rating, l.ReviewCount, l.CreatedAt, l.UpdatedAt)
	if code, _ := pgCode(err); code == codeForeignKeyViolation {
		return fmt.Errorf("postgres: listing owner missing: %w", err)
	}
	return err
}

// Delete relies on ON DELETE CASCADE for bookings, reviews and favorites.
func (r *ListingRepository) Delete(ctx context.Context, id domainlistings.ListingID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM listings WHERE id = $1`, string(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainlistings.ErrNotFound
	}
	return nil
}

func (r *ListingRepository) Search(ctx context.Context, params domainlistings.SearchParams) ([]*domainlistings.Listing, error) {
	query, args := buildSearch(params.Normalized())
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domainlistings.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, listing)
	}
	return out, rows.Err()
}

func (r *ListingRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&n)
	return n, err
}

func buildSearch(p domainlistings.SearchParams) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if p.City != "" {
		where = append(where, "LOWER(location) = "+arg(p.City))
	}
	if p.Region != "" {
		where = append(where, "LOWER(region) LIKE "+arg("%"+escapeLike(p.Region)+"%")+` ESCAPE '\'`)
	}
	if p.MinPrice > 0 {
		where = append(where, "price >= "+arg(p.MinPrice))
	}
	if p.MaxPrice > 0 {
		where = append(where, "price <= "+arg(p.MaxPrice))
	}
	if p.MinBedrooms > 0 {
		where = append(where, "bedrooms >= "+arg(p.MinBedrooms))
	}
	if p.MinBathrooms > 0 {
		where = append(where, "bathrooms >= "+arg(p.MinBathrooms))
	}
	if p.OnlyAvailable {
		where = append(where, "available")
	}
	if p.Owner != "" {
		where = append(where, "owner_id = "+arg(string(p.Owner)))
	}
	if len(p.IDs) > 0 {
		ids := make([]string, 0, len(p.IDs))
		for _, id := range p.IDs {
			ids = append(ids, string(id))
		}
		where = append(where, "id = ANY("+arg(ids)+")")
	}

	var b strings.Builder
	b.WriteString("SELECT " + listingColumns + " FROM listings")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	switch p.Sort {
	case domainlistings.SortByPriceAsc:
		b.WriteString(" ORDER BY price ASC, created_at DESC")
	case domainlistings.SortByPriceDesc:
		b.WriteString(" ORDER BY price DESC, created_at DESC")
	case domainlistings.SortByRating:
		b.WriteString(" ORDER BY rating DESC, created_at DESC")
	default:
		b.WriteString(" ORDER BY created_at DESC, id DESC")
	}
	return b.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

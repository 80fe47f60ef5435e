package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rento/internal/app/uow"
	"rento/internal/domain/listings"
)

type listingFixture struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Location    string   `json:"location"`
	Region      string   `json:"region"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Area        int      `json:"area"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Available   *bool    `json:"available"`
	ImageURL    string   `json:"image_url"`
}

// loadListingFixtures seeds the sample apartments when the store holds none.
func loadListingFixtures(ctx context.Context, factory uow.UoWFactory, path string, logger *slog.Logger) error {
	if strings.TrimSpace(path) == "" {
		path = defaultListingFixturesPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		return nil
	}

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	count, err := unit.Listings().Count(ctx)
	if err != nil {
		return fmt.Errorf("count listings: %w", err)
	}
	if count > 0 {
		logger.Info("listing store already populated, skipping fixtures", "listings", count)
		return nil
	}

	now := time.Now()
	imported := 0
	for _, fx := range fixtures {
		listing, err := fx.toListing(now)
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if err := unit.Listings().Save(ctx, listing); err != nil {
			return fmt.Errorf("store fixture %s: %w", fx.ID, err)
		}
		imported++
	}
	if err := unit.Commit(ctx); err != nil {
		return err
	}
	committed = true
	logger.Info("listing fixtures imported", "count", imported, "path", path)
	return nil
}

func (fx listingFixture) toListing(now time.Time) (*listings.Listing, error) {
	available := true
	if fx.Available != nil {
		available = *fx.Available
	}
	var geo *listings.GeoPoint
	if fx.Lat != nil && fx.Lng != nil {
		geo = &listings.GeoPoint{Lat: *fx.Lat, Lng: *fx.Lng}
	}
	return listings.NewListing(listings.CreateParams{
		ID:           listings.ListingID(fx.ID),
		Title:        fx.Title,
		Description:  fx.Description,
		Location:     fx.Location,
		Region:       fx.Region,
		Bedrooms:     fx.Bedrooms,
		Bathrooms:    fx.Bathrooms,
		Area:         fx.Area,
		Geo:          geo,
		MonthlyPrice: fx.Price,
		Available:    available,
		ImageURL:     fx.ImageURL,
		Now:          now,
	})
}

func defaultListingFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "listings.json"),
		filepath.Join("..", "..", "data", "listings.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"rento/internal/domain/listings"
	"rento/internal/infra/storage/memory"
)

func TestLoadListingFixturesSeedsOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	factory := memory.NewFactory(store)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join("..", "..", "data", "listings.json")

	if err := loadListingFixtures(ctx, factory, path, logger); err != nil {
		t.Fatalf("load: %v", err)
	}
	count, err := store.Listings().Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 6 {
		t.Fatalf("expected 6 seeded apartments, got %d", count)
	}
	first, err := store.Listings().ByID(ctx, listings.ListingID("1"))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if first.Available || first.Geo == nil {
		t.Fatalf("fixture fields not carried over: %+v", first)
	}

	if err := loadListingFixtures(ctx, factory, path, logger); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if count, _ := store.Listings().Count(ctx); count != 6 {
		t.Fatalf("fixtures must not be loaded twice, got %d", count)
	}
}

func TestLoadListingFixturesMissingFile(t *testing.T) {
	factory := memory.NewFactory(memory.NewStore())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := loadListingFixtures(context.Background(), factory, filepath.Join(t.TempDir(), "none.json"), logger); err != nil {
		t.Fatalf("missing file should be skipped: %v", err)
	}
}

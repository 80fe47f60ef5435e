package postgres

import (
	"strings"
	"testing"

	domainlistings "rento/internal/domain/listings"
)

func TestBuildSearchFilters(t *testing.T) {
	query, args := buildSearch(domainlistings.SearchParams{
		City:          "Cairo",
		Region:        "new_",
		MinPrice:      1000,
		MinBedrooms:   2,
		OnlyAvailable: true,
		Sort:          domainlistings.SortByPriceAsc,
	}.Normalized())

	for _, fragment := range []string{
		"LOWER(location) = $1",
		"LOWER(region) LIKE $2",
		"price >= $3",
		"bedrooms >= $4",
		" AND available",
		"ORDER BY price ASC",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("query missing %q:\n%s", fragment, query)
		}
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
	if args[0] != "cairo" || args[1] != `%new\_%` {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestBuildSearchDefaults(t *testing.T) {
	query, args := buildSearch(domainlistings.SearchParams{}.Normalized())
	if strings.Contains(query, "WHERE") || len(args) != 0 {
		t.Fatalf("expected unfiltered query, got %s %v", query, args)
	}
	if !strings.HasSuffix(query, "ORDER BY created_at DESC, id DESC") {
		t.Fatalf("expected newest ordering, got %s", query)
	}
}

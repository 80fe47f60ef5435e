package listings

import (
	"errors"
	"sort"
	"testing"
	"time"
)

func sample(t *testing.T, id ListingID, price int64, created time.Time) *Listing {
	t.Helper()
	l, err := NewListing(CreateParams{
		ID:           id,
		Title:        "Flat " + string(id),
		Location:     "Cairo",
		Region:       "New Cairo",
		MonthlyPrice: price,
		Available:    true,
		Now:          created,
	})
	if err != nil {
		t.Fatalf("new listing: %v", err)
	}
	return l
}

func TestNewListingDefaultsAndValidation(t *testing.T) {
	l := sample(t, "a", 1000, time.Now())
	if l.Bedrooms != 1 || l.Bathrooms != 1 {
		t.Fatalf("expected room defaults, got %d/%d", l.Bedrooms, l.Bathrooms)
	}
	if l.MonthlyPrice.Currency == "" {
		t.Fatalf("currency not defaulted")
	}
	cases := []struct {
		name   string
		params CreateParams
		want   error
	}{
		{"missing title", CreateParams{ID: "x", Location: "c", Region: "r", MonthlyPrice: 1}, ErrRequiredFields},
		{"zero price", CreateParams{ID: "x", Title: "t", Location: "c", Region: "r"}, ErrInvalidPrice},
		{"bad geo", CreateParams{ID: "x", Title: "t", Location: "c", Region: "r", MonthlyPrice: 1, Geo: &GeoPoint{Lat: 91}}, ErrInvalidGeo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewListing(tc.params); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestUpdateKeepsUnsetFields(t *testing.T) {
	l := sample(t, "a", 1000, time.Now())
	price := int64(2500)
	available := false
	if err := l.Update(UpdateParams{MonthlyPrice: &price, Available: &available}, time.Now()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if l.MonthlyPrice.Amount != 2500 || l.Available || l.Title != "Flat a" {
		t.Fatalf("unexpected listing %+v", l)
	}
	empty := ""
	if err := l.Update(UpdateParams{Title: &empty}, time.Now()); !errors.Is(err, ErrRequiredFields) {
		t.Fatalf("expected ErrRequiredFields, got %v", err)
	}
	if l.Title != "Flat a" {
		t.Fatalf("failed update mutated title")
	}
}

func TestSearchParams(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := sample(t, "a", 3000, base)
	b := sample(t, "b", 1000, base.Add(time.Hour))
	c := sample(t, "c", 2000, base.Add(2*time.Hour))
	c.Location = "Giza"
	c.Rating = 4.5
	b.Available = false

	params := SearchParams{City: " CAIRO ", OnlyAvailable: true}.Normalized()
	if !params.Matches(a) || params.Matches(b) || params.Matches(c) {
		t.Fatalf("unexpected filter result")
	}
	if (SearchParams{Region: "new"}).Normalized().Matches(a) != true {
		t.Fatalf("region should match by substring")
	}

	cases := []struct {
		sort CatalogSort
		want []ListingID
	}{
		{"", []ListingID{"c", "b", "a"}},
		{SortByPriceAsc, []ListingID{"b", "c", "a"}},
		{SortByPriceDesc, []ListingID{"a", "c", "b"}},
		{SortByRating, []ListingID{"c", "b", "a"}},
	}
	for _, tc := range cases {
		items := []*Listing{a, b, c}
		p := SearchParams{Sort: tc.sort}.Normalized()
		sort.SliceStable(items, func(i, j int) bool { return p.Less(items[i], items[j]) })
		for i, id := range tc.want {
			if items[i].ID != id {
				t.Fatalf("sort %q: position %d expected %s, got %s", tc.sort, i, id, items[i].ID)
			}
		}
	}
}

func TestEnsureOwner(t *testing.T) {
	owned := sample(t, "apt-1", 9000, time.Now())
	owned.Owner = "host"
	if err := owned.EnsureOwner("host"); err != nil {
		t.Fatalf("owner rejected: %v", err)
	}
	if err := owned.EnsureOwner("guest"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
	owned.Owner = ""
	if err := owned.EnsureOwner(""); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("unowned listing must reject everyone, got %v", err)
	}
}

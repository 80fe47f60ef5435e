package listings

import "strings"

// CatalogSort defines a supported ordering.
type CatalogSort string

const (
	SortByNewest    CatalogSort = "newest"
	SortByPriceAsc  CatalogSort = "price-low"
	SortByPriceDesc CatalogSort = "price-high"
	SortByRating    CatalogSort = "rating"
)

// SearchParams describe catalog filters. Zero values disable a filter.
type SearchParams struct {
	City          string
	Region        string
	MinPrice      int64
	MaxPrice      int64
	MinBedrooms   int
	MinBathrooms  int
	OnlyAvailable bool
	Owner         OwnerID
	IDs           []ListingID
	Sort          CatalogSort
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.City = strings.TrimSpace(strings.ToLower(normalized.City))
	normalized.Region = strings.TrimSpace(strings.ToLower(normalized.Region))
	if normalized.MinPrice < 0 {
		normalized.MinPrice = 0
	}
	if normalized.MaxPrice < 0 {
		normalized.MaxPrice = 0
	}
	if normalized.MinBedrooms < 0 {
		normalized.MinBedrooms = 0
	}
	if normalized.MinBathrooms < 0 {
		normalized.MinBathrooms = 0
	}
	switch normalized.Sort {
	case SortByNewest, SortByPriceAsc, SortByPriceDesc, SortByRating:
	default:
		normalized.Sort = SortByNewest
	}
	return normalized
}

// Matches applies the filters to a single listing. Stores that cannot push filters down
// to a query language use it directly.
func (p SearchParams) Matches(l *Listing) bool {
	if l == nil {
		return false
	}
	if p.City != "" && strings.ToLower(l.Location) != p.City {
		return false
	}
	if p.Region != "" && !strings.Contains(strings.ToLower(l.Region), p.Region) {
		return false
	}
	if p.MinPrice > 0 && l.MonthlyPrice.Amount < p.MinPrice {
		return false
	}
	if p.MaxPrice > 0 && l.MonthlyPrice.Amount > p.MaxPrice {
		return false
	}
	if p.MinBedrooms > 0 && l.Bedrooms < p.MinBedrooms {
		return false
	}
	if p.MinBathrooms > 0 && l.Bathrooms < p.MinBathrooms {
		return false
	}
	if p.OnlyAvailable && !l.Available {
		return false
	}
	if p.Owner != "" && l.Owner != p.Owner {
		return false
	}
	if len(p.IDs) > 0 {
		found := false
		for _, id := range p.IDs {
			if id == l.ID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Less orders two listings according to the sort key.
func (p SearchParams) Less(a, b *Listing) bool {
	switch p.Sort {
	case SortByPriceAsc:
		if a.MonthlyPrice.Amount == b.MonthlyPrice.Amount {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.MonthlyPrice.Amount < b.MonthlyPrice.Amount
	case SortByPriceDesc:
		if a.MonthlyPrice.Amount == b.MonthlyPrice.Amount {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.MonthlyPrice.Amount > b.MonthlyPrice.Amount
	case SortByRating:
		if a.Rating == b.Rating {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Rating > b.Rating
	default:
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID > b.ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	}
}

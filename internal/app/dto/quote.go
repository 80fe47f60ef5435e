package dto

import (
	"rento/internal/domain/availability"
	domainlistings "rento/internal/domain/listings"
	"rento/internal/domain/shared/daterange"
)

type Quote struct {
	ApartmentID  string         `json:"apartment_id"`
	StartDate    daterange.Date `json:"start_date"`
	EndDate      daterange.Date `json:"end_date"`
	Days         int            `json:"days"`
	BilledMonths int            `json:"billed_months"`
	MonthlyPrice int64          `json:"monthly_price"`
	TotalPrice   int64          `json:"total_price"`
	Currency     string         `json:"currency"`
}

func MapQuote(id domainlistings.ListingID, start, end daterange.Date, q availability.Quote) Quote {
	return Quote{
		ApartmentID:  string(id),
		StartDate:    start,
		EndDate:      end,
		Days:         q.Days,
		BilledMonths: q.BilledMonths,
		MonthlyPrice: q.MonthlyPrice.Amount,
		TotalPrice:   q.Total.Amount,
		Currency:     q.Total.Currency,
	}
}

// BookedRange is a reserved span shown on the listing calendar.
type BookedRange struct {
	StartDate daterange.Date `json:"start_date"`
	EndDate   daterange.Date `json:"end_date"`
	Status    string         `json:"status"`
}

package dto

import (
	"time"

	domainbooking "rento/internal/domain/booking"
	domainlistings "rento/internal/domain/listings"
	"rento/internal/domain/shared/daterange"
)

type Booking struct {
	ID             string         `json:"id"`
	ApartmentID    string         `json:"apartment_id"`
	UserID         string         `json:"user_id"`
	StartDate      daterange.Date `json:"start_date"`
	EndDate        daterange.Date `json:"end_date"`
	Status         string         `json:"status"`
	TotalPrice     int64          `json:"total_price"`
	Currency       string         `json:"currency"`
	Days           int            `json:"days"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	ApartmentTitle string         `json:"apartment_title,omitempty"`
	Location       string         `json:"location,omitempty"`
	Region         string         `json:"region,omitempty"`
	ImageURL       string         `json:"image_url,omitempty"`
	Price          int64          `json:"price,omitempty"`
	Description    string         `json:"description,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// BookingView selects which listing fields are copied into a booking response.
type BookingView int

const (
	BookingSummaryView BookingView = iota
	BookingDetailView
)

func MapBooking(b *domainbooking.Booking, listing *domainlistings.Listing, view BookingView) Booking {
	out := Booking{
		ID:          string(b.ID),
		ApartmentID: string(b.ListingID),
		UserID:      b.RequesterID,
		StartDate:   b.Range.Start,
		EndDate:     b.Range.End,
		Status:      string(b.Status),
		TotalPrice:  b.TotalPrice.Amount,
		Currency:    b.TotalPrice.Currency,
		Days:        b.Range.Days(),
		Name:        b.Contact.Name,
		Email:       b.Contact.Email,
		Phone:       b.Contact.Phone,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if listing == nil {
		return out
	}
	out.ApartmentTitle = listing.Title
	out.Location = listing.Location
	out.Region = listing.Region
	out.ImageURL = listing.ImageURL
	if view == BookingDetailView {
		out.Price = listing.MonthlyPrice.Amount
		out.Description = listing.Description
	}
	return out
}

package booking

import (
	"context"
	"strings"
	"time"

	"rento/internal/domain/listings"
	"rento/internal/domain/policy"
	"rento/internal/domain/shared/daterange"
	"rento/internal/domain/shared/events"
	"rento/internal/domain/shared/fault"
	"rento/internal/domain/shared/money"
)

var (
	ErrNotFound         = fault.New(fault.NotFound, "Booking not found")
	ErrAlreadyCancelled = fault.New(fault.Validation, "Booking is already cancelled")
	ErrAlreadyStarted   = fault.New(fault.Validation, "Cannot cancel a booking that has already started")
	ErrForbidden        = fault.New(fault.Forbidden, "Only the apartment owner can confirm bookings")
	ErrInvalidState     = fault.New(fault.Validation, "Can only confirm pending bookings")
	ErrInvalidStatus    = fault.New(fault.Validation, "Invalid booking status")
	ErrRequesterMissing = fault.New(fault.Validation, "Requester is required")
	ErrContactRequired  = fault.New(fault.Validation, "All fields are required")
	// ErrOverlap is returned by stores when a concurrent insert claimed the same dates.
	ErrOverlap = fault.New(fault.Conflict, "This apartment is already booked for the selected dates")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusCancelled: true},
	StatusCancelled: {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	return transitions[s][next]
}

// ParseStatus accepts an empty value as "no filter".
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if status == "" {
		return "", nil
	}
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

type Contact struct {
	Name  string
	Email string
	Phone string
}

type Booking struct {
	ID          BookingID
	ListingID   listings.ListingID
	RequesterID string
	Range       daterange.DateRange
	Status      Status
	TotalPrice  money.Money
	Contact     Contact
	CreatedAt   time.Time
	UpdatedAt   time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	// ListActiveByListing returns the listing's bookings that are not cancelled.
	ListActiveByListing(ctx context.Context, listingID listings.ListingID) ([]*Booking, error)
	// ListByRequester returns newest first; an empty status means all statuses.
	ListByRequester(ctx context.Context, requesterID string, status Status) ([]*Booking, error)
	// Insert fails with ErrOverlap when a non-cancelled booking for the same listing
	// overlaps the new one.
	Insert(ctx context.Context, booking *Booking) error
	UpdateStatus(ctx context.Context, booking *Booking) error
}

type CreateParams struct {
	ID          BookingID
	ListingID   listings.ListingID
	RequesterID string
	Range       daterange.DateRange
	Total       money.Money
	Contact     Contact
	CreatedAt   time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(params.RequesterID) == "" {
		return nil, ErrRequesterMissing
	}
	if err := params.Range.Validate(); err != nil {
		return nil, fault.Wrap(fault.Validation, err, "End date must be after start date")
	}
	contact := Contact{
		Name:  strings.TrimSpace(params.Contact.Name),
		Email: strings.TrimSpace(params.Contact.Email),
		Phone: strings.TrimSpace(params.Contact.Phone),
	}
	if contact.Name == "" || contact.Email == "" || contact.Phone == "" {
		return nil, ErrContactRequired
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:          params.ID,
		ListingID:   params.ListingID,
		RequesterID: params.RequesterID,
		Range:       params.Range,
		Status:      StatusPending,
		TotalPrice:  params.Total,
		Contact:     contact,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Record(BookingRequested{
		BookingID:   b.ID,
		ListingID:   b.ListingID,
		RequesterID: b.RequesterID,
		Range:       b.Range,
		Total:       b.TotalPrice,
		At:          now,
	})
	return b, nil
}

// Cancel moves the booking to cancelled on behalf of its requester. Bookings of other
// users are reported as missing.
func (b *Booking) Cancel(requesterID string, today daterange.Date, now time.Time) error {
	if !policy.Owns(requesterID, b.RequesterID) {
		return ErrNotFound
	}
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if !b.Range.Start.After(today) {
		return ErrAlreadyStarted
	}
	if err := b.transition(StatusCancelled, now); err != nil {
		return err
	}
	b.Record(BookingCancelled{BookingID: b.ID, ListingID: b.ListingID, CancelledBy: requesterID, At: b.UpdatedAt})
	return nil
}

// Confirm moves a pending booking to confirmed. Only the listing owner may confirm.
func (b *Booking) Confirm(callerID string, listingOwner listings.OwnerID, now time.Time) error {
	if !policy.Owns(callerID, string(listingOwner)) {
		return ErrForbidden
	}
	if b.Status != StatusPending {
		return ErrInvalidState
	}
	if err := b.transition(StatusConfirmed, now); err != nil {
		return err
	}
	b.Record(BookingConfirmed{BookingID: b.ID, ListingID: b.ListingID, ConfirmedBy: callerID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) transition(next Status, now time.Time) error {
	if !b.Status.CanTransitionTo(next) {
		return ErrInvalidState
	}
	b.Status = next
	b.UpdatedAt = now.UTC()
	return nil
}

// Span and Blocking let bookings feed the availability engine.
func (b *Booking) Span() daterange.DateRange { return b.Range }

func (b *Booking) Blocking() bool { return b.Status != StatusCancelled }

// BlocksRemoval reports whether any booking still holds the listing: not cancelled and
// not yet ended on today.
func BlocksRemoval(bookings []*Booking, today daterange.Date) bool {
	for _, b := range bookings {
		if b.Blocking() && !b.Range.End.Before(today) {
			return true
		}
	}
	return false
}

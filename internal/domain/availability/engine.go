// Package availability decides whether a listing can be booked for a date range and
// what the stay costs.
package availability

import (
	"rento/internal/domain/listings"
	"rento/internal/domain/shared/daterange"
	"rento/internal/domain/shared/fault"
	"rento/internal/domain/shared/money"
)

// DaysPerBilledMonth is the length of one pricing unit. Partial units round up.
const DaysPerBilledMonth = 30

// Reason identifies why a candidate range was rejected.
type Reason string

const (
	ListingUnavailable Reason = "listing_unavailable"
	StartInPast        Reason = "start_in_past"
	EndBeforeStart     Reason = "end_before_start"
	DateRangeConflict  Reason = "date_range_conflict"
)

func (r Reason) Message() string {
	switch r {
	case ListingUnavailable:
		return "Apartment is not available"
	case StartInPast:
		return "Start date cannot be in the past"
	case EndBeforeStart:
		return "End date must be after start date"
	case DateRangeConflict:
		return "This apartment is already booked for the selected dates"
	default:
		return "Booking request rejected"
	}
}

// Rejection is returned when a candidate range cannot be booked.
type Rejection struct {
	Reason Reason
}

func Reject(reason Reason) *Rejection {
	return &Rejection{Reason: reason}
}

func (r *Rejection) Error() string { return r.Reason.Message() }

func (r *Rejection) FaultKind() fault.Kind {
	if r.Reason == DateRangeConflict {
		return fault.Conflict
	}
	return fault.Validation
}

// Reservation is an existing claim on a listing's calendar.
type Reservation interface {
	Span() daterange.DateRange
	// Blocking is false for reservations that no longer hold their dates.
	Blocking() bool
}

type Quote struct {
	Days         int
	BilledMonths int
	MonthlyPrice money.Money
	Total        money.Money
}

// Evaluate checks the candidate range against the listing and its reservations and
// prices it. The first failing check wins.
func Evaluate[R Reservation](listing *listings.Listing, start, end daterange.Date, existing []R, today daterange.Date) (Quote, error) {
	if !listing.Bookable() {
		return Quote{}, Reject(ListingUnavailable)
	}
	if start.Before(today) {
		return Quote{}, Reject(StartInPast)
	}
	if !end.After(start) {
		return Quote{}, Reject(EndBeforeStart)
	}
	candidate := daterange.DateRange{Start: start, End: end}
	if Conflicts(candidate, existing) {
		return Quote{}, Reject(DateRangeConflict)
	}
	return Price(listing.MonthlyPrice, candidate)
}

// Conflicts reports whether any blocking reservation overlaps candidate, shared boundary
// dates included.
func Conflicts[R Reservation](candidate daterange.DateRange, existing []R) bool {
	for _, r := range existing {
		if !r.Blocking() {
			continue
		}
		if r.Span().Overlaps(candidate) {
			return true
		}
	}
	return false
}

// BilledMonths returns ceil(days / 30).
func BilledMonths(days int) int {
	if days <= 0 {
		return 0
	}
	return (days + DaysPerBilledMonth - 1) / DaysPerBilledMonth
}

// Price quotes a stay over r at the given monthly rate.
func Price(monthly money.Money, r daterange.DateRange) (Quote, error) {
	days := r.Days()
	months := BilledMonths(days)
	total, err := monthly.Times(int64(months))
	if err != nil {
		return Quote{}, err
	}
	return Quote{Days: days, BilledMonths: months, MonthlyPrice: monthly, Total: total}, nil
}

package availability

import (
	"errors"
	"testing"
	"time"

	"rento/internal/domain/listings"
	"rento/internal/domain/shared/daterange"
	"rento/internal/domain/shared/fault"
	"rento/internal/domain/shared/money"
)

type stubReservation struct {
	r         daterange.DateRange
	cancelled bool
}

func (s stubReservation) Span() daterange.DateRange { return s.r }
func (s stubReservation) Blocking() bool            { return !s.cancelled }

func reserved(start, end string, cancelled bool) stubReservation {
	return stubReservation{r: daterange.DateRange{Start: daterange.MustParse(start), End: daterange.MustParse(end)}, cancelled: cancelled}
}

func newListing(t *testing.T, price int64, available bool) *listings.Listing {
	t.Helper()
	l, err := listings.NewListing(listings.CreateParams{
		ID:           "apt-1",
		Title:        "Loft",
		Location:     "Cairo",
		Region:       "Zamalek",
		MonthlyPrice: price,
		Available:    available,
		Now:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("new listing: %v", err)
	}
	return l
}

func rejectionReason(t *testing.T, err error) Reason {
	t.Helper()
	var rejection *Rejection
	if !errors.As(err, &rejection) {
		t.Fatalf("expected rejection, got %v", err)
	}
	return rejection.Reason
}

func TestEvaluatePricing(t *testing.T) {
	today := daterange.MustParse("2025-03-01")
	listing := newListing(t, 10000, true)
	cases := []struct {
		name   string
		start  string
		end    string
		months int
		total  int64
	}{
		{"one day", "2025-03-01", "2025-03-02", 1, 10000},
		{"ten days", "2025-03-05", "2025-03-15", 1, 10000},
		{"thirty days", "2025-03-01", "2025-03-31", 1, 10000},
		{"thirty one days", "2025-03-01", "2025-04-01", 2, 20000},
		{"forty days", "2025-03-01", "2025-04-10", 2, 20000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := Evaluate(listing, daterange.MustParse(tc.start), daterange.MustParse(tc.end), []stubReservation(nil), today)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if quote.BilledMonths != tc.months {
				t.Fatalf("expected %d months, got %d", tc.months, quote.BilledMonths)
			}
			if quote.Total.Amount != tc.total {
				t.Fatalf("expected total %d, got %d", tc.total, quote.Total.Amount)
			}
		})
	}
}

func TestEvaluateRejections(t *testing.T) {
	today := daterange.MustParse("2025-03-10")
	existing := []stubReservation{
		reserved("2025-03-20", "2025-03-25", false),
		reserved("2025-04-01", "2025-04-05", true),
	}
	cases := []struct {
		name      string
		available bool
		start     string
		end       string
		want      Reason
	}{
		{"unavailable listing", false, "2025-03-11", "2025-03-12", ListingUnavailable},
		{"start yesterday", true, "2025-03-09", "2025-03-12", StartInPast},
		{"end equals start", true, "2025-03-12", "2025-03-12", EndBeforeStart},
		{"end before start", true, "2025-03-12", "2025-03-11", EndBeforeStart},
		{"overlap", true, "2025-03-22", "2025-03-28", DateRangeConflict},
		{"end on existing start", true, "2025-03-15", "2025-03-20", DateRangeConflict},
		{"start on existing end", true, "2025-03-25", "2025-03-30", DateRangeConflict},
		{"past wins over order", true, "2025-03-09", "2025-03-01", StartInPast},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			listing := newListing(t, 5000, tc.available)
			_, err := Evaluate(listing, daterange.MustParse(tc.start), daterange.MustParse(tc.end), existing, today)
			if got := rejectionReason(t, err); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestEvaluateIgnoresCancelledAndAdjacentFreeDays(t *testing.T) {
	today := daterange.MustParse("2025-03-10")
	listing := newListing(t, 5000, true)
	existing := []stubReservation{
		reserved("2025-03-20", "2025-03-25", false),
		reserved("2025-04-01", "2025-04-05", true),
	}
	for _, r := range [][2]string{{"2025-03-10", "2025-03-19"}, {"2025-03-26", "2025-03-30"}, {"2025-04-01", "2025-04-05"}} {
		if _, err := Evaluate(listing, daterange.MustParse(r[0]), daterange.MustParse(r[1]), existing, today); err != nil {
			t.Fatalf("range %v: unexpected error %v", r, err)
		}
	}
}

func TestEvaluateNilListing(t *testing.T) {
	today := daterange.MustParse("2025-03-10")
	_, err := Evaluate[stubReservation](nil, today, today.AddDays(1), nil, today)
	if got := rejectionReason(t, err); got != ListingUnavailable {
		t.Fatalf("expected %s, got %s", ListingUnavailable, got)
	}
}

func TestRejectionClassification(t *testing.T) {
	if kind := fault.KindOf(Reject(DateRangeConflict)); kind != fault.Conflict {
		t.Fatalf("expected conflict, got %s", kind)
	}
	if kind := fault.KindOf(Reject(StartInPast)); kind != fault.Validation {
		t.Fatalf("expected validation, got %s", kind)
	}
	if msg := fault.Message(Reject(EndBeforeStart)); msg != "End date must be after start date" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestPriceLongStayIsNotCapped(t *testing.T) {
	r := daterange.DateRange{Start: daterange.MustParse("1700-01-01"), End: daterange.MustParse("2100-01-01")}
	quote, err := Price(money.Must(10000, "EGP"), r)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	if quote.Days != 146097 || quote.BilledMonths != 4870 || quote.Total.Amount != 48700000 {
		t.Fatalf("unexpected quote %+v", quote)
	}
}

func TestBilledMonths(t *testing.T) {
	for days, want := range map[int]int{0: 0, 1: 1, 29: 1, 30: 1, 31: 2, 60: 2, 61: 3} {
		if got := BilledMonths(days); got != want {
			t.Fatalf("days %d: expected %d, got %d", days, want, got)
		}
	}
}

package booking

import (
	"errors"
	"testing"
	"time"

	"rento/internal/domain/shared/daterange"
	"rento/internal/domain/shared/money"
)

var now = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func newPending(t *testing.T, start, end string) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:          "b-1",
		ListingID:   "apt-1",
		RequesterID: "guest",
		Range:       daterange.DateRange{Start: daterange.MustParse(start), End: daterange.MustParse(end)},
		Total:       money.Must(10000, ""),
		Contact:     Contact{Name: "Mona", Email: "mona@example.com", Phone: "+20100"},
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("new booking: %v", err)
	}
	b.ClearEvents()
	return b
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusPending, StatusPending, false},
		{Status("archived"), StatusCancelled, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus(" Confirmed "); err != nil || s != StatusConfirmed {
		t.Fatalf("unexpected result %q %v", s, err)
	}
	if s, err := ParseStatus(""); err != nil || s != "" {
		t.Fatalf("empty filter should pass, got %q %v", s, err)
	}
	if _, err := ParseStatus("archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestNewBookingRecordsRequest(t *testing.T) {
	b, err := NewBooking(CreateParams{
		ID:          "b-2",
		ListingID:   "apt-1",
		RequesterID: "guest",
		Range:       daterange.DateRange{Start: daterange.MustParse("2025-03-12"), End: daterange.MustParse("2025-03-20")},
		Total:       money.Must(5000, ""),
		Contact:     Contact{Name: "A", Email: "a@b.c", Phone: "1"},
		CreatedAt:   now,
	})
	if err != nil {
		t.Fatalf("new booking: %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	pending := b.PendingEvents()
	if len(pending) != 1 || pending[0].EventName() != "booking.requested" {
		t.Fatalf("unexpected events %+v", pending)
	}
}

func TestNewBookingRequiresContact(t *testing.T) {
	_, err := NewBooking(CreateParams{
		RequesterID: "guest",
		Range:       daterange.DateRange{Start: daterange.MustParse("2025-03-12"), End: daterange.MustParse("2025-03-20")},
		Contact:     Contact{Name: "A"},
		CreatedAt:   now,
	})
	if !errors.Is(err, ErrContactRequired) {
		t.Fatalf("expected ErrContactRequired, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	today := daterange.DateOf(now)
	t.Run("future booking", func(t *testing.T) {
		b := newPending(t, "2025-03-11", "2025-03-20")
		if err := b.Cancel("guest", today, now); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if b.Status != StatusCancelled || b.Blocking() {
			t.Fatalf("expected cancelled non-blocking booking, got %s", b.Status)
		}
		if events := b.PendingEvents(); len(events) != 1 || events[0].EventName() != "booking.cancelled" {
			t.Fatalf("unexpected events %+v", events)
		}
		if err := b.Cancel("guest", today, now); !errors.Is(err, ErrAlreadyCancelled) {
			t.Fatalf("expected ErrAlreadyCancelled, got %v", err)
		}
	})
	t.Run("starts today", func(t *testing.T) {
		b := newPending(t, "2025-03-10", "2025-03-20")
		if err := b.Cancel("guest", today, now); !errors.Is(err, ErrAlreadyStarted) {
			t.Fatalf("expected ErrAlreadyStarted, got %v", err)
		}
	})
	t.Run("confirmed booking", func(t *testing.T) {
		b := newPending(t, "2025-03-15", "2025-03-20")
		b.Status = StatusConfirmed
		if err := b.Cancel("guest", today, now); err != nil {
			t.Fatalf("cancel confirmed: %v", err)
		}
	})
	t.Run("someone else's booking", func(t *testing.T) {
		b := newPending(t, "2025-03-15", "2025-03-20")
		if err := b.Cancel("intruder", today, now); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestConfirm(t *testing.T) {
	t.Run("owner confirms once", func(t *testing.T) {
		b := newPending(t, "2025-03-15", "2025-03-20")
		if err := b.Confirm("host", "host", now); err != nil {
			t.Fatalf("confirm: %v", err)
		}
		if b.Status != StatusConfirmed {
			t.Fatalf("expected confirmed, got %s", b.Status)
		}
		if err := b.Confirm("host", "host", now); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})
	t.Run("non owner", func(t *testing.T) {
		b := newPending(t, "2025-03-15", "2025-03-20")
		if err := b.Confirm("guest", "host", now); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
	t.Run("unowned listing", func(t *testing.T) {
		b := newPending(t, "2025-03-15", "2025-03-20")
		if err := b.Confirm("guest", "", now); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})
	t.Run("cancelled booking", func(t *testing.T) {
		b := newPending(t, "2025-03-15", "2025-03-20")
		b.Status = StatusCancelled
		if err := b.Confirm("host", "host", now); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestBlocksRemoval(t *testing.T) {
	today := daterange.MustParse("2025-03-10")
	past := newPending(t, "2025-03-01", "2025-03-05")
	endsToday := newPending(t, "2025-03-08", "2025-03-10")
	cancelled := newPending(t, "2025-04-01", "2025-04-05")
	cancelled.Status = StatusCancelled

	cases := []struct {
		name     string
		bookings []*Booking
		want     bool
	}{
		{"none", nil, false},
		{"finished", []*Booking{past}, false},
		{"cancelled", []*Booking{cancelled}, false},
		{"ends today", []*Booking{past, endsToday}, true},
	}
	for _, tc := range cases {
		if got := BlocksRemoval(tc.bookings, today); got != tc.want {
			t.Fatalf("%s: BlocksRemoval = %v, want %v", tc.name, got, tc.want)
		}
	}
}

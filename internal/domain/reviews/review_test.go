package reviews

import (
	"errors"
	"testing"
	"time"
)

func TestSubmitValidatesRating(t *testing.T) {
	for _, rating := range []int{-1, 6} {
		_, err := Submit(SubmitParams{ID: "r1", ListingID: "apt", AuthorID: "u1", Rating: rating, CreatedAt: time.Now()})
		if !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
	if _, err := Submit(SubmitParams{ID: "r1", AuthorID: "u1", Rating: 3}); !errors.Is(err, ErrFieldsMissing) {
		t.Fatalf("expected ErrFieldsMissing, got %v", err)
	}
}

func TestEditRequiresAuthor(t *testing.T) {
	review, err := Submit(SubmitParams{ID: "r1", ListingID: "apt", AuthorID: "u1", Rating: 4, Comment: " nice ", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if review.Comment != "nice" {
		t.Fatalf("comment not trimmed: %q", review.Comment)
	}
	rating := 2
	if err := review.Edit("u2", &rating, nil, time.Now()); !errors.Is(err, ErrNotAuthor) {
		t.Fatalf("expected ErrNotAuthor, got %v", err)
	}
	if err := review.Edit("u1", &rating, nil, time.Now()); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if review.Rating != 2 || review.Comment != "nice" {
		t.Fatalf("unexpected review %+v", review)
	}
}

func TestSummarize(t *testing.T) {
	cases := []struct {
		ratings []int
		want    Stats
	}{
		{nil, Stats{}},
		{[]int{5}, Stats{Total: 1, Average: 5}},
		{[]int{5, 4, 4}, Stats{Total: 3, Average: 4.3}},
		{[]int{1, 2}, Stats{Total: 2, Average: 1.5}},
	}
	for _, tc := range cases {
		if got := Summarize(tc.ratings); got != tc.want {
			t.Fatalf("ratings %v: expected %+v, got %+v", tc.ratings, tc.want, got)
		}
	}
}

package reviews

import (
	"context"
	"math"
	"strings"
	"time"

	"rento/internal/domain/listings"
	"rento/internal/domain/policy"
	"rento/internal/domain/shared/events"
	"rento/internal/domain/shared/fault"
)

var (
	ErrInvalidRating = fault.New(fault.Validation, "Rating must be between 1 and 5")
	ErrNotFound      = fault.New(fault.NotFound, "Review not found")
	ErrDuplicate     = fault.New(fault.Conflict, "You have already reviewed this apartment")
	ErrNotAuthor     = fault.New(fault.Forbidden, "Not authorized to modify this review")
	ErrFieldsMissing = fault.New(fault.Validation, "Apartment and rating are required")
)

type ReviewID string

type Review struct {
	ID        ReviewID
	ListingID listings.ListingID
	AuthorID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

// Stats summarizes a listing's reviews.
type Stats struct {
	Total   int
	Average float64
}

type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	// Insert fails with ErrDuplicate when the author already reviewed the listing.
	Insert(ctx context.Context, review *Review) error
	Update(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id ReviewID) error
	// ListByListing and ListByAuthor return newest first.
	ListByListing(ctx context.Context, listingID listings.ListingID) ([]*Review, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*Review, error)
	Stats(ctx context.Context, listingID listings.ListingID) (Stats, error)
}

type SubmitParams struct {
	ID        ReviewID
	ListingID listings.ListingID
	AuthorID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if strings.TrimSpace(string(params.ListingID)) == "" || params.Rating == 0 {
		return nil, ErrFieldsMissing
	}
	if err := validateRating(params.Rating); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	review := &Review{
		ID:        params.ID,
		ListingID: params.ListingID,
		AuthorID:  params.AuthorID,
		Rating:    params.Rating,
		Comment:   strings.TrimSpace(params.Comment),
		CreatedAt: now,
		UpdatedAt: now,
	}
	review.Record(ReviewSubmitted{ReviewID: review.ID, ListingID: review.ListingID, Rating: review.Rating, At: now})
	return review, nil
}

// Edit applies a partial change on behalf of actor. Nil fields keep their value.
func (r *Review) Edit(actor string, rating *int, comment *string, now time.Time) error {
	if err := r.EnsureAuthor(actor); err != nil {
		return err
	}
	if rating != nil {
		if err := validateRating(*rating); err != nil {
			return err
		}
		r.Rating = *rating
	}
	if comment != nil {
		r.Comment = strings.TrimSpace(*comment)
	}
	r.UpdatedAt = now.UTC()
	r.Record(ReviewUpdated{ReviewID: r.ID, ListingID: r.ListingID, At: r.UpdatedAt})
	return nil
}

// Withdraw records the deletion on behalf of actor.
func (r *Review) Withdraw(actor string, now time.Time) error {
	if err := r.EnsureAuthor(actor); err != nil {
		return err
	}
	r.Record(ReviewDeleted{ReviewID: r.ID, ListingID: r.ListingID, At: now.UTC()})
	return nil
}

func (r *Review) EnsureAuthor(actor string) error {
	if !policy.Owns(actor, r.AuthorID) {
		return ErrNotAuthor
	}
	return nil
}

// Summarize computes stats for a set of ratings; the average is rounded to one decimal.
func Summarize(ratings []int) Stats {
	if len(ratings) == 0 {
		return Stats{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return Stats{Total: len(ratings), Average: RoundAverage(float64(sum) / float64(len(ratings)))}
}

func RoundAverage(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	return nil
}

package reviews

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"rento/internal/app/clock"
	"rento/internal/app/commands"
	"rento/internal/app/dto"
	"rento/internal/app/outbox"
	"rento/internal/app/uow"
	domainlistings "rento/internal/domain/listings"
	domainreviews "rento/internal/domain/reviews"
)

const SubmitReviewKey = "reviews.submit"

// SubmitReviewCommand creates the author's single review of a listing.
type SubmitReviewCommand struct {
	AuthorID  string `validate:"required"`
	ListingID string
	Rating    int
	Comment   string
}

func (c SubmitReviewCommand) Key() string     { return SubmitReviewKey }
func (c SubmitReviewCommand) ActorID() string { return c.AuthorID }

// SubmitReviewHandler stores a new review and refreshes the listing rating.
type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (*dto.Review, error) {
	now := h.Clock.Now()
	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:        domainreviews.ReviewID(uuid.NewString()),
		ListingID: domainlistings.ListingID(cmd.ListingID),
		AuthorID:  cmd.AuthorID,
		Rating:    cmd.Rating,
		Comment:   cmd.Comment,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	if _, err := scope.Unit.Listings().ByID(ctx, review.ListingID); err != nil {
		return nil, err
	}
	if err := scope.Unit.Reviews().Insert(ctx, review); err != nil {
		return nil, err
	}
	if err := recalculateListingRating(ctx, scope.Unit, review.ListingID, now); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, review); err != nil {
		return nil, err
	}
	if err := scope.Commit(); err != nil {
		return nil, err
	}

	logger(h.Logger).Info("review submitted", "review_id", review.ID, "listing_id", review.ListingID, "author_id", cmd.AuthorID, "rating", review.Rating)
	out := dto.MapReview(review, "", "")
	return &out, nil
}

var _ commands.Handler[SubmitReviewCommand, *dto.Review] = (*SubmitReviewHandler)(nil)

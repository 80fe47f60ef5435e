package reviews

import (
	"context"
	"log/slog"

	"rento/internal/app/clock"
	"rento/internal/app/commands"
	"rento/internal/app/dto"
	"rento/internal/app/outbox"
	"rento/internal/app/uow"
	domainreviews "rento/internal/domain/reviews"
)

const (
	UpdateReviewKey = "reviews.update"
	DeleteReviewKey = "reviews.delete"
)

// UpdateReviewCommand edits a review; nil fields keep their value.
type UpdateReviewCommand struct {
	AuthorID string `validate:"required"`
	ReviewID string `validate:"required"`
	Rating   *int
	Comment  *string
}

func (c UpdateReviewCommand) Key() string     { return UpdateReviewKey }
func (c UpdateReviewCommand) ActorID() string { return c.AuthorID }

type UpdateReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *UpdateReviewHandler) Handle(ctx context.Context, cmd UpdateReviewCommand) (*dto.Review, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	review, err := scope.Unit.Reviews().ByID(ctx, domainreviews.ReviewID(cmd.ReviewID))
	if err != nil {
		return nil, err
	}
	now := h.Clock.Now()
	if err := review.Edit(cmd.AuthorID, cmd.Rating, cmd.Comment, now); err != nil {
		return nil, err
	}
	if err := scope.Unit.Reviews().Update(ctx, review); err != nil {
		return nil, err
	}
	if cmd.Rating != nil {
		if err := recalculateListingRating(ctx, scope.Unit, review.ListingID, now); err != nil {
			return nil, err
		}
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, review); err != nil {
		return nil, err
	}
	if err := scope.Commit(); err != nil {
		return nil, err
	}

	logger(h.Logger).Info("review updated", "review_id", review.ID, "author_id", cmd.AuthorID)
	out := dto.MapReview(review, "", "")
	return &out, nil
}

type DeleteReviewCommand struct {
	AuthorID string `validate:"required"`
	ReviewID string `validate:"required"`
}

func (c DeleteReviewCommand) Key() string     { return DeleteReviewKey }
func (c DeleteReviewCommand) ActorID() string { return c.AuthorID }

type DeleteReviewHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (struct{}, error) {
	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return struct{}{}, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	review, err := scope.Unit.Reviews().ByID(ctx, domainreviews.ReviewID(cmd.ReviewID))
	if err != nil {
		return struct{}{}, err
	}
	now := h.Clock.Now()
	if err := review.Withdraw(cmd.AuthorID, now); err != nil {
		return struct{}{}, err
	}
	if err := scope.Unit.Reviews().Delete(ctx, review.ID); err != nil {
		return struct{}{}, err
	}
	if err := recalculateListingRating(ctx, scope.Unit, review.ListingID, now); err != nil {
		return struct{}{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, review); err != nil {
		return struct{}{}, err
	}
	if err := scope.Commit(); err != nil {
		return struct{}{}, err
	}

	logger(h.Logger).Info("review deleted", "review_id", review.ID, "author_id", cmd.AuthorID)
	return struct{}{}, nil
}

var (
	_ commands.Handler[UpdateReviewCommand, *dto.Review] = (*UpdateReviewHandler)(nil)
	_ commands.Handler[DeleteReviewCommand, struct{}]    = (*DeleteReviewHandler)(nil)
)

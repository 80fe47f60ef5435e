package listings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"rento/internal/app/clock"
	"rento/internal/app/commands"
	"rento/internal/app/dto"
	"rento/internal/app/outbox"
	"rento/internal/app/uow"
	domainlistings "rento/internal/domain/listings"
	"rento/internal/domain/shared/fault"
)

const UploadListingImageKey = "listings.image.upload"

var (
	ErrImageRequired    = fault.New(fault.Validation, "Image file is required")
	ErrImageType        = fault.New(fault.Validation, "Only image files are allowed")
	ErrImageStoreAbsent = fault.New(fault.Internal, "image storage is not configured")
)

// ImageStore persists binary content and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (publicURL string, err error)
}

type UploadListingImageCommand struct {
	OwnerID     string `validate:"required"`
	ListingID   string `validate:"required"`
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func (c UploadListingImageCommand) Key() string     { return UploadListingImageKey }
func (c UploadListingImageCommand) ActorID() string { return c.OwnerID }

type UploadListingImageHandler struct {
	UoWFactory uow.UoWFactory
	Images     ImageStore
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Clock      clock.Clock
	Logger     *slog.Logger
}

func (h *UploadListingImageHandler) Handle(ctx context.Context, cmd UploadListingImageCommand) (*dto.Listing, error) {
	if h.Images == nil {
		return nil, ErrImageStoreAbsent
	}
	if cmd.Reader == nil {
		return nil, ErrImageRequired
	}
	if !strings.HasPrefix(strings.ToLower(cmd.ContentType), "image/") {
		return nil, ErrImageType
	}

	scope, err := uow.Join(ctx, h.UoWFactory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer scope.Close()
	ctx = scope.Ctx

	listing, err := scope.Unit.Listings().ByID(ctx, domainlistings.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if err := listing.EnsureOwner(cmd.OwnerID); err != nil {
		return nil, err
	}

	key := imageKey(listing.ID, cmd.FileName)
	publicURL, err := h.Images.Upload(ctx, key, cmd.Reader, cmd.Size, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	listing.SetImage(publicURL, h.Clock.Now())
	if err := scope.Unit.Listings().Save(ctx, listing); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, listing); err != nil {
		return nil, err
	}
	if err := scope.Commit(); err != nil {
		return nil, err
	}

	logger(h.Logger).Info("listing image uploaded", "listing_id", listing.ID, "owner_id", cmd.OwnerID, "object_key", key)
	out := dto.MapListing(listing, nil)
	return &out, nil
}

func imageKey(id domainlistings.ListingID, fileName string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	return fmt.Sprintf("listings/%s/%s%s", id, uuid.NewString(), ext)
}

var _ commands.Handler[UploadListingImageCommand, *dto.Listing] = (*UploadListingImageHandler)(nil)

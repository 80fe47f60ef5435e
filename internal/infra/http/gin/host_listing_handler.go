package ginserver

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rento/internal/app/commands"
	"rento/internal/app/dto"
	listingapp "rento/internal/app/handlers/listings"
	"rento/internal/app/queries"
	domainlistings "rento/internal/domain/listings"
	"rento/internal/domain/shared/fault"
)

const defaultMaxImageBytes int64 = 5 * 1024 * 1024

// HostListingHandler serves apartment mutations for their owners.
type HostListingHandler struct {
	Commands      commands.Bus
	Queries       queries.Bus
	MaxImageBytes int64
	Logger        *slog.Logger
}

type listingRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *int64   `json:"price"`
	Location    *string  `json:"location"`
	Region      *string  `json:"region"`
	Address     *string  `json:"address"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	Area        *int     `json:"area"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Available   *bool    `json:"available"`
	ImageURL    *string  `json:"image_url"`
}

func (r listingRequest) payload() listingapp.ListingPayload {
	return listingapp.ListingPayload{
		Title:       deref(r.Title),
		Description: deref(r.Description),
		Price:       deref(r.Price),
		Location:    deref(r.Location),
		Region:      deref(r.Region),
		Address:     deref(r.Address),
		Bedrooms:    deref(r.Bedrooms),
		Bathrooms:   deref(r.Bathrooms),
		Area:        deref(r.Area),
		Lat:         r.Lat,
		Lng:         r.Lng,
		Available:   r.Available,
		ImageURL:    deref(r.ImageURL),
	}
}

func (r listingRequest) changes() domainlistings.UpdateParams {
	return domainlistings.UpdateParams{
		Title:        r.Title,
		Description:  r.Description,
		Location:     r.Location,
		Region:       r.Region,
		Address:      r.Address,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		Area:         r.Area,
		Lat:          r.Lat,
		Lng:          r.Lng,
		MonthlyPrice: r.Price,
		Available:    r.Available,
		ImageURL:     r.ImageURL,
	}
}

func (h HostListingHandler) Create(c *gin.Context) {
	owner, _ := currentPrincipal(c)
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, errInvalidBody)
		return
	}
	cmd := listingapp.CreateListingCommand{OwnerID: owner.UserID, Payload: req.payload()}
	result, err := commands.Dispatch[listingapp.CreateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/apartments/%s", result.ID))
	respondData(c, http.StatusCreated, "Apartment created successfully", result)
}

func (h HostListingHandler) Update(c *gin.Context) {
	owner, _ := currentPrincipal(c)
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, errInvalidBody)
		return
	}
	cmd := listingapp.UpdateListingCommand{OwnerID: owner.UserID, ListingID: c.Param("id"), Changes: req.changes()}
	result, err := commands.Dispatch[listingapp.UpdateListingCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, "Apartment updated successfully", result)
}

func (h HostListingHandler) Delete(c *gin.Context) {
	owner, _ := currentPrincipal(c)
	cmd := listingapp.DeleteListingCommand{OwnerID: owner.UserID, ListingID: c.Param("id")}
	if _, err := commands.Dispatch[listingapp.DeleteListingCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Apartment deleted successfully")
}

func (h HostListingHandler) Mine(c *gin.Context) {
	owner, _ := currentPrincipal(c)
	query := listingapp.ListOwnerListingsQuery{OwnerID: owner.UserID}
	items, err := queries.Ask[listingapp.ListOwnerListingsQuery, []dto.Listing](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondList(c, items)
}

// UploadImage accepts a multipart "image" field and stores it as the apartment photo.
func (h HostListingHandler) UploadImage(c *gin.Context) {
	owner, _ := currentPrincipal(c)
	limit := h.MaxImageBytes
	if limit <= 0 {
		limit = defaultMaxImageBytes
	}
	tooLarge := fault.New(fault.Validation, fmt.Sprintf("Image must be at most %d MB", limit/1024/1024))

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, h.Logger, listingapp.ErrImageRequired)
		return
	}
	if fileHeader.Size > limit {
		respondError(c, h.Logger, tooLarge)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.Logger, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		respondError(c, h.Logger, fmt.Errorf("read upload: %w", err))
		return
	}
	if len(data) == 0 {
		respondError(c, h.Logger, listingapp.ErrImageRequired)
		return
	}
	if int64(len(data)) > limit {
		respondError(c, h.Logger, tooLarge)
		return
	}

	cmd := listingapp.UploadListingImageCommand{
		OwnerID:     owner.UserID,
		ListingID:   c.Param("id"),
		FileName:    fileHeader.Filename,
		ContentType: http.DetectContentType(data),
		Size:        int64(len(data)),
		Reader:      bytes.NewReader(data),
	}
	result, err := commands.Dispatch[listingapp.UploadListingImageCommand, *dto.Listing](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, "Image uploaded successfully", result)
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

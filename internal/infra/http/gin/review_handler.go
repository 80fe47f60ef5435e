package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rento/internal/app/commands"
	"rento/internal/app/dto"
	reviewsapp "rento/internal/app/handlers/reviews"
	"rento/internal/app/queries"
)

type ReviewsHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	ApartmentID string `json:"apartment_id"`
	Rating      int    `json:"rating"`
	Comment     string `json:"comment"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func (h ReviewsHandler) ForListing(c *gin.Context) {
	query := reviewsapp.ListListingReviewsQuery{ListingID: c.Param("apartmentId")}
	result, err := queries.Ask[reviewsapp.ListListingReviewsQuery, dto.ListingReviews](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, "", result)
}

func (h ReviewsHandler) Mine(c *gin.Context) {
	user, _ := currentPrincipal(c)
	query := reviewsapp.ListUserReviewsQuery{UserID: user.UserID}
	items, err := queries.Ask[reviewsapp.ListUserReviewsQuery, []dto.Review](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondList(c, items)
}

func (h ReviewsHandler) Submit(c *gin.Context) {
	user, _ := currentPrincipal(c)
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, errInvalidBody)
		return
	}
	cmd := reviewsapp.SubmitReviewCommand{
		AuthorID:  user.UserID,
		ListingID: strings.TrimSpace(req.ApartmentID),
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	result, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusCreated, "Review added successfully", result)
}

func (h ReviewsHandler) Update(c *gin.Context) {
	user, _ := currentPrincipal(c)
	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, errInvalidBody)
		return
	}
	cmd := reviewsapp.UpdateReviewCommand{AuthorID: user.UserID, ReviewID: c.Param("id"), Rating: req.Rating, Comment: req.Comment}
	result, err := commands.Dispatch[reviewsapp.UpdateReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, "Review updated successfully", result)
}

func (h ReviewsHandler) Delete(c *gin.Context) {
	user, _ := currentPrincipal(c)
	cmd := reviewsapp.DeleteReviewCommand{AuthorID: user.UserID, ReviewID: c.Param("id")}
	if _, err := commands.Dispatch[reviewsapp.DeleteReviewCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Review deleted successfully")
}

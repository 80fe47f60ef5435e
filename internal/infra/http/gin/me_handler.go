package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"rento/internal/app/commands"
	"rento/internal/app/dto"
	meapp "rento/internal/app/handlers/me"
	"rento/internal/app/queries"
)

// MeHandler serves the caller's profile and favorites.
type MeHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

func (h MeHandler) Profile(c *gin.Context) {
	user, _ := currentPrincipal(c)
	profile, err := queries.Ask[meapp.GetProfileQuery, dto.User](c.Request.Context(), h.Queries, meapp.GetProfileQuery{UserID: user.UserID})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, "", profile)
}

func (h MeHandler) UpdateProfile(c *gin.Context) {
	user, _ := currentPrincipal(c)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.Logger, errInvalidBody)
		return
	}
	cmd := meapp.UpdateProfileCommand{UserID: user.UserID, Name: req.Name, Phone: req.Phone}
	profile, err := commands.Dispatch[meapp.UpdateProfileCommand, *dto.User](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondData(c, http.StatusOK, "Profile updated successfully", profile)
}

func (h MeHandler) Favorites(c *gin.Context) {
	user, _ := currentPrincipal(c)
	items, err := queries.Ask[meapp.ListFavoritesQuery, []dto.Listing](c.Request.Context(), h.Queries, meapp.ListFavoritesQuery{UserID: user.UserID})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondList(c, items)
}

func (h MeHandler) AddFavorite(c *gin.Context) {
	user, _ := currentPrincipal(c)
	cmd := meapp.AddFavoriteCommand{UserID: user.UserID, ListingID: c.Param("apartmentId")}
	if _, err := commands.Dispatch[meapp.AddFavoriteCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusCreated, "Added to favorites")
}

func (h MeHandler) RemoveFavorite(c *gin.Context) {
	user, _ := currentPrincipal(c)
	cmd := meapp.RemoveFavoriteCommand{UserID: user.UserID, ListingID: c.Param("apartmentId")}
	if _, err := commands.Dispatch[meapp.RemoveFavoriteCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	respondMessage(c, http.StatusOK, "Removed from favorites")
}

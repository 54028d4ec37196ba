package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"predictmarket/internal/service"
)

type ProfileHandler struct {
	Profiles *service.ProfileService
}

func (h *ProfileHandler) Register(r *gin.Engine) {
	r.POST("/api/profiles", h.create)
	r.GET("/api/profiles/:username", h.get)
	r.GET("/api/profiles/:username/score-changes", h.scoreHistory)
	r.GET("/api/leaderboard", h.leaderboard)
}

type createProfileRequest struct {
	Username string `json:"username" binding:"required"`
}

// @Summary Create a profile
// @Tags profiles
// @Accept json
// @Param body body createProfileRequest true "profile"
// @Success 200 {object} models.Profile
// @Router /api/profiles [post]
func (h *ProfileHandler) create(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	profile, err := h.Profiles.CreateProfile(c.Request.Context(), req.Username)
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		Error(c, http.StatusConflict, "username already taken")
	case err != nil:
		Error(c, http.StatusBadRequest, err.Error())
	default:
		Ok(c, profile, nil)
	}
}

// @Summary Profile by username
// @Tags profiles
// @Param username path string true "username"
// @Success 200 {object} models.Profile
// @Router /api/profiles/{username} [get]
func (h *ProfileHandler) get(c *gin.Context) {
	profile, err := h.Profiles.GetProfile(c.Request.Context(), c.Param("username"))
	if errors.Is(err, service.ErrProfileNotFound) {
		Error(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, profile, nil)
}

// @Summary Recent score changes for a user
// @Tags profiles
// @Param username path string true "username"
// @Success 200 {array} models.ScoreChange
// @Router /api/profiles/{username}/score-changes [get]
func (h *ProfileHandler) scoreHistory(c *gin.Context) {
	history, err := h.Profiles.ScoreHistory(c.Request.Context(), c.Param("username"), intQuery(c, "limit", 20))
	if errors.Is(err, service.ErrProfileNotFound) {
		Error(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, history, nil)
}

// @Summary Top profiles by reputation score
// @Tags profiles
// @Success 200 {array} models.Profile
// @Router /api/leaderboard [get]
func (h *ProfileHandler) leaderboard(c *gin.Context) {
	items, err := h.Profiles.Leaderboard(c.Request.Context(), intQuery(c, "limit", 100))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, items, nil)
}

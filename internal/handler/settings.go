package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"predictmarket/internal/repository"
	"predictmarket/internal/service"
)

type SettingsHandler struct {
	Repo     repository.Repository
	Settings *service.SettingsService
}

func (h *SettingsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/settings")
	g.GET("/:key", h.get)
	g.PUT("/:key", h.put)
}

// @Summary Effective numeric setting (stored value or default)
// @Tags settings
// @Param key path string true "setting key"
// @Success 200 {object} map[string]any
// @Router /api/settings/{key} [get]
func (h *SettingsHandler) get(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		Error(c, http.StatusBadRequest, "invalid key")
		return
	}
	var value int
	switch key {
	case service.SettingMinVotersScoring:
		value = h.Settings.MinVotersScoring(c.Request.Context())
	case service.SettingGraphMinVotes:
		value = h.Settings.GraphMinVotes(c.Request.Context())
	default:
		value = h.Settings.GetInt(c.Request.Context(), key, 0)
	}
	Ok(c, map[string]any{"key": key, "value": value}, nil)
}

type putSettingRequest struct {
	Value       int    `json:"value"`
	Description string `json:"description"`
}

// @Summary Store a numeric setting
// @Tags settings
// @Accept json
// @Param key path string true "setting key"
// @Param body body putSettingRequest true "value"
// @Success 200 {object} map[string]any
// @Router /api/settings/{key} [put]
func (h *SettingsHandler) put(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		Error(c, http.StatusBadRequest, "invalid key")
		return
	}
	var req putSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Value < 0 {
		Error(c, http.StatusBadRequest, "value must be 0 or more")
		return
	}
	if err := h.Settings.SetInt(c.Request.Context(), key, req.Value, req.Description); err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, map[string]any{"key": key, "value": req.Value}, nil)
}

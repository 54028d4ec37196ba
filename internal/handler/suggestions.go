package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"predictmarket/internal/repository"
	"predictmarket/internal/service"
)

type SuggestionHandler struct {
	Repo    repository.Repository
	Import  *service.SuggestionImportService
	Markets *service.MarketService
}

func (h *SuggestionHandler) Register(r *gin.Engine) {
	g := r.Group("/api/suggestions")
	g.GET("", h.list)
	g.POST("/import", h.runImport)
	g.POST("/:id/publish", h.publish)
	g.POST("/:id/dismiss", h.dismiss)
}

// @Summary List imported market drafts
// @Tags suggestions
// @Param status query string false "pending|published|dismissed"
// @Success 200 {array} models.MarketSuggestion
// @Router /api/suggestions [get]
func (h *SuggestionHandler) list(c *gin.Context) {
	items, err := h.Repo.ListSuggestions(c.Request.Context(), repository.ListSuggestionsParams{
		Limit:  intQuery(c, "limit", 100),
		Offset: intQuery(c, "offset", 0),
		Status: strQueryPtr(c, "status"),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, items, nil)
}

// @Summary Run the external feed import once
// @Tags suggestions
// @Success 200 {object} service.ImportResult
// @Router /api/suggestions/import [post]
func (h *SuggestionHandler) runImport(c *gin.Context) {
	result, err := h.Import.RunOnce(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, result, nil)
}

type publishSuggestionRequest struct {
	CloseTime time.Time `json:"close_time"`
}

// @Summary Publish a draft as a real market
// @Tags suggestions
// @Accept json
// @Param id path int true "suggestion id"
// @Success 200 {object} models.Market
// @Router /api/suggestions/{id}/publish [post]
func (h *SuggestionHandler) publish(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id")
		return
	}
	var req publishSuggestionRequest
	_ = c.ShouldBindJSON(&req)
	market, err := h.Import.PublishSuggestion(c.Request.Context(), id, h.Markets, req.CloseTime)
	switch {
	case errors.Is(err, service.ErrSuggestionMissing):
		Error(c, http.StatusNotFound, "suggestion not found")
	case err != nil:
		Error(c, http.StatusBadRequest, err.Error())
	default:
		Ok(c, market, nil)
	}
}

// @Summary Dismiss a draft
// @Tags suggestions
// @Param id path int true "suggestion id"
// @Success 200 {object} map[string]string
// @Router /api/suggestions/{id}/dismiss [post]
func (h *SuggestionHandler) dismiss(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid id")
		return
	}
	err = h.Import.DismissSuggestion(c.Request.Context(), id)
	switch {
	case errors.Is(err, service.ErrSuggestionMissing):
		Error(c, http.StatusNotFound, "suggestion not found")
	case err != nil:
		Error(c, http.StatusBadGateway, err.Error())
	default:
		Ok(c, map[string]string{"status": "dismissed"}, nil)
	}
}

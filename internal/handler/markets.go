package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"predictmarket/internal/models"
	"predictmarket/internal/repository"
	"predictmarket/internal/service"
)

type MarketHandler struct {
	Markets    *service.MarketService
	Resolution *service.ResolutionService
	Snapshots  *service.SnapshotService
	Settings   *service.SettingsService
	Logger     *zap.Logger
}

func (h *MarketHandler) Register(r *gin.Engine) {
	g := r.Group("/api/markets")
	g.POST("", h.create)
	g.GET("", h.list)
	g.POST("/close-overdue", h.closeOverdue)
	g.GET("/:id", h.get)
	g.POST("/:id/resolve", h.resolve)
	g.POST("/:id/snapshot", h.snapshot)
	g.GET("/:id/snapshots", h.snapshotSeries)
}

type createMarketRequest struct {
	Question    string    `json:"question" binding:"required"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	CloseTime   time.Time `json:"close_time" binding:"required"`
}

// @Summary Create a market
// @Tags markets
// @Accept json
// @Param body body createMarketRequest true "market"
// @Success 200 {object} models.Market
// @Router /api/markets [post]
func (h *MarketHandler) create(c *gin.Context) {
	var req createMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	market, err := h.Markets.CreateMarket(c.Request.Context(), service.CreateMarketInput{
		Question:    req.Question,
		Description: req.Description,
		Category:    req.Category,
		CloseTime:   req.CloseTime,
	})
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error())
		return
	}
	Ok(c, market, nil)
}

// @Summary List markets
// @Tags markets
// @Param status query string false "open|closed|resolved"
// @Param category query string false "category"
// @Success 200 {array} service.MarketView
// @Router /api/markets [get]
func (h *MarketHandler) list(c *gin.Context) {
	params := repository.ListMarketsParams{
		Limit:    intQuery(c, "limit", 50),
		Offset:   intQuery(c, "offset", 0),
		Status:   strQueryPtr(c, "status"),
		Category: strQueryPtr(c, "category"),
		OrderBy:  "created_at",
		Asc:      boolPtr(false),
	}
	items, total, err := h.Markets.ListMarkets(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

// @Summary Get a market with its live tally
// @Tags markets
// @Param id path string true "market id"
// @Success 200 {object} service.MarketView
// @Router /api/markets/{id} [get]
func (h *MarketHandler) get(c *gin.Context) {
	view, err := h.Markets.GetMarket(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrMarketNotFound) {
		Error(c, http.StatusNotFound, "market not found")
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, view, nil)
}

type resolveMarketRequest struct {
	Outcome string `json:"outcome"`
}

// @Summary Resolve a market with a declared outcome
// @Tags markets
// @Accept json
// @Param id path string true "market id"
// @Param body body resolveMarketRequest true "outcome"
// @Success 200 {object} service.ResolveResult
// @Router /api/markets/{id}/resolve [post]
func (h *MarketHandler) resolve(c *gin.Context) {
	var req resolveMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	outcome := strings.ToLower(strings.TrimSpace(req.Outcome))
	if !models.ValidOutcome(outcome) {
		Error(c, http.StatusBadRequest, "invalid outcome")
		return
	}
	result, err := h.Resolution.ResolveMarket(c.Request.Context(), c.Param("id"), outcome)
	switch {
	case errors.Is(err, service.ErrMarketNotFound):
		Error(c, http.StatusNotFound, "market not found")
	case errors.Is(err, service.ErrAlreadyResolved):
		Error(c, http.StatusConflict, "market already resolved")
	case err != nil:
		if h.Logger != nil {
			h.Logger.Error("resolve failed", zap.String("market_id", c.Param("id")), zap.Error(err))
		}
		Error(c, http.StatusBadGateway, err.Error())
	default:
		Ok(c, result, nil)
	}
}

// @Summary Close every open market whose close time has passed
// @Tags markets
// @Success 200 {object} map[string]int64
// @Router /api/markets/close-overdue [post]
func (h *MarketHandler) closeOverdue(c *gin.Context) {
	closed, err := h.Markets.CloseOverdueMarkets(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, map[string]int64{"closed": closed}, nil)
}

// @Summary Append a sentiment snapshot on demand
// @Tags markets
// @Param id path string true "market id"
// @Success 200 {object} map[string]string
// @Router /api/markets/{id}/snapshot [post]
func (h *MarketHandler) snapshot(c *gin.Context) {
	if err := h.Snapshots.SnapshotMarket(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, map[string]string{"status": "ok"}, nil)
}

// @Summary Sentiment time series for the chart
// @Tags markets
// @Param id path string true "market id"
// @Success 200 {object} service.SnapshotSeries
// @Router /api/markets/{id}/snapshots [get]
func (h *MarketHandler) snapshotSeries(c *gin.Context) {
	graphMinVotes := h.Settings.GraphMinVotes(c.Request.Context())
	series, err := h.Markets.GetSnapshotSeries(c.Request.Context(), c.Param("id"), graphMinVotes)
	if errors.Is(err, service.ErrMarketNotFound) {
		Error(c, http.StatusNotFound, "market not found")
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	Ok(c, series, nil)
}

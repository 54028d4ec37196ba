package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"predictmarket/internal/service"
	"predictmarket/internal/ws"
)

type LiveHandler struct {
	Hub     *ws.Hub
	Markets *service.MarketService
	Logger  *zap.Logger
}

func (h *LiveHandler) Register(r *gin.Engine) {
	r.GET("/api/markets/:id/live", h.live)
}

// @Summary Live sentiment feed for one market (websocket)
// @Tags markets
// @Param id path string true "market id"
// @Router /api/markets/{id}/live [get]
func (h *LiveHandler) live(c *gin.Context) {
	marketID := c.Param("id")
	view, err := h.Markets.GetMarket(c.Request.Context(), marketID)
	if errors.Is(err, service.ErrMarketNotFound) {
		Error(c, http.StatusNotFound, "market not found")
		return
	}
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}

	updates, cancel, err := h.Hub.Subscribe(marketID)
	if err != nil {
		Error(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer cancel()

	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("ws accept failed", zap.String("market_id", marketID), zap.Error(err))
		}
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	// We never expect client messages; CloseRead cancels the context when
	// the client goes away.
	ctx := conn.CloseRead(c.Request.Context())

	// Send the current tally immediately so new watchers do not wait for
	// the next vote.
	initial := ws.Update{
		MarketID: marketID,
		YesPct:   view.YesPct,
		NoPct:    view.NoPct,
		Votes:    view.Votes,
		At:       time.Now().UTC(),
	}
	if err := wsjson.Write(ctx, conn, initial); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "bye")
			return
		case update := <-updates:
			if err := wsjson.Write(ctx, conn, update); err != nil {
				return
			}
		}
	}
}

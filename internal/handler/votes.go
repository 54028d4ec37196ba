package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"predictmarket/internal/service"
)

type VoteHandler struct {
	Votes *service.VoteService
}

func (h *VoteHandler) Register(r *gin.Engine) {
	g := r.Group("/api/markets/:id/votes")
	g.POST("", h.cast)
	g.GET("/:userID", h.get)
	g.DELETE("/:userID", h.retract)
}

type castVoteRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Choice string `json:"choice" binding:"required"`
}

// @Summary Cast, switch, or retract-by-reselect a vote
// @Tags votes
// @Accept json
// @Param id path string true "market id"
// @Param body body castVoteRequest true "vote"
// @Success 200 {object} service.CastVoteResult
// @Router /api/markets/{id}/votes [post]
func (h *VoteHandler) cast(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body")
		return
	}
	result, err := h.Votes.CastVote(c.Request.Context(), c.Param("id"), req.UserID, req.Choice)
	switch {
	case errors.Is(err, service.ErrInvalidChoice):
		Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrMarketNotFound):
		Error(c, http.StatusNotFound, "market not found")
	case errors.Is(err, service.ErrMarketNotOpen):
		Error(c, http.StatusConflict, "voting is closed")
	case err != nil:
		Error(c, http.StatusBadGateway, err.Error())
	default:
		Ok(c, result, nil)
	}
}

// @Summary Current vote of one user in one market
// @Tags votes
// @Param id path string true "market id"
// @Param userID path string true "user id"
// @Success 200 {object} models.Vote
// @Router /api/markets/{id}/votes/{userID} [get]
func (h *VoteHandler) get(c *gin.Context) {
	vote, err := h.Votes.GetVote(c.Request.Context(), c.Param("id"), c.Param("userID"))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error())
		return
	}
	if vote == nil {
		Error(c, http.StatusNotFound, "no vote")
		return
	}
	Ok(c, vote, nil)
}

// @Summary Retract a vote (no penalty)
// @Tags votes
// @Param id path string true "market id"
// @Param userID path string true "user id"
// @Success 200 {object} map[string]string
// @Router /api/markets/{id}/votes/{userID} [delete]
func (h *VoteHandler) retract(c *gin.Context) {
	err := h.Votes.RetractVote(c.Request.Context(), c.Param("id"), c.Param("userID"))
	switch {
	case errors.Is(err, service.ErrVoteNotFound):
		Error(c, http.StatusNotFound, "no vote")
	case errors.Is(err, service.ErrMarketNotFound):
		Error(c, http.StatusNotFound, "market not found")
	case errors.Is(err, service.ErrMarketNotOpen):
		Error(c, http.StatusConflict, "voting is closed")
	case err != nil:
		Error(c, http.StatusBadGateway, err.Error())
	default:
		Ok(c, map[string]string{"status": "retracted"}, nil)
	}
}

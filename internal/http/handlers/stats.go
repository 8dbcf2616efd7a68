package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ctfacademy/academy-backend/internal/http/response"
	"github.com/ctfacademy/academy-backend/internal/services"
)

type StatsHandler struct {
	svc services.StatsService
}

func NewStatsHandler(svc services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GET /api/me/stats
func (h *StatsHandler) GetMyStats(c *gin.Context) {
	stats, err := h.svc.GetUserStats(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/leaderboard?limit=N
func (h *StatsHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	entries, err := h.svc.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"leaderboard": entries})
}

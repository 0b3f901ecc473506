package handlers

import (
	"edulearn/middleware"
	"edulearn/services"
	"edulearn/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsHandler struct {
	statsService *services.StatsService
	log          *zap.Logger
}

func NewStatsHandler(statsService *services.StatsService, log *zap.Logger) *StatsHandler {
	return &StatsHandler{statsService: statsService, log: log}
}

func (h *StatsHandler) GetQuizStatistics(c *gin.Context) {
	claims := middleware.CurrentUser(c)
	if claims == nil {
		util.Unauthorized(c)
		return
	}

	stats, err := h.statsService.GetQuizStatistics(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	util.Success(c, gin.H{"statistics": stats})
}

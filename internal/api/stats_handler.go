package api

import (
	"net/http"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// StatsHandler holds the stats service dependency.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetDashboard returns the composite home-screen snapshot.
func (h *StatsHandler) GetDashboard(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	stats, err := h.statsService.GetDashboard(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute dashboard")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetStreak returns the consecutive-training-weeks count.
func (h *StatsHandler) GetStreak(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	streak, err := h.statsService.GetWeeklyStreak(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute streak")
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": streak})
}

// GetPersonalRecord returns the current and thirty-day-prior max weight
// for one exercise.
func (h *StatsHandler) GetPersonalRecord(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	record, err := h.statsService.GetPersonalRecord(c.Request.Context(), ownerID, exerciseID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute personal record")
		return
	}
	c.JSON(http.StatusOK, record)
}

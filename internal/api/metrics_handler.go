package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MetricsHandler holds the body metrics service dependency.
type MetricsHandler struct {
	metricsService service.MetricsService
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(metricsService service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metricsService: metricsService}
}

// --- DTOs ---

type CreateMetricRequest struct {
	Date           *time.Time `json:"date"`
	Weight         *float64   `json:"weight"`
	Waist          *float64   `json:"waist"`
	PhotoObjectKey string     `json:"photoObjectKey"`
}

type PhotoUploadRequest struct {
	ContentType string `json:"contentType"`
}

// --- Handler Methods ---

// CreateMetric records one body measurement point.
func (h *MetricsHandler) CreateMetric(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	var req CreateMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	date := time.Time{}
	if req.Date != nil {
		date = *req.Date
	}
	metric, err := h.metricsService.CreateMetric(c.Request.Context(), ownerID, date, req.Weight, req.Waist, req.PhotoObjectKey)
	if err != nil {
		if errors.Is(err, service.ErrMetricEmpty) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create metric")
		}
		return
	}
	c.JSON(http.StatusCreated, metric)
}

// GetMetrics lists the user's measurement history, photos presigned.
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	metrics, err := h.metricsService.GetMetricsByOwner(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// DeleteMetric removes one measurement point and its photo object.
func (h *MetricsHandler) DeleteMetric(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	metricID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.metricsService.DeleteMetric(c.Request.Context(), ownerID, metricID); err != nil {
		if errors.Is(err, service.ErrMetricNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete metric")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestPhotoUpload returns a presigned PUT URL for a progress photo.
func (h *MetricsHandler) RequestPhotoUpload(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	var req PhotoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	upload, err := h.metricsService.RequestPhotoUpload(c.Request.Context(), ownerID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrUploadUnavailable) {
			abortWithError(c, http.StatusServiceUnavailable, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to generate upload URL")
		}
		return
	}
	c.JSON(http.StatusOK, upload)
}

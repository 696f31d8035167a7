package api

import (
	"errors"
	"fmt"
	"net/http"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs ---

type ExerciseRequest struct {
	Name            string `json:"name" binding:"required"`
	MuscleGroup     string `json:"muscleGroup"`
	DefaultSetCount int    `json:"defaultSetCount" binding:"omitempty,min=1,max=20"`
}

type DefaultSetsRequest struct {
	DefaultSetCount int `json:"defaultSetCount" binding:"required,min=1,max=20"`
}

// --- Handler Methods ---

// CreateExercise adds an exercise to the authenticated user's library.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.CreateExercise(c.Request.Context(), ownerID, req.Name, req.MuscleGroup, req.DefaultSetCount)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise")
		}
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// GetExercises lists the authenticated user's exercise library.
func (h *ExerciseHandler) GetExercises(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	exercises, err := h.exerciseService.GetExercisesByOwner(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises")
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// GetExercise returns one exercise by id.
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetExerciseByID(c.Request.Context(), ownerID, exerciseID)
	if err != nil {
		respondExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// UpdateExercise overwrites an exercise's editable fields.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.UpdateExercise(c.Request.Context(), ownerID, exerciseID, req.Name, req.MuscleGroup, req.DefaultSetCount)
	if err != nil {
		respondExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// UpdateDefaultSets persists an accepted smart-set suggestion.
func (h *ExerciseHandler) UpdateDefaultSets(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req DefaultSetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.exerciseService.UpdateDefaultSets(c.Request.Context(), ownerID, exerciseID, req.DefaultSetCount); err != nil {
		respondExerciseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteExercise removes an exercise from the library.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.exerciseService.DeleteExercise(c.Request.Context(), ownerID, exerciseID); err != nil {
		respondExerciseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondExerciseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExerciseAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

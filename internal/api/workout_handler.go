package api

import (
	"errors"
	"fmt"
	"net/http"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler holds the services driving the active-session endpoints.
type WorkoutHandler struct {
	workoutService  service.WorkoutService
	templateService service.TemplateService
	statsService    service.StatsService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService, templateService service.TemplateService, statsService service.StatsService) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService:  workoutService,
		templateService: templateService,
		statsService:    statsService,
	}
}

// --- DTOs ---

type StartWorkoutRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
}

type FinishWorkoutRequest struct {
	DurationMinutes int `json:"durationMinutes" binding:"omitempty,min=0"`
}

type FinishWorkoutResponse struct {
	SmartSetCandidates []service.SmartSetCandidate `json:"smartSetCandidates"`
}

type UpdateSetRequest struct {
	Weight *float64 `json:"weight"`
	Reps   *int     `json:"reps"`
}

type SetInputRequest struct {
	WeightText *string `json:"weightText"`
	RepsText   *string `json:"repsText"`
}

type AddSessionExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

// --- Handler Methods ---

// StartWorkout creates a new active session from a template's program.
func (h *WorkoutHandler) StartWorkout(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	var req StartWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	templateID, ok := bodyObjectID(c, req.TemplateID, "templateId")
	if !ok {
		return
	}

	details, err := h.templateService.GetTemplateDetails(c.Request.Context(), ownerID, templateID)
	if err != nil {
		respondTemplateError(c, err)
		return
	}

	// Entries pointing at deleted exercises hold their position in the
	// template view but cannot be trained, so they are skipped here.
	entries := make([]service.StartExercise, 0, len(details.Exercises))
	for _, entry := range details.Exercises {
		if entry.ExerciseName == "" {
			continue
		}
		entries = append(entries, service.StartExercise{
			ExerciseID:      entry.ExerciseID,
			ExerciseName:    entry.ExerciseName,
			DefaultSetCount: entry.DefaultSetCount,
		})
	}

	snapshot, err := h.workoutService.StartWorkout(c.Request.Context(), ownerID, templateID, entries)
	if err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snapshot)
}

// GetActiveWorkout returns the current session snapshot.
func (h *WorkoutHandler) GetActiveWorkout(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	snapshot, err := h.workoutService.Snapshot(ownerID)
	if err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// FinishWorkout completes the active session and returns smart-set candidates.
func (h *WorkoutHandler) FinishWorkout(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	var req FinishWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	candidates, err := h.workoutService.FinishWorkout(c.Request.Context(), ownerID, req.DurationMinutes)
	if err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, FinishWorkoutResponse{SmartSetCandidates: candidates})
}

// CancelWorkout discards the active session entirely.
func (h *WorkoutHandler) CancelWorkout(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.workoutService.CancelWorkout(c.Request.Context(), ownerID); err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExercise appends an ad-hoc exercise to the active session.
func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	var req AddSessionExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	exerciseID, ok := bodyObjectID(c, req.ExerciseID, "exerciseId")
	if !ok {
		return
	}

	exercise, err := h.workoutService.AddExerciseToSession(c.Request.Context(), ownerID, exerciseID)
	if err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// RemoveExercise drops an exercise (and its sets) from the active session.
func (h *WorkoutHandler) RemoveExercise(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionExerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.RemoveExerciseFromSession(c.Request.Context(), ownerID, sessionExerciseID); err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddSet appends a placeholder set to an exercise of the active session.
func (h *WorkoutHandler) AddSet(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionExerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	set, err := h.workoutService.AddSet(c.Request.Context(), ownerID, sessionExerciseID)
	if err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, set)
}

// DeleteSet removes one set; survivors are renumbered densely from 1.
func (h *WorkoutHandler) DeleteSet(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionExerciseID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	setID, ok := pathObjectID(c, "setId")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteSet(c.Request.Context(), ownerID, sessionExerciseID, setID); err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateSet overwrites a set's weight and reps; omitted fields clear.
func (h *WorkoutHandler) UpdateSet(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	setID, ok := pathObjectID(c, "setId")
	if !ok {
		return
	}
	var req UpdateSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.workoutService.UpdateSet(c.Request.Context(), ownerID, setID, req.Weight, req.Reps); err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LogSetInput accepts raw field text, buffers it and commits the resolved values.
func (h *WorkoutHandler) LogSetInput(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	setID, ok := pathObjectID(c, "setId")
	if !ok {
		return
	}
	var req SetInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.workoutService.LogSetInput(c.Request.Context(), ownerID, setID, req.WeightText, req.RepsText); err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleSetDone flips a set's ephemeral completion flag.
func (h *WorkoutHandler) ToggleSetDone(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	setID, ok := pathObjectID(c, "setId")
	if !ok {
		return
	}

	done, err := h.workoutService.ToggleSetDone(ownerID, setID)
	if err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"done": done})
}

// GetSessions lists the user's completed session history.
func (h *WorkoutHandler) GetSessions(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	sessions, err := h.statsService.SessionHistory(c.Request.Context(), ownerID, 100)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve sessions")
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// DeleteSession removes a historical session and everything under it.
func (h *WorkoutHandler) DeleteSession(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.DeleteSession(c.Request.Context(), ownerID, sessionID); err != nil {
		respondWorkoutError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondWorkoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionAlreadyActive), errors.Is(err, service.ErrFinishInProgress):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNoActiveSession),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSetNotFound),
		errors.Is(err, service.ErrSessionExerciseNotFound),
		errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExerciseAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNoExercises):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

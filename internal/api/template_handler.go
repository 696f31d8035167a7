package api

import (
	"errors"
	"fmt"
	"net/http"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// TemplateHandler holds the template service dependency.
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// --- DTOs ---

type TemplateRequest struct {
	Name string `json:"name" binding:"required"`
}

type AppendExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

// --- Handler Methods ---

// CreateTemplate creates an empty workout template.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), ownerID, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create template")
		}
		return
	}
	c.JSON(http.StatusCreated, template)
}

// GetTemplates lists the user's templates with exercise counts and last-run dates.
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	templates, err := h.templateService.GetTemplates(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate returns one template with its ordered exercise entries.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	details, err := h.templateService.GetTemplateDetails(c.Request.Context(), ownerID, templateID)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// RenameTemplate changes a template's name.
func (h *TemplateHandler) RenameTemplate(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	template, err := h.templateService.RenameTemplate(c.Request.Context(), ownerID, templateID, req.Name)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// DeleteTemplate removes a template and its exercise entries.
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), ownerID, templateID); err != nil {
		respondTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AppendExercise adds an exercise to the end of the template's program.
func (h *TemplateHandler) AppendExercise(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	var req AppendExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	exerciseID, ok := bodyObjectID(c, req.ExerciseID, "exerciseId")
	if !ok {
		return
	}

	entry, err := h.templateService.AppendExercise(c.Request.Context(), ownerID, templateID, exerciseID)
	if err != nil {
		respondTemplateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// RemoveExercise deletes one entry from the template's program.
func (h *TemplateHandler) RemoveExercise(c *gin.Context) {
	ownerID, ok := requireUser(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	entryID, ok := pathObjectID(c, "entryId")
	if !ok {
		return
	}

	if err := h.templateService.RemoveExercise(c.Request.Context(), ownerID, templateID, entryID); err != nil {
		respondTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func respondTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound), errors.Is(err, service.ErrTemplateEntryMissing):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTemplateAccessDenied), errors.Is(err, service.ErrExerciseAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidationFailed):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

package service

import (
	"context"
	"errors"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound     = errors.New("workout template not found")
	ErrTemplateAccessDenied = errors.New("access denied to modify or delete this template")
	ErrTemplateEmpty        = errors.New("workout template has no exercises")
	ErrTemplateEntryMissing = errors.New("template exercise entry not found")
)

// TemplateDetails combines a template with its ordered exercises and the
// derived fields (exercise count, last session date).
type TemplateDetails struct {
	domain.WorkoutTemplate
	Exercises       []TemplateEntry `json:"exercises"`
	ExerciseCount   int             `json:"exerciseCount"`
	LastSessionDate *time.Time      `json:"lastSessionDate,omitempty"`
}

// TemplateEntry is one ordered exercise of a template, joined with the
// exercise definition needed to start a session from it.
type TemplateEntry struct {
	ID              primitive.ObjectID `json:"id"`
	ExerciseID      primitive.ObjectID `json:"exerciseId"`
	ExerciseName    string             `json:"exerciseName"`
	MuscleGroup     string             `json:"muscleGroup,omitempty"`
	DefaultSetCount int                `json:"defaultSetCount"`
	Order           int                `json:"order"`
}

// TemplateService manages workout templates and their ordered exercise lists.
type TemplateService interface {
	CreateTemplate(ctx context.Context, ownerID primitive.ObjectID, name string) (*domain.WorkoutTemplate, error)
	GetTemplates(ctx context.Context, ownerID primitive.ObjectID) ([]TemplateDetails, error)
	GetTemplateDetails(ctx context.Context, ownerID, templateID primitive.ObjectID) (*TemplateDetails, error)
	RenameTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID, name string) (*domain.WorkoutTemplate, error)
	DeleteTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) error
	AppendExercise(ctx context.Context, ownerID, templateID, exerciseID primitive.ObjectID) (*domain.TemplateExercise, error)
	RemoveExercise(ctx context.Context, ownerID, templateID, entryID primitive.ObjectID) error
}

// templateService implements the TemplateService interface.
type templateService struct {
	templateRepo         repository.TemplateRepository
	templateExerciseRepo repository.TemplateExerciseRepository
	exerciseRepo         repository.ExerciseRepository
	sessionRepo          repository.SessionRepository
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(
	templateRepo repository.TemplateRepository,
	templateExerciseRepo repository.TemplateExerciseRepository,
	exerciseRepo repository.ExerciseRepository,
	sessionRepo repository.SessionRepository,
) TemplateService {
	return &templateService{
		templateRepo:         templateRepo,
		templateExerciseRepo: templateExerciseRepo,
		exerciseRepo:         exerciseRepo,
		sessionRepo:          sessionRepo,
	}
}

// CreateTemplate creates a new, empty workout template.
func (s *templateService) CreateTemplate(ctx context.Context, ownerID primitive.ObjectID, name string) (*domain.WorkoutTemplate, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required to create a template")
	}

	template := &domain.WorkoutTemplate{
		OwnerID: ownerID,
		Name:    name,
	}

	templateID, err := s.templateRepo.Create(ctx, template)
	if err != nil {
		return nil, err
	}
	return s.templateRepo.GetByID(ctx, templateID)
}

// GetTemplates lists the user's templates with derived fields populated.
func (s *templateService) GetTemplates(ctx context.Context, ownerID primitive.ObjectID) ([]TemplateDetails, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID cannot be nil")
	}

	templates, err := s.templateRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	details := make([]TemplateDetails, 0, len(templates))
	for _, template := range templates {
		d, err := s.buildDetails(ctx, &template)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// GetTemplateDetails retrieves one template with its ordered exercises.
func (s *templateService) GetTemplateDetails(ctx context.Context, ownerID, templateID primitive.ObjectID) (*TemplateDetails, error) {
	template, err := s.getOwnedTemplate(ctx, ownerID, templateID)
	if err != nil {
		return nil, err
	}
	return s.buildDetails(ctx, template)
}

// buildDetails joins the template with its entries, exercise definitions and
// last completed session date. Each raw row is projected into a typed entry;
// an entry whose exercise was deleted keeps its position with an empty name.
func (s *templateService) buildDetails(ctx context.Context, template *domain.WorkoutTemplate) (*TemplateDetails, error) {
	entries, err := s.templateExerciseRepo.GetByTemplateID(ctx, template.ID)
	if err != nil {
		return nil, err
	}

	details := &TemplateDetails{
		WorkoutTemplate: *template,
		Exercises:       make([]TemplateEntry, 0, len(entries)),
		ExerciseCount:   len(entries),
	}

	for _, entry := range entries {
		te := TemplateEntry{
			ID:         entry.ID,
			ExerciseID: entry.ExerciseID,
			Order:      entry.Order,
		}
		exercise, err := s.exerciseRepo.GetByID(ctx, entry.ExerciseID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			// Exercise deleted since it was added; keep the entry visible.
		} else {
			te.ExerciseName = exercise.Name
			te.MuscleGroup = exercise.MuscleGroup
			te.DefaultSetCount = exercise.DefaultSetCount
		}
		details.Exercises = append(details.Exercises, te)
	}

	lastDate, err := s.sessionRepo.LastCompletedDateForTemplate(ctx, template.OwnerID, template.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	} else {
		details.LastSessionDate = &lastDate
	}

	return details, nil
}

// RenameTemplate renames a template, enforcing ownership.
func (s *templateService) RenameTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID, name string) (*domain.WorkoutTemplate, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	template, err := s.getOwnedTemplate(ctx, ownerID, templateID)
	if err != nil {
		return nil, err
	}

	template.Name = name
	if err := s.templateRepo.Update(ctx, template); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return template, nil
}

// DeleteTemplate removes the template and its exercise entries.
// Historical sessions started from the template are left untouched: they
// copied everything they need at start time.
func (s *templateService) DeleteTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) error {
	if _, err := s.getOwnedTemplate(ctx, ownerID, templateID); err != nil {
		return err
	}

	if err := s.templateExerciseRepo.DeleteByTemplateID(ctx, templateID); err != nil {
		return err
	}
	if err := s.templateRepo.Delete(ctx, templateID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

// AppendExercise adds an exercise at the end of the template. The order
// value is max(existing)+1 and is never reused, so removals leave gaps.
func (s *templateService) AppendExercise(ctx context.Context, ownerID, templateID, exerciseID primitive.ObjectID) (*domain.TemplateExercise, error) {
	if _, err := s.getOwnedTemplate(ctx, ownerID, templateID); err != nil {
		return nil, err
	}

	// The exercise must exist and belong to the same owner.
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if exercise.OwnerID != ownerID {
		return nil, ErrExerciseAccessDenied
	}

	maxOrder, err := s.templateExerciseRepo.MaxOrder(ctx, templateID)
	if err != nil {
		return nil, err
	}

	entry := &domain.TemplateExercise{
		TemplateID: templateID,
		ExerciseID: exerciseID,
		Order:      maxOrder + 1,
	}
	entryID, err := s.templateExerciseRepo.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = entryID
	return entry, nil
}

// RemoveExercise removes one entry from the template without renumbering
// the remaining entries.
func (s *templateService) RemoveExercise(ctx context.Context, ownerID, templateID, entryID primitive.ObjectID) error {
	if _, err := s.getOwnedTemplate(ctx, ownerID, templateID); err != nil {
		return err
	}

	err := s.templateExerciseRepo.Delete(ctx, entryID, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateEntryMissing
		}
		return err
	}
	return nil
}

// getOwnedTemplate fetches the template and enforces ownership.
func (s *templateService) getOwnedTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	if ownerID == primitive.NilObjectID || templateID == primitive.NilObjectID {
		return nil, errors.New("owner ID and template ID are required")
	}
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if template.OwnerID != ownerID {
		return nil, ErrTemplateAccessDenied
	}
	return template, nil
}

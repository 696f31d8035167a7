package service

import (
	"context"
	"errors"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound     = errors.New("exercise not found")
	ErrExerciseAccessDenied = errors.New("access denied to modify or delete this exercise")
	ErrValidationFailed     = errors.New("validation failed: missing or invalid fields")
)

const defaultSetCountFallback = 3

// ExerciseService manages a user's exercise library.
type ExerciseService interface {
	CreateExercise(ctx context.Context, ownerID primitive.ObjectID, name, muscleGroup string, defaultSetCount int) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, ownerID, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetExercisesByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Exercise, error)
	UpdateExercise(ctx context.Context, ownerID, exerciseID primitive.ObjectID, name, muscleGroup string, defaultSetCount int) (*domain.Exercise, error)
	// UpdateDefaultSets persists an accepted smart-set suggestion.
	UpdateDefaultSets(ctx context.Context, ownerID, exerciseID primitive.ObjectID, newDefault int) error
	DeleteExercise(ctx context.Context, ownerID, exerciseID primitive.ObjectID) error
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

// CreateExercise handles the creation of a new exercise in the user's library.
func (s *exerciseService) CreateExercise(ctx context.Context, ownerID primitive.ObjectID, name, muscleGroup string, defaultSetCount int) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required to create an exercise")
	}
	if defaultSetCount <= 0 {
		defaultSetCount = defaultSetCountFallback
	}

	exercise := &domain.Exercise{
		OwnerID:         ownerID,
		Name:            name,
		MuscleGroup:     muscleGroup,
		DefaultSetCount: defaultSetCount,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	// Fetch again to get repository-populated timestamps
	return s.exerciseRepo.GetByID(ctx, exerciseID)
}

// GetExerciseByID retrieves a single exercise, enforcing ownership.
func (s *exerciseService) GetExerciseByID(ctx context.Context, ownerID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
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
	return exercise, nil
}

// GetExercisesByOwner retrieves the user's whole exercise library.
func (s *exerciseService) GetExercisesByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Exercise, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID cannot be nil")
	}
	exercises, err := s.exerciseRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return exercises, nil
}

// UpdateExercise handles updating an existing exercise, ensuring ownership.
func (s *exerciseService) UpdateExercise(ctx context.Context, ownerID, exerciseID primitive.ObjectID, name, muscleGroup string, defaultSetCount int) (*domain.Exercise, error) {
	if name == "" {
		return nil, ErrValidationFailed
	}
	if ownerID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return nil, errors.New("owner ID and exercise ID are required")
	}

	existing, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	if existing.OwnerID != ownerID {
		return nil, ErrExerciseAccessDenied
	}

	existing.Name = name
	existing.MuscleGroup = muscleGroup
	if defaultSetCount > 0 {
		existing.DefaultSetCount = defaultSetCount
	}

	err = s.exerciseRepo.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return existing, nil
}

// UpdateDefaultSets persists a new default set count, typically after the
// user accepted a smart-set suggestion at workout finish.
func (s *exerciseService) UpdateDefaultSets(ctx context.Context, ownerID, exerciseID primitive.ObjectID, newDefault int) error {
	if newDefault <= 0 {
		return ErrValidationFailed
	}
	if ownerID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("owner ID and exercise ID are required")
	}

	err := s.exerciseRepo.UpdateDefaultSetCount(ctx, exerciseID, ownerID, newDefault)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

// DeleteExercise handles deleting an exercise, ensuring ownership.
// Referential integrity towards sessions and templates is the store's
// concern; this layer does not chase references.
func (s *exerciseService) DeleteExercise(ctx context.Context, ownerID, exerciseID primitive.ObjectID) error {
	if ownerID == primitive.NilObjectID || exerciseID == primitive.NilObjectID {
		return errors.New("owner ID and exercise ID are required")
	}

	// The repository's Delete filter includes the owner, enforcing ownership
	// at the DB level.
	err := s.exerciseRepo.Delete(ctx, exerciseID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

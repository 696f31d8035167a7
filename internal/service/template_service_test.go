package service

import (
	"context"
	"testing"
	"time"

	"liftlog/workout-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type templateFixture struct {
	templates       *stubTemplateRepo
	templateEntries *stubTemplateExerciseRepo
	exercises       *stubExerciseRepo
	sessions        *stubSessionRepo
	svc             TemplateService
	ownerID         primitive.ObjectID
}

func newTemplateFixture() *templateFixture {
	templates := newStubTemplateRepo()
	entries := newStubTemplateExerciseRepo()
	exercises := newStubExerciseRepo()
	sessions := newStubSessionRepo()
	return &templateFixture{
		templates:       templates,
		templateEntries: entries,
		exercises:       exercises,
		sessions:        sessions,
		svc:             NewTemplateService(templates, entries, exercises, sessions),
		ownerID:         primitive.NewObjectID(),
	}
}

func TestTemplateOrderGrowsPastRemovedEntries(t *testing.T) {
	f := newTemplateFixture()
	ctx := context.Background()

	template, err := f.svc.CreateTemplate(ctx, f.ownerID, "Push Day")
	require.NoError(t, err)

	a := f.exercises.seed(f.ownerID, "Bench Press", "chest", 3)
	b := f.exercises.seed(f.ownerID, "Overhead Press", "shoulders", 3)
	c := f.exercises.seed(f.ownerID, "Dips", "chest", 3)

	first, err := f.svc.AppendExercise(ctx, f.ownerID, template.ID, a.ID)
	require.NoError(t, err)
	second, err := f.svc.AppendExercise(ctx, f.ownerID, template.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 2, second.Order)

	// Removing the last entry must not recycle its order value.
	require.NoError(t, f.svc.RemoveExercise(ctx, f.ownerID, template.ID, second.ID))
	third, err := f.svc.AppendExercise(ctx, f.ownerID, template.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Order)

	// Removing an interior entry leaves a gap; order stays monotonic.
	require.NoError(t, f.svc.RemoveExercise(ctx, f.ownerID, template.ID, first.ID))
	fourth, err := f.svc.AppendExercise(ctx, f.ownerID, template.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, fourth.Order)

	details, err := f.svc.GetTemplateDetails(ctx, f.ownerID, template.ID)
	require.NoError(t, err)
	require.Len(t, details.Exercises, 2)
	assert.Equal(t, third.ID, details.Exercises[0].ID)
	assert.Equal(t, fourth.ID, details.Exercises[1].ID)
	assert.Less(t, details.Exercises[0].Order, details.Exercises[1].Order)
}

func TestTemplateDetailsJoinsExercises(t *testing.T) {
	f := newTemplateFixture()
	ctx := context.Background()

	template, err := f.svc.CreateTemplate(ctx, f.ownerID, "Legs")
	require.NoError(t, err)
	squat := f.exercises.seed(f.ownerID, "Squat", "legs", 5)
	entry, err := f.svc.AppendExercise(ctx, f.ownerID, template.ID, squat.ID)
	require.NoError(t, err)

	details, err := f.svc.GetTemplateDetails(ctx, f.ownerID, template.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, details.ExerciseCount)
	assert.Nil(t, details.LastSessionDate)
	require.Len(t, details.Exercises, 1)
	assert.Equal(t, "Squat", details.Exercises[0].ExerciseName)
	assert.Equal(t, 5, details.Exercises[0].DefaultSetCount)

	// A completed session stamps the last-run date.
	sessionID := primitive.NewObjectID()
	ranAt := time.Now().UTC().Add(-48 * time.Hour)
	f.sessions.sessions[sessionID] = &domain.WorkoutSession{
		ID:         sessionID,
		OwnerID:    f.ownerID,
		TemplateID: template.ID,
		Date:       ranAt,
		Status:     domain.StatusCompleted,
	}
	details, err = f.svc.GetTemplateDetails(ctx, f.ownerID, template.ID)
	require.NoError(t, err)
	require.NotNil(t, details.LastSessionDate)
	assert.True(t, details.LastSessionDate.Equal(ranAt))

	// A deleted exercise keeps its slot with an empty name.
	require.NoError(t, f.exercises.Delete(ctx, squat.ID, f.ownerID))
	details, err = f.svc.GetTemplateDetails(ctx, f.ownerID, template.ID)
	require.NoError(t, err)
	require.Len(t, details.Exercises, 1)
	assert.Equal(t, entry.ID, details.Exercises[0].ID)
	assert.Equal(t, "", details.Exercises[0].ExerciseName)
}

func TestTemplateOwnershipEnforced(t *testing.T) {
	f := newTemplateFixture()
	ctx := context.Background()
	stranger := primitive.NewObjectID()

	template, err := f.svc.CreateTemplate(ctx, f.ownerID, "Pull Day")
	require.NoError(t, err)

	_, err = f.svc.GetTemplateDetails(ctx, stranger, template.ID)
	assert.ErrorIs(t, err, ErrTemplateAccessDenied)

	_, err = f.svc.RenameTemplate(ctx, stranger, template.ID, "Mine Now")
	assert.ErrorIs(t, err, ErrTemplateAccessDenied)

	err = f.svc.DeleteTemplate(ctx, stranger, template.ID)
	assert.ErrorIs(t, err, ErrTemplateAccessDenied)

	// A foreign exercise cannot be appended either.
	foreign := f.exercises.seed(stranger, "Row", "back", 3)
	_, err = f.svc.AppendExercise(ctx, f.ownerID, template.ID, foreign.ID)
	assert.ErrorIs(t, err, ErrExerciseAccessDenied)
}

func TestDeleteTemplateRemovesEntries(t *testing.T) {
	f := newTemplateFixture()
	ctx := context.Background()

	template, err := f.svc.CreateTemplate(ctx, f.ownerID, "Full Body")
	require.NoError(t, err)
	exercise := f.exercises.seed(f.ownerID, "Deadlift", "back", 3)
	_, err = f.svc.AppendExercise(ctx, f.ownerID, template.ID, exercise.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTemplate(ctx, f.ownerID, template.ID))
	assert.Empty(t, f.templates.templates)
	assert.Empty(t, f.templateEntries.entries)

	_, err = f.svc.GetTemplateDetails(ctx, f.ownerID, template.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

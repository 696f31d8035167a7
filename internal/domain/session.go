package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for the workout session lifecycle
type SessionStatus string

const (
	// StatusActive means the session is the user's live workout.
	StatusActive SessionStatus = "active"
	// StatusCompleted is terminal: a completed session is never reopened.
	StatusCompleted SessionStatus = "completed"
)

// WorkoutSession is one workout run from a template. Status transitions
// only active -> completed (finish); cancel deletes the row outright.
type WorkoutSession struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID         primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	TemplateID      primitive.ObjectID `bson:"templateId" json:"templateId"`
	Date            time.Time          `bson:"date" json:"date"`
	DurationMinutes int                `bson:"durationMinutes" json:"durationMinutes"`
	Status          SessionStatus      `bson:"status" json:"status"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SessionExercise is one exercise performed in a session. It is created
// by copying from the template (or ad-hoc addition) at session-start time
// and does not reference the template afterward. ExerciseName is
// denormalized at creation and not re-synced if the Exercise is renamed.
type SessionExercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID    primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	ExerciseID   primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	ExerciseName string             `bson:"exerciseName" json:"exerciseName"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// WorkoutSet is a single logged set. Weight and Reps are nullable:
// a freshly created placeholder set has both at nil. SetNumber is 1-based
// and dense (no gaps) within its exercise; renumbered eagerly on deletion.
type WorkoutSet struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionExerciseID primitive.ObjectID `bson:"sessionExerciseId" json:"sessionExerciseId"`
	SetNumber         int                `bson:"setNumber" json:"setNumber"`
	Weight            *float64           `bson:"weight" json:"weight"`
	Reps              *int               `bson:"reps" json:"reps"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

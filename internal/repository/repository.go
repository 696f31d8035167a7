package repository

import (
	"context"
	"time"

	"liftlog/workout-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// SetFact is the typed projection of a join-shaped analytics query:
// one logged set together with its exercise identity and the date and
// status context of the session it belongs to. Queries producing
// SetFacts are always restricted to completed sessions of one owner.
type SetFact struct {
	ExerciseID   primitive.ObjectID `bson:"exerciseId"`
	ExerciseName string             `bson:"exerciseName"`
	Weight       *float64           `bson:"weight"`
	Reps         *int               `bson:"reps"`
	SessionDate  time.Time          `bson:"sessionDate"`
}

// SessionSummary projects a completed session joined with its template name.
type SessionSummary struct {
	SessionID       primitive.ObjectID `bson:"_id"`
	TemplateName    string             `bson:"templateName"`
	Date            time.Time          `bson:"date"`
	DurationMinutes int                `bson:"durationMinutes"`
}

// SetNumberAssignment pairs a set id with its new dense set number,
// used when renumbering after a deletion.
type SetNumberAssignment struct {
	SetID     primitive.ObjectID
	SetNumber int
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	// UpdateDefaultSetCount persists an accepted smart-set suggestion.
	// The filter includes ownerID so a user can only touch their own exercises.
	UpdateDefaultSetCount(ctx context.Context, id, ownerID primitive.ObjectID, defaultSetCount int) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
}

// TemplateRepository defines the interface for workout template data.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.WorkoutTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.WorkoutTemplate, error)
	Update(ctx context.Context, template *domain.WorkoutTemplate) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
}

// TemplateExerciseRepository manages the ordered exercise entries of a template.
type TemplateExerciseRepository interface {
	Create(ctx context.Context, entry *domain.TemplateExercise) (primitive.ObjectID, error)
	GetByTemplateID(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateExercise, error)
	// MaxOrder returns the highest order value in the template, or 0 if empty.
	MaxOrder(ctx context.Context, templateID primitive.ObjectID) (int, error)
	Delete(ctx context.Context, id, templateID primitive.ObjectID) error
	DeleteByTemplateID(ctx context.Context, templateID primitive.ObjectID) error
}

// SessionRepository defines the interface for workout session data.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	// Finish flips status to completed and records the duration.
	Finish(ctx context.Context, id, ownerID primitive.ObjectID, durationMinutes int) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
	GetCompletedByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]domain.WorkoutSession, error)
	GetCompletedInRange(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]domain.WorkoutSession, error)
	// GetLastCompleted joins the most recent completed session with its template name.
	GetLastCompleted(ctx context.Context, ownerID primitive.ObjectID) (*SessionSummary, error)
	// LastCompletedDateForTemplate returns the date of the template's most
	// recent completed session, or ErrNotFound if it was never run.
	LastCompletedDateForTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) (time.Time, error)
}

// SessionExerciseRepository manages per-session exercise rows.
type SessionExerciseRepository interface {
	Create(ctx context.Context, sessionExercise *domain.SessionExercise) (primitive.ObjectID, error)
	GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionExercise, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteBySessionID(ctx context.Context, sessionID primitive.ObjectID) error
}

// SetRepository manages logged sets, including the join-shaped analytics
// queries the aggregation engine is built on.
type SetRepository interface {
	Create(ctx context.Context, set *domain.WorkoutSet) (primitive.ObjectID, error)
	GetBySessionExerciseID(ctx context.Context, sessionExerciseID primitive.ObjectID) ([]domain.WorkoutSet, error)
	// Update overwrites both weight and reps unconditionally; nil clears a field.
	Update(ctx context.Context, id primitive.ObjectID, weight *float64, reps *int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteBySessionExerciseID(ctx context.Context, sessionExerciseID primitive.ObjectID) error
	DeleteBySessionExerciseIDs(ctx context.Context, sessionExerciseIDs []primitive.ObjectID) error
	// Renumber applies the given dense set numbers in one bulk write.
	Renumber(ctx context.Context, assignments []SetNumberAssignment) error

	// MaxWeightForExercise returns the maximum logged weight for the exercise
	// across all completed sessions of the owner, or nil if no weighted set
	// exists. If before is non-nil, only sessions dated strictly earlier count.
	MaxWeightForExercise(ctx context.Context, ownerID, exerciseID primitive.ObjectID, before *time.Time) (*float64, error)
	// CompletedSetFacts returns every set belonging to completed sessions of
	// the owner with session date in [from, to).
	CompletedSetFacts(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]SetFact, error)
	// TopWeightFacts returns weighted sets of completed sessions ordered by
	// weight descending, capped at limit rows.
	TopWeightFacts(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]SetFact, error)
}

// BodyMetricRepository defines the interface for body metric data.
type BodyMetricRepository interface {
	Create(ctx context.Context, metric *domain.BodyMetric) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BodyMetric, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.BodyMetric, error)
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
}

package mongo

import (
	"context"
	"errors"
	"time"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionExerciseCollectionName = "session_exercises"

// mongoSessionExerciseRepository implements repository.SessionExerciseRepository
type mongoSessionExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionExerciseRepository creates a new SessionExercise repository.
func NewMongoSessionExerciseRepository(db *mongo.Database) repository.SessionExerciseRepository {
	return &mongoSessionExerciseRepository{
		collection: db.Collection(sessionExerciseCollectionName),
	}
}

// Create inserts a new session exercise row.
func (r *mongoSessionExerciseRepository) Create(ctx context.Context, sessionExercise *domain.SessionExercise) (primitive.ObjectID, error) {
	if sessionExercise.SessionID == primitive.NilObjectID || sessionExercise.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session ID and exercise ID are required")
	}

	sessionExercise.ID = primitive.NewObjectID()
	sessionExercise.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, sessionExercise)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session exercise ID")
	}
	return insertedID, nil
}

// GetBySessionID retrieves all exercise rows of a session in creation order.
func (r *mongoSessionExerciseRepository) GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.SessionExercise, error) {
	var sessionExercises []domain.SessionExercise
	filter := bson.M{"sessionId": sessionID}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessionExercises); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return sessionExercises, nil
}

// Delete removes a single session exercise row.
func (r *mongoSessionExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteBySessionID removes all exercise rows of a session (cancel/delete cascade).
func (r *mongoSessionExerciseRepository) DeleteBySessionID(ctx context.Context, sessionID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}

// EnsureSessionExerciseIndexes creates necessary indexes for the session_exercises collection.
func EnsureSessionExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

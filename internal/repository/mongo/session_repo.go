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

const sessionCollectionName = "workout_sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new WorkoutSession repository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new workout session.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.OwnerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session owner ID is required")
	}
	if session.Status == "" {
		session.Status = domain.StatusActive
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if session.Date.IsZero() {
		session.Date = now
	}
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Finish flips an active session to completed and stores its duration.
// The filter requires status=active, so a completed session can never be
// finished twice or otherwise reopened.
func (r *mongoSessionRepository) Finish(ctx context.Context, id, ownerID primitive.ObjectID, durationMinutes int) error {
	filter := bson.M{
		"_id":     id,
		"ownerId": ownerID,
		"status":  domain.StatusActive,
	}
	update := bson.M{
		"$set": bson.M{
			"status":          domain.StatusCompleted,
			"durationMinutes": durationMinutes,
			"updatedAt":       time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a session row, ensuring it belongs to the specified owner.
// Child rows (session exercises, sets) are deleted separately, before this,
// to respect foreign-key dependency direction.
func (r *mongoSessionRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	filter := bson.M{
		"_id":     id,
		"ownerId": ownerID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetCompletedByOwner retrieves completed sessions of a user, newest first.
func (r *mongoSessionRepository) GetCompletedByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]domain.WorkoutSession, error) {
	var sessions []domain.WorkoutSession
	filter := bson.M{"ownerId": ownerID, "status": domain.StatusCompleted}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// GetCompletedInRange retrieves completed sessions with date in [from, to).
func (r *mongoSessionRepository) GetCompletedInRange(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]domain.WorkoutSession, error) {
	var sessions []domain.WorkoutSession
	filter := bson.M{
		"ownerId": ownerID,
		"status":  domain.StatusCompleted,
		"date":    bson.M{"$gte": from, "$lt": to},
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// GetLastCompleted returns the most recent completed session joined with
// its template name via $lookup. Sessions whose template was deleted in
// the meantime surface with an empty template name rather than an error.
func (r *mongoSessionRepository) GetLastCompleted(ctx context.Context, ownerID primitive.ObjectID) (*repository.SessionSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ownerId": ownerID, "status": domain.StatusCompleted}}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$lookup", Value: bson.M{
			"from":         templateCollectionName,
			"localField":   "templateId",
			"foreignField": "_id",
			"as":           "template",
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":             1,
			"date":            1,
			"durationMinutes": 1,
			"templateName": bson.M{"$ifNull": bson.A{
				bson.M{"$arrayElemAt": bson.A{"$template.name", 0}},
				"",
			}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var summaries []repository.SessionSummary
	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, repository.ErrNotFound
	}
	return &summaries[0], nil
}

// LastCompletedDateForTemplate returns the date of the template's most recent
// completed session.
func (r *mongoSessionRepository) LastCompletedDateForTemplate(ctx context.Context, ownerID, templateID primitive.ObjectID) (time.Time, error) {
	filter := bson.M{
		"ownerId":    ownerID,
		"templateId": templateID,
		"status":     domain.StatusCompleted,
	}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return time.Time{}, repository.ErrNotFound
		}
		return time.Time{}, err
	}
	return session.Date, nil
}

// EnsureSessionIndexes creates necessary indexes for the workout_sessions collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// The dominant query shape: completed sessions of one owner by date
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "status", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "templateId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

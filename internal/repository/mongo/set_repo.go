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

const setCollectionName = "sets"

// mongoSetRepository implements repository.SetRepository
type mongoSetRepository struct {
	collection *mongo.Collection
}

// NewMongoSetRepository creates a new WorkoutSet repository.
func NewMongoSetRepository(db *mongo.Database) repository.SetRepository {
	return &mongoSetRepository{
		collection: db.Collection(setCollectionName),
	}
}

// Create inserts a new set row. Weight and reps may be nil (placeholder set).
func (r *mongoSetRepository) Create(ctx context.Context, set *domain.WorkoutSet) (primitive.ObjectID, error) {
	if set.SessionExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session exercise ID is required")
	}
	if set.SetNumber < 1 {
		return primitive.NilObjectID, errors.New("set number must be positive")
	}

	set.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	set.CreatedAt = now
	set.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, set)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted set ID")
	}
	return insertedID, nil
}

// GetBySessionExerciseID retrieves the sets of one exercise ordered by set number.
func (r *mongoSetRepository) GetBySessionExerciseID(ctx context.Context, sessionExerciseID primitive.ObjectID) ([]domain.WorkoutSet, error) {
	var sets []domain.WorkoutSet
	filter := bson.M{"sessionExerciseId": sessionExerciseID}

	findOptions := options.Find().SetSort(bson.D{{Key: "setNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return sets, nil
}

// Update overwrites both weight and reps unconditionally. A nil value is
// stored as null, clearing the field; there is no partial update on purpose
// so repeated calls with the same arguments are idempotent.
func (r *mongoSetRepository) Update(ctx context.Context, id primitive.ObjectID, weight *float64, reps *int) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"weight":    weight,
			"reps":      reps,
			"updatedAt": time.Now().UTC(),
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

// Delete removes a single set row.
func (r *mongoSetRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteBySessionExerciseID removes all sets of one session exercise.
func (r *mongoSetRepository) DeleteBySessionExerciseID(ctx context.Context, sessionExerciseID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionExerciseId": sessionExerciseID})
	return err
}

// DeleteBySessionExerciseIDs removes all sets of the given session exercises
// in one call (session cancel/delete cascade).
func (r *mongoSetRepository) DeleteBySessionExerciseIDs(ctx context.Context, sessionExerciseIDs []primitive.ObjectID) error {
	if len(sessionExerciseIDs) == 0 {
		return nil
	}
	filter := bson.M{"sessionExerciseId": bson.M{"$in": sessionExerciseIDs}}
	_, err := r.collection.DeleteMany(ctx, filter)
	return err
}

// Renumber applies dense set numbers in one ordered bulk write. Used after a
// deletion so the surviving sets of an exercise are numbered 1..N again.
func (r *mongoSetRepository) Renumber(ctx context.Context, assignments []repository.SetNumberAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(assignments))
	for _, a := range assignments {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": a.SetID}).
			SetUpdate(bson.M{"$set": bson.M{"setNumber": a.SetNumber, "updatedAt": now}}))
	}

	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true))
	return err
}

// factLookupStages joins a set row to its session exercise and session,
// producing the flat shape repository.SetFact projects.
func factLookupStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         sessionExerciseCollectionName,
			"localField":   "sessionExerciseId",
			"foreignField": "_id",
			"as":           "sessionExercise",
		}}},
		{{Key: "$unwind", Value: "$sessionExercise"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         sessionCollectionName,
			"localField":   "sessionExercise.sessionId",
			"foreignField": "_id",
			"as":           "session",
		}}},
		{{Key: "$unwind", Value: "$session"}},
	}
}

// factProjection flattens the joined document into the SetFact shape.
func factProjection() bson.D {
	return bson.D{{Key: "$project", Value: bson.M{
		"_id":          0,
		"exerciseId":   "$sessionExercise.exerciseId",
		"exerciseName": "$sessionExercise.exerciseName",
		"weight":       1,
		"reps":         1,
		"sessionDate":  "$session.date",
	}}}
}

// MaxWeightForExercise returns the maximum weight logged for the exercise
// across completed sessions of the owner. A nil result means no weighted set
// qualifies. When before is set, only sessions strictly earlier count; that
// is the "prior personal record" variant.
func (r *mongoSetRepository) MaxWeightForExercise(ctx context.Context, ownerID, exerciseID primitive.ObjectID, before *time.Time) (*float64, error) {
	sessionMatch := bson.M{
		"session.ownerId": ownerID,
		"session.status":  domain.StatusCompleted,
	}
	if before != nil {
		sessionMatch["session.date"] = bson.M{"$lt": *before}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"weight": bson.M{"$ne": nil}}}},
	}
	pipeline = append(pipeline, factLookupStages()...)
	pipeline = append(pipeline,
		bson.D{{Key: "$match", Value: bson.M{"sessionExercise.exerciseId": exerciseID}}},
		bson.D{{Key: "$match", Value: sessionMatch}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":       nil,
			"maxWeight": bson.M{"$max": "$weight"},
		}}},
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		MaxWeight *float64 `bson:"maxWeight"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0].MaxWeight, nil
}

// CompletedSetFacts returns every set of the owner's completed sessions with
// session date in [from, to), as flat typed facts.
func (r *mongoSetRepository) CompletedSetFacts(ctx context.Context, ownerID primitive.ObjectID, from, to time.Time) ([]repository.SetFact, error) {
	pipeline := factLookupStages()
	pipeline = append(pipeline,
		bson.D{{Key: "$match", Value: bson.M{
			"session.ownerId": ownerID,
			"session.status":  domain.StatusCompleted,
			"session.date":    bson.M{"$gte": from, "$lt": to},
		}}},
		factProjection(),
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var facts []repository.SetFact
	if err = cursor.All(ctx, &facts); err != nil {
		return nil, err
	}
	return facts, nil
}

// TopWeightFacts returns weighted sets of the owner's completed sessions in
// weight-descending order, capped at limit rows. The cap bounds the payload
// for power users at the cost of an approximate all-time top list.
func (r *mongoSetRepository) TopWeightFacts(ctx context.Context, ownerID primitive.ObjectID, limit int64) ([]repository.SetFact, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"weight": bson.M{"$ne": nil}}}},
	}
	pipeline = append(pipeline, factLookupStages()...)
	pipeline = append(pipeline,
		bson.D{{Key: "$match", Value: bson.M{
			"session.ownerId": ownerID,
			"session.status":  domain.StatusCompleted,
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "weight", Value: -1}}}},
		bson.D{{Key: "$limit", Value: limit}},
		factProjection(),
	)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var facts []repository.SetFact
	if err = cursor.All(ctx, &facts); err != nil {
		return nil, err
	}
	return facts, nil
}

// EnsureSetIndexes creates necessary indexes for the sets collection.
func EnsureSetIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionExerciseId", Value: 1}, {Key: "setNumber", Value: 1}},
			Options: options.Index(),
		},
		{
			// Supports the weight-descending top-PR scan
			Keys:    bson.D{{Key: "weight", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

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

const bodyMetricCollectionName = "body_metrics"

// mongoBodyMetricRepository implements repository.BodyMetricRepository
type mongoBodyMetricRepository struct {
	collection *mongo.Collection
}

// NewMongoBodyMetricRepository creates a new BodyMetric repository.
func NewMongoBodyMetricRepository(db *mongo.Database) repository.BodyMetricRepository {
	return &mongoBodyMetricRepository{
		collection: db.Collection(bodyMetricCollectionName),
	}
}

// Create inserts a new body metric entry.
func (r *mongoBodyMetricRepository) Create(ctx context.Context, metric *domain.BodyMetric) (primitive.ObjectID, error) {
	if metric.OwnerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("body metric owner ID is required")
	}

	metric.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	if metric.Date.IsZero() {
		metric.Date = now
	}
	metric.CreatedAt = now

	result, err := r.collection.InsertOne(ctx, metric)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted body metric ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single body metric entry.
func (r *mongoBodyMetricRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BodyMetric, error) {
	var metric domain.BodyMetric
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&metric)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &metric, nil
}

// GetByOwnerID retrieves the full metric time series of a user, newest first.
func (r *mongoBodyMetricRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.BodyMetric, error) {
	var metrics []domain.BodyMetric
	filter := bson.M{"ownerId": ownerID}

	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &metrics); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return metrics, nil
}

// Delete removes a body metric entry, ensuring ownership.
func (r *mongoBodyMetricRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
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

// EnsureBodyMetricIndexes creates necessary indexes for the body_metrics collection.
func EnsureBodyMetricIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

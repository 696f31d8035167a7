package mongo

import (
	"context"
	"errors"

	"liftlog/workout-app/internal/domain"
	"liftlog/workout-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const templateExerciseCollectionName = "template_exercises"

// mongoTemplateExerciseRepository implements repository.TemplateExerciseRepository
type mongoTemplateExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoTemplateExerciseRepository creates a new TemplateExercise repository.
func NewMongoTemplateExerciseRepository(db *mongo.Database) repository.TemplateExerciseRepository {
	return &mongoTemplateExerciseRepository{
		collection: db.Collection(templateExerciseCollectionName),
	}
}

// Create inserts a new template exercise entry.
func (r *mongoTemplateExerciseRepository) Create(ctx context.Context, entry *domain.TemplateExercise) (primitive.ObjectID, error) {
	if entry.TemplateID == primitive.NilObjectID || entry.ExerciseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template ID and exercise ID are required")
	}

	entry.ID = primitive.NewObjectID()

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted template exercise ID")
	}
	return insertedID, nil
}

// GetByTemplateID retrieves the entries of a template sorted by their order.
func (r *mongoTemplateExerciseRepository) GetByTemplateID(ctx context.Context, templateID primitive.ObjectID) ([]domain.TemplateExercise, error) {
	var entries []domain.TemplateExercise
	filter := bson.M{"templateId": templateID}

	findOptions := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// MaxOrder returns the highest order value within the template, or 0 if the
// template has no entries. Order values are append-only and never reused.
func (r *mongoTemplateExerciseRepository) MaxOrder(ctx context.Context, templateID primitive.ObjectID) (int, error) {
	filter := bson.M{"templateId": templateID}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})

	var entry domain.TemplateExercise
	err := r.collection.FindOne(ctx, filter, findOptions).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return entry.Order, nil
}

// Delete removes one entry from a template.
func (r *mongoTemplateExerciseRepository) Delete(ctx context.Context, id, templateID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "templateId": templateID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByTemplateID removes all entries of a template (template deletion cascade).
func (r *mongoTemplateExerciseRepository) DeleteByTemplateID(ctx context.Context, templateID primitive.ObjectID) error {
	filter := bson.M{"templateId": templateID}
	_, err := r.collection.DeleteMany(ctx, filter)
	return err
}

// EnsureTemplateExerciseIndexes creates necessary indexes for the template_exercises collection.
func EnsureTemplateExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "templateId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

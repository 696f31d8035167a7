package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutTemplate is a named, ordered list of exercises a user intends
// to repeat. The exercise list itself lives in TemplateExercise rows.
type WorkoutTemplate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TemplateExercise joins an Exercise into a WorkoutTemplate.
// Order is a strictly increasing integer assigned at append time and is
// NOT renumbered when another entry is removed; gaps are expected.
type TemplateExercise struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TemplateID primitive.ObjectID `bson:"templateId" json:"templateId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Order      int                `bson:"order" json:"order"`
}

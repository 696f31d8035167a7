package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in a user's library.
type Exercise struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID primitive.ObjectID `bson:"ownerId" json:"ownerId"` // Link to the User who owns this exercise

	Name        string `bson:"name" json:"name"`
	MuscleGroup string `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"` // e.g., "Chest", "Legs", "Back"

	// DefaultSetCount is the number of placeholder sets created for this
	// exercise when a workout session starts. Updated when the user accepts
	// a smart-set suggestion after finishing a workout.
	DefaultSetCount int `bson:"defaultSetCount" json:"defaultSetCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

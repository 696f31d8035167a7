package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BodyMetric is one point of the user's body measurement time series.
// Independent of workout sessions. The progress photo, if any, lives in
// object storage; PhotoObjectKey is the bucket key, never exposed raw.
type BodyMetric struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID        primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Date           time.Time          `bson:"date" json:"date"`
	Weight         *float64           `bson:"weight" json:"weight"`
	Waist          *float64           `bson:"waist" json:"waist"`
	PhotoObjectKey string             `bson:"photoObjectKey,omitempty" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

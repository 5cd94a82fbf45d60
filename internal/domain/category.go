package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryHomepage is the banner shown for a category on the storefront homepage.
type CategoryHomepage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	MainImage   []string           `bson:"mainImage" json:"mainImage"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

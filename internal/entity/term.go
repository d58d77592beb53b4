package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Term is a catalog taxonomy entry. Categories, product types, tags and
// frameworks all share this shape; each kind lives in its own collection.
type Term struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Slug      string             `bson:"slug" json:"slug"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const CommentsCollection = "comments"

// Comment is immutable once created; there is no edit or delete flow,
// comments only disappear when their audio is removed.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Content   string             `bson:"content" json:"content"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Audio     primitive.ObjectID `bson:"audio" json:"audio"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	AuthorInfo *AuthorInfo `bson:"-" json:"authorInfo,omitempty"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const AudiosCollection = "audios"

// ViewRecord marks that a user has played an audio at least once.
// A user id appears at most once in Audio.ViewedBy.
type ViewRecord struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// Audio is a single uploaded track with its engagement state embedded.
type Audio struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Author       primitive.ObjectID   `bson:"author" json:"author"`
	Title        string               `bson:"title" json:"title"`
	Description  string               `bson:"description" json:"description"`
	Category     string               `bson:"category" json:"category"`
	ThumbnailURL string               `bson:"thumbnailUrl" json:"thumbnailUrl"`
	AudioURL     string               `bson:"audioUrl" json:"audioUrl"`
	Tags         []string             `bson:"tags" json:"tags"`
	Comments     []primitive.ObjectID `bson:"comments" json:"comments"`
	Likes        []primitive.ObjectID `bson:"likes" json:"likes"`
	ViewCount    int64                `bson:"viewCount" json:"viewCount"`
	ViewedBy     []ViewRecord         `bson:"viewedBy" json:"viewedBy"`
	Duration     float64              `bson:"duration,omitempty" json:"duration,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`

	// AuthorInfo is resolved at the service boundary, never stored.
	AuthorInfo *AuthorInfo `bson:"-" json:"authorInfo,omitempty"`
	// CommentList carries populated comments on single-audio reads.
	CommentList []Comment `bson:"-" json:"commentList,omitempty"`
}

// AuthorInfo is the only author data exposed alongside content.
type AuthorInfo struct {
	ID           primitive.ObjectID `json:"id"`
	Name         string             `json:"name"`
	ProfileImage string             `json:"profileImage"`
}

// LikedBy reports membership of the user in the like set.
func (a *Audio) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range a.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ViewedByUser reports whether the user already has a view record.
func (a *Audio) ViewedByUser(userID primitive.ObjectID) bool {
	for _, v := range a.ViewedBy {
		if v.UserID == userID {
			return true
		}
	}
	return false
}

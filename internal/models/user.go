package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const UsersCollection = "users"

// SavedAudio is a bookmark entry on a user document.
type SavedAudio struct {
	AudioID primitive.ObjectID `bson:"audioId" json:"audioId"`
	SavedAt time.Time          `bson:"savedAt" json:"savedAt"`

	Audio *AudioSummary `bson:"-" json:"audio,omitempty"`
}

// LikedAudio mirrors membership in an audio's like set.
type LikedAudio struct {
	AudioID primitive.ObjectID `bson:"audioId" json:"audioId"`
	LikedAt time.Time          `bson:"likedAt" json:"likedAt"`

	Audio *AudioSummary `bson:"-" json:"audio,omitempty"`
}

// AudioSummary is the slice of an audio attached to saved/liked entries.
type AudioSummary struct {
	ID           primitive.ObjectID `json:"id"`
	Title        string             `json:"title"`
	ThumbnailURL string             `json:"thumbnailUrl"`
}

// User is an account document. The password hash is never serialized to
// clients. Each audio id appears at most once in SavedAudios and at most
// once in LikedAudios.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	Password     string             `bson:"password" json:"-"`
	ProfileImage string             `bson:"profileImage" json:"profileImage"`
	Gender       string             `bson:"gender,omitempty" json:"gender,omitempty"`
	SavedAudios  []SavedAudio       `bson:"savedAudios" json:"savedAudios"`
	LikedAudios  []LikedAudio       `bson:"likedAudios" json:"likedAudios"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasSaved reports whether the audio is bookmarked.
func (u *User) HasSaved(audioID primitive.ObjectID) bool {
	for _, s := range u.SavedAudios {
		if s.AudioID == audioID {
			return true
		}
	}
	return false
}

// HasLiked reports whether the audio is in the user's like mirror.
func (u *User) HasLiked(audioID primitive.ObjectID) bool {
	for _, l := range u.LikedAudios {
		if l.AudioID == audioID {
			return true
		}
	}
	return false
}

// AuthorInfo returns the public slice of the account.
func (u *User) AuthorInfo() *AuthorInfo {
	return &AuthorInfo{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage}
}

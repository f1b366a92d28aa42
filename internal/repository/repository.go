package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Data-Dreamersambit/Audio-Player/internal/models"
)

var (
	ErrAudioNotFound   = errors.New("audio not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// ListOptions describe one page of a catalog query. Horizon bounds the
// result set to documents created at or before it so that uploads
// arriving mid-pagination cannot shift page boundaries.
type ListOptions struct {
	Search      string
	Category    string
	Author      primitive.ObjectID
	SortByViews bool
	Horizon     time.Time
	Page        int
	Limit       int
}

// SearchOptions describe a cross-field keyword search.
type SearchOptions struct {
	Query string
}

type AudioRepository interface {
	Insert(ctx context.Context, a *models.Audio) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Audio, error)
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Audio, error)
	FindByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Audio, error)
	List(ctx context.Context, opts ListOptions) ([]models.Audio, int64, error)
	Search(ctx context.Context, opts SearchOptions) ([]models.Audio, error)

	// SetLiked adds or removes userID in the like set with a single
	// atomic update and returns the updated document.
	SetLiked(ctx context.Context, audioID, userID primitive.ObjectID, liked bool) (*models.Audio, error)
	// MarkViewed appends a view record and increments viewCount in one
	// update, guarded so a user is counted at most once. It reports
	// whether a new view was recorded.
	MarkViewed(ctx context.Context, audioID, userID primitive.ObjectID, at time.Time) (bool, error)
	PushComment(ctx context.Context, audioID, commentID primitive.ObjectID) error

	DeleteByAuthor(ctx context.Context, authorID primitive.ObjectID) error
}

type CommentRepository interface {
	Insert(ctx context.Context, c *models.Comment) error
	FindByAudio(ctx context.Context, audioID primitive.ObjectID) ([]models.Comment, error)
	DeleteByAudioIDs(ctx context.Context, audioIDs []primitive.ObjectID) error
}

// ProfileUpdate carries the optional account fields of a partial update.
// Nil means "leave unchanged".
type ProfileUpdate struct {
	Username     *string
	Name         *string
	Email        *string
	Password     *string
	Gender       *string
	ProfileImage *string
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindManyByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	AddLikedAudio(ctx context.Context, userID, audioID primitive.ObjectID, at time.Time) error
	RemoveLikedAudio(ctx context.Context, userID, audioID primitive.ObjectID) error
	AddSavedAudio(ctx context.Context, userID, audioID primitive.ObjectID, at time.Time) error
	RemoveSavedAudio(ctx context.Context, userID, audioID primitive.ObjectID) error

	// PullAudioRefs removes every reference to the given audios from all
	// users' savedAudios and likedAudios lists.
	PullAudioRefs(ctx context.Context, audioIDs []primitive.ObjectID) error
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Data-Dreamersambit/Audio-Player/internal/models"
	"github.com/Data-Dreamersambit/Audio-Player/internal/repository"
	"github.com/Data-Dreamersambit/Audio-Player/internal/utils"
)

// EngagementService flips like/bookmark membership, records first views
// and appends comments. Every mutation is a single atomic document
// update at the store, so concurrent toggles from different users never
// lose writes; the visible counter is derived from the set itself.
type EngagementService struct {
	audios   repository.AudioRepository
	comments repository.CommentRepository
	users    repository.UserRepository
}

func NewEngagementService(audios repository.AudioRepository, comments repository.CommentRepository, users repository.UserRepository) *EngagementService {
	return &EngagementService{audios: audios, comments: comments, users: users}
}

type LikeResult struct {
	Liked      bool
	AudioID    primitive.ObjectID
	UserID     primitive.ObjectID
	TotalLikes int
	User       *models.User
}

// ToggleLike flips the user's membership in the audio's like set and
// mirrors the change into the account's likedAudios list.
func (s *EngagementService) ToggleLike(ctx context.Context, audioID, userID string) (*LikeResult, error) {
	aID, err := parseObjectID("audio", audioID)
	if err != nil {
		return nil, err
	}
	uID, err := parseObjectID("user", userID)
	if err != nil {
		return nil, err
	}

	audio, err := s.findAudio(ctx, aID)
	if err != nil {
		return nil, err
	}
	if _, err := s.findUser(ctx, uID); err != nil {
		return nil, err
	}

	liked := !audio.LikedBy(uID)
	updated, err := s.audios.SetLiked(ctx, aID, uID, liked)
	if err != nil {
		if errors.Is(err, repository.ErrAudioNotFound) {
			return nil, fmt.Errorf("%w: audio not found", utils.ErrNotFound)
		}
		return nil, fmt.Errorf("update likes: %w", err)
	}

	if liked {
		err = s.users.AddLikedAudio(ctx, uID, aID, time.Now().UTC())
	} else {
		err = s.users.RemoveLikedAudio(ctx, uID, aID)
	}
	if err != nil {
		return nil, fmt.Errorf("mirror liked audios: %w", err)
	}

	user, err := s.findUser(ctx, uID)
	if err != nil {
		return nil, err
	}

	return &LikeResult{
		Liked:      liked,
		AudioID:    aID,
		UserID:     uID,
		TotalLikes: len(updated.Likes),
		User:       user,
	}, nil
}

type BookmarkResult struct {
	Bookmarked bool
	AudioID    primitive.ObjectID
	User       *models.User
}

// ToggleBookmark flips membership of the audio in the account's
// savedAudios list. Nothing on the audio document changes; the client
// derives its bookmarked flag from the account state returned here.
func (s *EngagementService) ToggleBookmark(ctx context.Context, audioID, userID string) (*BookmarkResult, error) {
	aID, err := parseObjectID("audio", audioID)
	if err != nil {
		return nil, err
	}
	uID, err := parseObjectID("user", userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.findAudio(ctx, aID); err != nil {
		return nil, err
	}
	user, err := s.findUser(ctx, uID)
	if err != nil {
		return nil, err
	}

	bookmarked := !user.HasSaved(aID)
	if bookmarked {
		err = s.users.AddSavedAudio(ctx, uID, aID, time.Now().UTC())
	} else {
		err = s.users.RemoveSavedAudio(ctx, uID, aID)
	}
	if err != nil {
		return nil, fmt.Errorf("update saved audios: %w", err)
	}

	user, err = s.findUser(ctx, uID)
	if err != nil {
		return nil, err
	}
	return &BookmarkResult{Bookmarked: bookmarked, AudioID: aID, User: user}, nil
}

// RecordView counts the first view per (audio, user) pair. The append to
// viewedBy and the viewCount increment happen in one atomic update, so
// neither can be observed without the other. Repeat views change
// nothing and report alreadyViewed.
func (s *EngagementService) RecordView(ctx context.Context, audioID, userID string) (*models.Audio, bool, error) {
	aID, err := parseObjectID("audio", audioID)
	if err != nil {
		return nil, false, err
	}
	uID, err := parseObjectID("user", userID)
	if err != nil {
		return nil, false, err
	}

	if _, err := s.findAudio(ctx, aID); err != nil {
		return nil, false, err
	}

	recorded, err := s.audios.MarkViewed(ctx, aID, uID, time.Now().UTC())
	if err != nil {
		return nil, false, fmt.Errorf("mark viewed: %w", err)
	}
	if !recorded {
		return nil, true, nil
	}

	audio, err := s.findAudio(ctx, aID)
	if err != nil {
		return nil, false, err
	}
	single := []models.Audio{*audio}
	if err := resolveAuthors(ctx, s.users, single); err != nil {
		return nil, false, err
	}
	return &single[0], false, nil
}

// AddComment validates, persists and links a comment, returning it with
// the author's public info attached.
func (s *EngagementService) AddComment(ctx context.Context, audioID, userID, content string) (*models.Comment, error) {
	aID, err := parseObjectID("audio", audioID)
	if err != nil {
		return nil, err
	}
	uID, err := parseObjectID("user", userID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required and must be a non-empty string", utils.ErrValidation)
	}

	if _, err := s.findAudio(ctx, aID); err != nil {
		return nil, err
	}
	author, err := s.findUser(ctx, uID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		Author:  uID,
		Audio:   aID,
	}
	if err := s.comments.Insert(ctx, comment); err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	if err := s.audios.PushComment(ctx, aID, comment.ID); err != nil {
		return nil, fmt.Errorf("link comment: %w", err)
	}

	comment.AuthorInfo = author.AuthorInfo()
	return comment, nil
}

func (s *EngagementService) findAudio(ctx context.Context, id primitive.ObjectID) (*models.Audio, error) {
	audio, err := s.audios.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAudioNotFound) {
			return nil, fmt.Errorf("%w: audio not found", utils.ErrNotFound)
		}
		return nil, err
	}
	return audio, nil
}

func (s *EngagementService) findUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user not found", utils.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

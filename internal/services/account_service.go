package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Data-Dreamersambit/Audio-Player/internal/models"
	"github.com/Data-Dreamersambit/Audio-Player/internal/repository"
	"github.com/Data-Dreamersambit/Audio-Player/internal/utils"
)

// AccountService owns the account lifecycle: signup, login, profile
// updates and deletion with full cross-reference cleanup.
type AccountService struct {
	users    repository.UserRepository
	audios   repository.AudioRepository
	comments repository.CommentRepository
	store    MediaStore
	logger   *zap.SugaredLogger

	jwtSecret string
	tokenTTL  time.Duration
}

func NewAccountService(
	users repository.UserRepository,
	audios repository.AudioRepository,
	comments repository.CommentRepository,
	store MediaStore,
	logger *zap.SugaredLogger,
	jwtSecret string,
	tokenTTL time.Duration,
) *AccountService {
	return &AccountService{
		users:     users,
		audios:    audios,
		comments:  comments,
		store:     store,
		logger:    logger,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

type SignupParams struct {
	Username     string `validate:"required,min=3"`
	Name         string `validate:"required,min=3,max=30"`
	Email        string `validate:"required,email"`
	Password     string `validate:"required,min=6"`
	Gender       string `validate:"omitempty"`
	ProfileImage *UploadFile
}

// Signup creates the account and issues a session token.
func (s *AccountService) Signup(ctx context.Context, p SignupParams) (*models.User, string, time.Time, error) {
	if err := utils.ValidateStruct(p); err != nil {
		return nil, "", time.Time{}, err
	}

	if _, err := s.users.FindByEmail(ctx, p.Email); err == nil {
		return nil, "", time.Time{}, fmt.Errorf("%w: email already registered", utils.ErrValidation)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", time.Time{}, fmt.Errorf("check email: %w", err)
	}
	if _, err := s.users.FindByUsername(ctx, p.Username); err == nil {
		return nil, "", time.Time{}, fmt.Errorf("%w: username already taken", utils.ErrValidation)
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", time.Time{}, fmt.Errorf("check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("hash password: %w", err)
	}

	var profileImage string
	if p.ProfileImage != nil {
		key := "profile-images/" + primitive.NewObjectID().Hex() + "_" + p.ProfileImage.Filename
		profileImage, err = s.store.Upload(ctx, key, p.ProfileImage.ContentType, p.ProfileImage.Data)
		if err != nil {
			return nil, "", time.Time{}, fmt.Errorf("upload profile image: %w", err)
		}
	}

	user := &models.User{
		Username:     strings.TrimSpace(p.Username),
		Name:         strings.TrimSpace(p.Name),
		Email:        strings.TrimSpace(p.Email),
		Password:     string(hashed),
		Gender:       strings.TrimSpace(p.Gender),
		ProfileImage: profileImage,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, fmt.Errorf("create user: %w", err)
	}

	token, exp, err := utils.GenerateToken(user.ID.Hex(), s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login verifies credentials and issues a session token. Wrong email
// and wrong password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, string, time.Time, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", time.Time{}, fmt.Errorf("%w: invalid email or password", utils.ErrUnauthorized)
		}
		return nil, "", time.Time{}, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", time.Time{}, fmt.Errorf("%w: invalid email or password", utils.ErrUnauthorized)
	}

	token, exp, err := utils.GenerateToken(user.ID.Hex(), s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Authenticate loads the current account with its saved and liked
// entries resolved to (title, thumbnailUrl) summaries.
func (s *AccountService) Authenticate(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseObjectID("user", userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user not authenticated", utils.ErrUnauthorized)
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user not found", utils.ErrNotFound)
		}
		return nil, err
	}
	if err := s.populateAudioRefs(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type UpdateParams struct {
	Username     *string
	Name         *string
	Email        *string
	Password     *string
	Gender       *string
	ProfileImage *UploadFile
}

// Update applies a partial profile update to the caller's own account.
func (s *AccountService) Update(ctx context.Context, callerID, targetID string, p UpdateParams) (*models.User, error) {
	if callerID != targetID {
		return nil, fmt.Errorf("%w: you can only update your own account", utils.ErrForbidden)
	}
	id, err := parseObjectID("user", targetID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: user not found", utils.ErrNotFound)
		}
		return nil, err
	}

	upd := repository.ProfileUpdate{}

	if p.Username != nil && *p.Username != user.Username {
		if _, err := s.users.FindByUsername(ctx, *p.Username); err == nil {
			return nil, fmt.Errorf("%w: username already taken", utils.ErrValidation)
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("check username: %w", err)
		}
		trimmed := strings.TrimSpace(*p.Username)
		if len(trimmed) < 3 {
			return nil, fmt.Errorf("%w: username must be at least 3 characters long", utils.ErrValidation)
		}
		upd.Username = &trimmed
	}

	if p.Email != nil && *p.Email != user.Email {
		if _, err := s.users.FindByEmail(ctx, *p.Email); err == nil {
			return nil, fmt.Errorf("%w: email already registered", utils.ErrValidation)
		} else if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("check email: %w", err)
		}
		trimmed := strings.TrimSpace(*p.Email)
		if err := utils.ValidateStruct(struct {
			Email string `validate:"required,email"`
		}{Email: trimmed}); err != nil {
			return nil, err
		}
		upd.Email = &trimmed
	}

	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		upd.Name = &trimmed
	}
	if p.Gender != nil {
		trimmed := strings.TrimSpace(*p.Gender)
		upd.Gender = &trimmed
	}

	if p.Password != nil {
		if len(*p.Password) < 6 {
			return nil, fmt.Errorf("%w: password must be at least 6 characters", utils.ErrValidation)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*p.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		h := string(hashed)
		upd.Password = &h
	}

	if p.ProfileImage != nil {
		if user.ProfileImage != "" {
			if err := s.store.Delete(ctx, user.ProfileImage); err != nil {
				s.logger.Warnw("delete old profile image", "user", user.ID.Hex(), "err", err)
			}
		}
		key := "profile-images/" + primitive.NewObjectID().Hex() + "_" + p.ProfileImage.Filename
		url, err := s.store.Upload(ctx, key, p.ProfileImage.ContentType, p.ProfileImage.Data)
		if err != nil {
			return nil, fmt.Errorf("upload profile image: %w", err)
		}
		upd.ProfileImage = &url
	}

	if upd == (repository.ProfileUpdate{}) {
		return nil, fmt.Errorf("%w: no valid fields provided to update", utils.ErrValidation)
	}

	updated, err := s.users.UpdateProfile(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return updated, nil
}

// Delete removes the caller's account and everything hanging off it:
// the owned audios with their stored media, those audios' comments, and
// every saved/liked reference to them in other accounts.
func (s *AccountService) Delete(ctx context.Context, callerID, targetID string) error {
	if callerID != targetID {
		return fmt.Errorf("%w: you can only delete your own account", utils.ErrForbidden)
	}
	id, err := parseObjectID("user", targetID)
	if err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fmt.Errorf("%w: user not found", utils.ErrNotFound)
		}
		return err
	}

	if user.ProfileImage != "" {
		if err := s.store.Delete(ctx, user.ProfileImage); err != nil {
			s.logger.Warnw("delete profile image", "user", id.Hex(), "err", err)
		}
	}

	audios, err := s.audios.FindByAuthor(ctx, id)
	if err != nil {
		return fmt.Errorf("find owned audios: %w", err)
	}
	audioIDs := make([]primitive.ObjectID, 0, len(audios))
	for _, a := range audios {
		audioIDs = append(audioIDs, a.ID)
		for _, url := range []string{a.ThumbnailURL, a.AudioURL} {
			if url == "" {
				continue
			}
			if err := s.store.Delete(ctx, url); err != nil {
				s.logger.Warnw("delete media object", "audio", a.ID.Hex(), "err", err)
			}
		}
	}

	if err := s.comments.DeleteByAudioIDs(ctx, audioIDs); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	if err := s.audios.DeleteByAuthor(ctx, id); err != nil {
		return fmt.Errorf("delete audios: %w", err)
	}
	if err := s.users.PullAudioRefs(ctx, audioIDs); err != nil {
		return fmt.Errorf("pull audio references: %w", err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *AccountService) populateAudioRefs(ctx context.Context, user *models.User) error {
	ids := make([]primitive.ObjectID, 0, len(user.SavedAudios)+len(user.LikedAudios))
	for _, sa := range user.SavedAudios {
		ids = append(ids, sa.AudioID)
	}
	for _, la := range user.LikedAudios {
		ids = append(ids, la.AudioID)
	}
	audios, err := s.audios.FindManyByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolve audio refs: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.AudioSummary, len(audios))
	for _, a := range audios {
		byID[a.ID] = &models.AudioSummary{ID: a.ID, Title: a.Title, ThumbnailURL: a.ThumbnailURL}
	}
	for i := range user.SavedAudios {
		user.SavedAudios[i].Audio = byID[user.SavedAudios[i].AudioID]
	}
	for i := range user.LikedAudios {
		user.LikedAudios[i].Audio = byID[user.LikedAudios[i].AudioID]
	}
	return nil
}

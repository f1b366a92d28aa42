package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Data-Dreamersambit/Audio-Player/internal/models"
	"github.com/Data-Dreamersambit/Audio-Player/internal/repository"
	"github.com/Data-Dreamersambit/Audio-Player/internal/utils"
)

const (
	defaultPage  = 1
	defaultLimit = 6

	SortPopularity = "popularity"
)

var tagPattern = regexp.MustCompile(`^[a-z0-9-_]+$`)

// CatalogService serves the read side of the audio catalog plus uploads.
type CatalogService struct {
	audios   repository.AudioRepository
	comments repository.CommentRepository
	users    repository.UserRepository
	store    MediaStore
}

func NewCatalogService(audios repository.AudioRepository, comments repository.CommentRepository, users repository.UserRepository, store MediaStore) *CatalogService {
	return &CatalogService{audios: audios, comments: comments, users: users, store: store}
}

// ListParams carry the raw query parameters of a listing request.
type ListParams struct {
	Search         string
	Category       string
	Author         string
	Sort           string
	Page           int
	Limit          int
	FirstQueryTime time.Time
}

type ListResult struct {
	Audios         []models.Audio
	Page           int
	Limit          int
	TotalPages     int64
	TotalAudios    int64
	FirstQueryTime time.Time
}

// List returns one page of the catalog. The first request of a session
// fixes FirstQueryTime to now and echoes it back; later pages pass it in
// so the result set stays bounded to the same horizon. Out-of-range
// pages return an empty list, not an error.
func (s *CatalogService) List(ctx context.Context, p ListParams) (*ListResult, error) {
	if p.Page <= 0 {
		p.Page = defaultPage
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	horizon := p.FirstQueryTime
	if horizon.IsZero() {
		horizon = time.Now().UTC()
	}

	opts := repository.ListOptions{
		Search:      p.Search,
		Category:    p.Category,
		SortByViews: p.Sort == SortPopularity,
		Horizon:     horizon,
		Page:        p.Page,
		Limit:       p.Limit,
	}
	if p.Author != "" {
		authorID, err := parseObjectID("author", p.Author)
		if err != nil {
			return nil, err
		}
		opts.Author = authorID
	}

	audios, total, err := s.audios.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list audios: %w", err)
	}
	if err := resolveAuthors(ctx, s.users, audios); err != nil {
		return nil, fmt.Errorf("resolve authors: %w", err)
	}
	if audios == nil {
		audios = []models.Audio{}
	}

	return &ListResult{
		Audios:         audios,
		Page:           p.Page,
		Limit:          p.Limit,
		TotalPages:     int64(math.Ceil(float64(total) / float64(p.Limit))),
		TotalAudios:    total,
		FirstQueryTime: horizon,
	}, nil
}

// Get returns one audio with its author and comments (newest first,
// comment authors resolved too).
func (s *CatalogService) Get(ctx context.Context, audioID string) (*models.Audio, error) {
	id, err := parseObjectID("audio", audioID)
	if err != nil {
		return nil, err
	}
	audio, err := s.audios.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrAudioNotFound {
			return nil, fmt.Errorf("%w: audio not found", utils.ErrNotFound)
		}
		return nil, err
	}

	single := []models.Audio{*audio}
	if err := resolveAuthors(ctx, s.users, single); err != nil {
		return nil, err
	}
	audio = &single[0]

	comments, err := s.comments.FindByAudio(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	if err := s.resolveCommentAuthors(ctx, comments); err != nil {
		return nil, err
	}
	audio.CommentList = comments
	return audio, nil
}

// SearchAll is the global keyword search over titles, descriptions and
// categories, most viewed first.
func (s *CatalogService) SearchAll(ctx context.Context, q string) ([]models.Audio, error) {
	audios, err := s.audios.Search(ctx, repository.SearchOptions{Query: q})
	if err != nil {
		return nil, fmt.Errorf("search audios: %w", err)
	}
	if len(audios) == 0 {
		return nil, fmt.Errorf("%w: no audio found matching the criteria", utils.ErrNotFound)
	}
	if err := resolveAuthors(ctx, s.users, audios); err != nil {
		return nil, err
	}
	return audios, nil
}

// UploadFile is one multipart part of an upload request.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type UploadParams struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Duration    float64
	Thumbnail   *UploadFile
	AudioFile   *UploadFile
}

// Upload stores both media objects and inserts the audio document. Tags
// are normalized to lowercase slugs; anything else is rejected.
func (s *CatalogService) Upload(ctx context.Context, userID string, p UploadParams) (*models.Audio, error) {
	authorID, err := parseObjectID("user", userID)
	if err != nil {
		return nil, fmt.Errorf("%w: please log in", utils.ErrUnauthorized)
	}
	if p.Thumbnail == nil || p.AudioFile == nil {
		return nil, fmt.Errorf("%w: thumbnail and audio files are required", utils.ErrValidation)
	}
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Description) == "" || strings.TrimSpace(p.Category) == "" {
		return nil, fmt.Errorf("%w: title, description and category are required", utils.ErrValidation)
	}

	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if !tagPattern.MatchString(t) {
			return nil, fmt.Errorf("%w: invalid tag %q", utils.ErrValidation, t)
		}
		tags = append(tags, t)
	}

	thumbData, thumbType := p.Thumbnail.Data, p.Thumbnail.ContentType
	if resized, err := resizeThumbnail(p.Thumbnail.Data); err == nil {
		thumbData, thumbType = resized, "image/jpeg"
	}
	thumbKey := "audio-thumbnails/" + uuid.NewString() + "_" + p.Thumbnail.Filename
	thumbnailURL, err := s.store.Upload(ctx, thumbKey, thumbType, thumbData)
	if err != nil {
		return nil, fmt.Errorf("upload thumbnail: %w", err)
	}

	audioKey := "audio-files/" + uuid.NewString() + "_" + p.AudioFile.Filename
	audioURL, err := s.store.Upload(ctx, audioKey, p.AudioFile.ContentType, p.AudioFile.Data)
	if err != nil {
		return nil, fmt.Errorf("upload audio file: %w", err)
	}

	audio := &models.Audio{
		Author:       authorID,
		Title:        strings.TrimSpace(p.Title),
		Description:  strings.TrimSpace(p.Description),
		Category:     strings.TrimSpace(p.Category),
		ThumbnailURL: thumbnailURL,
		AudioURL:     audioURL,
		Tags:         tags,
		Duration:     p.Duration,
	}
	if err := s.audios.Insert(ctx, audio); err != nil {
		return nil, fmt.Errorf("insert audio: %w", err)
	}
	return audio, nil
}

func (s *CatalogService) resolveCommentAuthors(ctx context.Context, comments []models.Comment) error {
	seen := make(map[primitive.ObjectID]struct{}, len(comments))
	ids := make([]primitive.ObjectID, 0, len(comments))
	for _, c := range comments {
		if _, ok := seen[c.Author]; !ok {
			seen[c.Author] = struct{}{}
			ids = append(ids, c.Author)
		}
	}
	authors, err := s.users.FindManyByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]*models.AuthorInfo, len(authors))
	for i := range authors {
		byID[authors[i].ID] = authors[i].AuthorInfo()
	}
	for i := range comments {
		comments[i].AuthorInfo = byID[comments[i].Author]
	}
	return nil
}

func resizeThumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

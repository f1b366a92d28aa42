package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Data-Dreamersambit/Audio-Player/internal/models"
	"github.com/Data-Dreamersambit/Audio-Player/internal/repository"
)

// In-memory doubles for the Mongo repositories. They reproduce the
// store-level semantics the services rely on: set-shaped like/saved
// membership, the guarded viewedBy+viewCount update and the horizon
// clause of listing queries.

type fakeAudioRepo struct {
	mu     sync.Mutex
	audios map[primitive.ObjectID]*models.Audio
}

func newFakeAudioRepo() *fakeAudioRepo {
	return &fakeAudioRepo{audios: make(map[primitive.ObjectID]*models.Audio)}
}

func copyAudio(a *models.Audio) *models.Audio {
	cp := *a
	cp.Tags = append([]string(nil), a.Tags...)
	cp.Comments = append([]primitive.ObjectID(nil), a.Comments...)
	cp.Likes = append([]primitive.ObjectID(nil), a.Likes...)
	cp.ViewedBy = append([]models.ViewRecord(nil), a.ViewedBy...)
	return &cp
}

func (r *fakeAudioRepo) Insert(_ context.Context, a *models.Audio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.audios[a.ID] = copyAudio(a)
	return nil
}

func (r *fakeAudioRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Audio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.audios[id]
	if !ok {
		return nil, repository.ErrAudioNotFound
	}
	return copyAudio(a), nil
}

func (r *fakeAudioRepo) FindManyByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Audio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Audio
	for _, id := range ids {
		if a, ok := r.audios[id]; ok {
			out = append(out, *copyAudio(a))
		}
	}
	return out, nil
}

func (r *fakeAudioRepo) FindByAuthor(_ context.Context, authorID primitive.ObjectID) ([]models.Audio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Audio
	for _, a := range r.audios {
		if a.Author == authorID {
			out = append(out, *copyAudio(a))
		}
	}
	return out, nil
}

func matchesSearch(a *models.Audio, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, field := range []string{a.Title, a.Description, a.Category} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	for _, t := range a.Tags {
		if strings.Contains(strings.ToLower(t), needle) {
			return true
		}
	}
	return false
}

func (r *fakeAudioRepo) List(_ context.Context, opts repository.ListOptions) ([]models.Audio, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.Audio
	for _, a := range r.audios {
		if a.CreatedAt.After(opts.Horizon) {
			continue
		}
		if !opts.Author.IsZero() && a.Author != opts.Author {
			continue
		}
		if opts.Category != "" && a.Category != opts.Category {
			continue
		}
		if !matchesSearch(a, opts.Search) {
			continue
		}
		matched = append(matched, *copyAudio(a))
	}

	if opts.SortByViews {
		sort.Slice(matched, func(i, j int) bool { return matched[i].ViewCount > matched[j].ViewCount })
	} else {
		sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	}

	total := int64(len(matched))
	start := (opts.Page - 1) * opts.Limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + opts.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *fakeAudioRepo) Search(_ context.Context, opts repository.SearchOptions) ([]models.Audio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Audio
	needle := strings.ToLower(opts.Query)
	for _, a := range r.audios {
		for _, field := range []string{a.Title, a.Description, a.Category} {
			if opts.Query == "" || strings.Contains(strings.ToLower(field), needle) {
				matched = append(matched, *copyAudio(a))
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ViewCount > matched[j].ViewCount })
	return matched, nil
}

func (r *fakeAudioRepo) SetLiked(_ context.Context, audioID, userID primitive.ObjectID, liked bool) (*models.Audio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.audios[audioID]
	if !ok {
		return nil, repository.ErrAudioNotFound
	}
	if liked {
		if !a.LikedBy(userID) {
			a.Likes = append(a.Likes, userID)
		}
	} else {
		kept := a.Likes[:0]
		for _, id := range a.Likes {
			if id != userID {
				kept = append(kept, id)
			}
		}
		a.Likes = kept
	}
	return copyAudio(a), nil
}

func (r *fakeAudioRepo) MarkViewed(_ context.Context, audioID, userID primitive.ObjectID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.audios[audioID]
	if !ok {
		return false, nil
	}
	if a.ViewedByUser(userID) {
		return false, nil
	}
	a.ViewedBy = append(a.ViewedBy, models.ViewRecord{UserID: userID, Timestamp: at})
	a.ViewCount++
	return true, nil
}

func (r *fakeAudioRepo) PushComment(_ context.Context, audioID, commentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.audios[audioID]
	if !ok {
		return repository.ErrAudioNotFound
	}
	a.Comments = append(a.Comments, commentID)
	return nil
}

func (r *fakeAudioRepo) DeleteByAuthor(_ context.Context, authorID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.audios {
		if a.Author == authorID {
			delete(r.audios, id)
		}
	}
	return nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[primitive.ObjectID]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[primitive.ObjectID]*models.Comment)}
}

func (r *fakeCommentRepo) Insert(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r *fakeCommentRepo) FindByAudio(_ context.Context, audioID primitive.ObjectID) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, c := range r.comments {
		if c.Audio == audioID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCommentRepo) DeleteByAudioIDs(_ context.Context, audioIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, aid := range audioIDs {
		for id, c := range r.comments {
			if c.Audio == aid {
				delete(r.comments, id)
			}
		}
	}
	return nil
}

func (r *fakeCommentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.comments)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func copyUser(u *models.User) *models.User {
	cp := *u
	cp.SavedAudios = append([]models.SavedAudio(nil), u.SavedAudios...)
	cp.LikedAudios = append([]models.LikedAudio(nil), u.LikedAudios...)
	return &cp
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.users[u.ID] = copyUser(u)
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (r *fakeUserRepo) FindManyByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *copyUser(u))
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, upd repository.ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Password != nil {
		u.Password = *upd.Password
	}
	if upd.Gender != nil {
		u.Gender = *upd.Gender
	}
	if upd.ProfileImage != nil {
		u.ProfileImage = *upd.ProfileImage
	}
	return copyUser(u), nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) AddLikedAudio(_ context.Context, userID, audioID primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if !u.HasLiked(audioID) {
		u.LikedAudios = append(u.LikedAudios, models.LikedAudio{AudioID: audioID, LikedAt: at})
	}
	return nil
}

func (r *fakeUserRepo) RemoveLikedAudio(_ context.Context, userID, audioID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	kept := u.LikedAudios[:0]
	for _, l := range u.LikedAudios {
		if l.AudioID != audioID {
			kept = append(kept, l)
		}
	}
	u.LikedAudios = kept
	return nil
}

func (r *fakeUserRepo) AddSavedAudio(_ context.Context, userID, audioID primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if !u.HasSaved(audioID) {
		u.SavedAudios = append(u.SavedAudios, models.SavedAudio{AudioID: audioID, SavedAt: at})
	}
	return nil
}

func (r *fakeUserRepo) RemoveSavedAudio(_ context.Context, userID, audioID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	kept := u.SavedAudios[:0]
	for _, s := range u.SavedAudios {
		if s.AudioID != audioID {
			kept = append(kept, s)
		}
	}
	u.SavedAudios = kept
	return nil
}

func (r *fakeUserRepo) PullAudioRefs(_ context.Context, audioIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	drop := make(map[primitive.ObjectID]struct{}, len(audioIDs))
	for _, id := range audioIDs {
		drop[id] = struct{}{}
	}
	for _, u := range r.users {
		savedKept := u.SavedAudios[:0]
		for _, s := range u.SavedAudios {
			if _, ok := drop[s.AudioID]; !ok {
				savedKept = append(savedKept, s)
			}
		}
		u.SavedAudios = savedKept

		likedKept := u.LikedAudios[:0]
		for _, l := range u.LikedAudios {
			if _, ok := drop[l.AudioID]; !ok {
				likedKept = append(likedKept, l)
			}
		}
		u.LikedAudios = likedKept
	}
	return nil
}

type fakeMediaStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeMediaStore() *fakeMediaStore {
	return &fakeMediaStore{objects: make(map[string][]byte)}
}

func (s *fakeMediaStore) Upload(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return fmt.Sprintf("https://cdn.test/%s", key), nil
}

func (s *fakeMediaStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	delete(s.objects, strings.TrimPrefix(url, "https://cdn.test/"))
	return nil
}

package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Data-Dreamersambit/Audio-Player/internal/models"
	"github.com/Data-Dreamersambit/Audio-Player/internal/utils"
)

type catalogFixture struct {
	audios   *fakeAudioRepo
	comments *fakeCommentRepo
	users    *fakeUserRepo
	store    *fakeMediaStore
	svc      *CatalogService
	author   *models.User
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	audios := newFakeAudioRepo()
	comments := newFakeCommentRepo()
	users := newFakeUserRepo()
	store := newFakeMediaStore()

	author := &models.User{Username: "creator", Name: "Creator", Email: "creator@example.com", ProfileImage: "https://cdn.test/profile.jpg"}
	require.NoError(t, users.Create(context.Background(), author))

	return &catalogFixture{
		audios:   audios,
		comments: comments,
		users:    users,
		store:    store,
		svc:      NewCatalogService(audios, comments, users, store),
		author:   author,
	}
}

func (f *catalogFixture) seedAudios(t *testing.T, n int, base time.Time) []models.Audio {
	t.Helper()
	out := make([]models.Audio, 0, n)
	for i := 0; i < n; i++ {
		a := &models.Audio{
			Author:    f.author.ID,
			Title:     fmt.Sprintf("Track %02d", i),
			Category:  "Music",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.audios.Insert(context.Background(), a))
		out = append(out, *a)
	}
	return out
}

func TestListPaginatesWithDefaultLimit(t *testing.T) {
	f := newCatalogFixture(t)
	base := time.Now().UTC().Add(-time.Hour)
	f.seedAudios(t, 13, base)

	res, err := f.svc.List(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 6, res.Limit)
	assert.EqualValues(t, 13, res.TotalAudios)
	assert.EqualValues(t, 3, res.TotalPages)
	assert.Len(t, res.Audios, 6)
	assert.False(t, res.FirstQueryTime.IsZero())

	// newest first
	assert.Equal(t, "Track 12", res.Audios[0].Title)
}

func TestListOutOfRangePageReturnsEmpty(t *testing.T) {
	f := newCatalogFixture(t)
	f.seedAudios(t, 13, time.Now().UTC().Add(-time.Hour))

	res, err := f.svc.List(context.Background(), ListParams{Page: 4})
	require.NoError(t, err)
	assert.NotNil(t, res.Audios)
	assert.Empty(t, res.Audios)
	assert.EqualValues(t, 13, res.TotalAudios)
	assert.EqualValues(t, 3, res.TotalPages)
}

func TestListHorizonHidesNewerAudios(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	horizon := time.Now().UTC().Add(-30 * time.Minute)
	f.seedAudios(t, 3, horizon.Add(-time.Hour))

	late := &models.Audio{Author: f.author.ID, Title: "After Horizon", CreatedAt: horizon.Add(time.Minute)}
	require.NoError(t, f.audios.Insert(ctx, late))

	res, err := f.svc.List(ctx, ListParams{FirstQueryTime: horizon})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.TotalAudios)
	for _, a := range res.Audios {
		assert.NotEqual(t, "After Horizon", a.Title)
	}
	assert.True(t, res.FirstQueryTime.Equal(horizon))
}

func TestListSearchIsCaseInsensitive(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	require.NoError(t, f.audios.Insert(ctx, &models.Audio{
		Author: f.author.ID, Title: "Morning Meditation", Category: "Wellness", CreatedAt: time.Now().UTC().Add(-time.Hour),
	}))
	require.NoError(t, f.audios.Insert(ctx, &models.Audio{
		Author: f.author.ID, Title: "Evening Jazz", Category: "Music", CreatedAt: time.Now().UTC().Add(-time.Hour),
	}))

	for _, q := range []string{"morning", "MORNING", "medit"} {
		res, err := f.svc.List(ctx, ListParams{Search: q})
		require.NoError(t, err)
		require.Len(t, res.Audios, 1, "query %q", q)
		assert.Equal(t, "Morning Meditation", res.Audios[0].Title)
	}
}

func TestListSortByPopularity(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	old := time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, f.audios.Insert(ctx, &models.Audio{Author: f.author.ID, Title: "Quiet", ViewCount: 2, CreatedAt: old}))
	require.NoError(t, f.audios.Insert(ctx, &models.Audio{Author: f.author.ID, Title: "Hit", ViewCount: 40, CreatedAt: old.Add(-time.Minute)}))

	res, err := f.svc.List(ctx, ListParams{Sort: SortPopularity})
	require.NoError(t, err)
	require.Len(t, res.Audios, 2)
	assert.Equal(t, "Hit", res.Audios[0].Title)
}

func TestListResolvesAuthors(t *testing.T) {
	f := newCatalogFixture(t)
	f.seedAudios(t, 2, time.Now().UTC().Add(-time.Hour))

	res, err := f.svc.List(context.Background(), ListParams{})
	require.NoError(t, err)
	for _, a := range res.Audios {
		require.NotNil(t, a.AuthorInfo)
		assert.Equal(t, "Creator", a.AuthorInfo.Name)
		assert.Equal(t, f.author.ProfileImage, a.AuthorInfo.ProfileImage)
	}
}

func TestListInvalidAuthorID(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.svc.List(context.Background(), ListParams{Author: "bogus"})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestGetAttachesCommentsNewestFirst(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	audio := &models.Audio{Author: f.author.ID, Title: "Track", CreatedAt: time.Now().UTC().Add(-time.Hour)}
	require.NoError(t, f.audios.Insert(ctx, audio))

	older := &models.Comment{Content: "first", Author: f.author.ID, Audio: audio.ID, CreatedAt: time.Now().UTC().Add(-10 * time.Minute)}
	newer := &models.Comment{Content: "second", Author: f.author.ID, Audio: audio.ID, CreatedAt: time.Now().UTC().Add(-time.Minute)}
	require.NoError(t, f.comments.Insert(ctx, older))
	require.NoError(t, f.comments.Insert(ctx, newer))

	got, err := f.svc.Get(ctx, audio.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, got.AuthorInfo)
	require.Len(t, got.CommentList, 2)
	assert.Equal(t, "second", got.CommentList[0].Content)
	require.NotNil(t, got.CommentList[0].AuthorInfo)
	assert.Equal(t, "Creator", got.CommentList[0].AuthorInfo.Name)
}

func TestGetUnknownAudio(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.svc.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestSearchAllNoMatches(t *testing.T) {
	f := newCatalogFixture(t)
	f.seedAudios(t, 2, time.Now().UTC().Add(-time.Hour))

	_, err := f.svc.SearchAll(context.Background(), "nothing-matches-this")
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestSearchAllOrdersByViews(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	require.NoError(t, f.audios.Insert(ctx, &models.Audio{Author: f.author.ID, Title: "Jazz Vol 1", ViewCount: 5}))
	require.NoError(t, f.audios.Insert(ctx, &models.Audio{Author: f.author.ID, Title: "Jazz Vol 2", ViewCount: 50}))

	got, err := f.svc.SearchAll(ctx, "jazz")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Jazz Vol 2", got[0].Title)
	require.NotNil(t, got[0].AuthorInfo)
}

func uploadParams() UploadParams {
	return UploadParams{
		Title:       "New Track",
		Description: "A new track",
		Category:    "Music",
		Tags:        []string{" Lo-Fi ", "chill"},
		Duration:    182.5,
		Thumbnail:   &UploadFile{Filename: "cover.png", ContentType: "image/png", Data: []byte("not-a-real-image")},
		AudioFile:   &UploadFile{Filename: "track.mp3", ContentType: "audio/mpeg", Data: []byte("mp3-bytes")},
	}
}

func TestUploadStoresMediaAndNormalizesTags(t *testing.T) {
	f := newCatalogFixture(t)

	audio, err := f.svc.Upload(context.Background(), f.author.ID.Hex(), uploadParams())
	require.NoError(t, err)
	assert.Equal(t, []string{"lo-fi", "chill"}, audio.Tags)
	assert.True(t, strings.Contains(audio.ThumbnailURL, "audio-thumbnails/"))
	assert.True(t, strings.Contains(audio.AudioURL, "audio-files/"))
	assert.Equal(t, f.author.ID, audio.Author)
	assert.False(t, audio.ID.IsZero())

	stored, err := f.audios.FindByID(context.Background(), audio.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Track", stored.Title)
}

func TestUploadRejectsMissingFiles(t *testing.T) {
	f := newCatalogFixture(t)

	p := uploadParams()
	p.AudioFile = nil
	_, err := f.svc.Upload(context.Background(), f.author.ID.Hex(), p)
	assert.ErrorIs(t, err, utils.ErrValidation)

	p = uploadParams()
	p.Thumbnail = nil
	_, err = f.svc.Upload(context.Background(), f.author.ID.Hex(), p)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestUploadRejectsBadTag(t *testing.T) {
	f := newCatalogFixture(t)

	p := uploadParams()
	p.Tags = []string{"has spaces"}
	_, err := f.svc.Upload(context.Background(), f.author.ID.Hex(), p)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestUploadRequiresValidUser(t *testing.T) {
	f := newCatalogFixture(t)

	_, err := f.svc.Upload(context.Background(), "", uploadParams())
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}

package services

import (
	"context"
	"strings"
	"testing"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeVideos struct {
	byID map[primitive.ObjectID]*models.Video
}

func (f *fakeVideos) Create(_ context.Context, v *models.Video) error {
	v.ID = primitive.NewObjectID()
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVideos) FindByID(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideos) List(context.Context, store.VideoQuery) (*models.VideoPage, error) {
	return &models.VideoPage{}, nil
}

func (f *fakeVideos) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Video, error) {
	out := []models.Video{}
	for _, v := range f.byID {
		if v.Owner == owner {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeVideos) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*models.Video, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if t, ok := set["title"].(string); ok {
		v.Title = t
	}
	if t, ok := set["thumbnailPublicId"].(string); ok {
		v.ThumbnailPublicID = t
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideos) TogglePublished(_ context.Context, id primitive.ObjectID) (*models.Video, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	v.IsPublished = !v.IsPublished
	cp := *v
	return &cp, nil
}

func (f *fakeVideos) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	f.byID[id].Views++
	return nil
}

func (f *fakeVideos) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(f.byID, id)
	return nil
}

// recordingCleanup logs each cascade step it is asked to perform.
type recordingCleanup struct {
	comments []primitive.ObjectID
	steps    []string
}

func (c *recordingCleanup) DeleteCommentsOf(context.Context, primitive.ObjectID) ([]primitive.ObjectID, error) {
	c.steps = append(c.steps, "comments")
	return c.comments, nil
}

func (c *recordingCleanup) DeleteLikesOf(_ context.Context, target models.LikeTarget, ids []primitive.ObjectID) error {
	c.steps = append(c.steps, "likes:"+string(target))
	return nil
}

func (c *recordingCleanup) PullFromPlaylists(context.Context, primitive.ObjectID) error {
	c.steps = append(c.steps, "playlists")
	return nil
}

func (c *recordingCleanup) PullFromHistories(context.Context, primitive.ObjectID) error {
	c.steps = append(c.steps, "histories")
	return nil
}

type fakeHistory struct{ pushed []primitive.ObjectID }

func (h *fakeHistory) PushWatchHistory(_ context.Context, _, videoID primitive.ObjectID) error {
	h.pushed = append(h.pushed, videoID)
	return nil
}

type videoFixture struct {
	svc     *VideoService
	videos  *fakeVideos
	cleanup *recordingCleanup
	history *fakeHistory
	media   *fakeMedia
}

func newVideoFixture() *videoFixture {
	f := &videoFixture{
		videos:  &fakeVideos{byID: map[primitive.ObjectID]*models.Video{}},
		cleanup: &recordingCleanup{},
		history: &fakeHistory{},
		media:   &fakeMedia{},
	}
	f.svc = NewVideoService(f.videos, f.cleanup, f.history, f.media, zap.NewNop())
	return f
}

func (f *videoFixture) publish(t *testing.T, owner primitive.ObjectID) *models.Video {
	t.Helper()
	v, err := f.svc.Publish(context.Background(), owner, PublishInput{
		Title:       "intro",
		Description: "first upload",
		Duration:    61.5,
		Video:       &File{Reader: strings.NewReader("mp4"), Filename: "intro.mp4"},
		Thumbnail:   &File{Reader: strings.NewReader("png"), Filename: "intro.png"},
	})
	require.NoError(t, err)
	return v
}

func TestPublish_RequiresBothFiles(t *testing.T) {
	f := newVideoFixture()
	_, err := f.svc.Publish(context.Background(), primitive.NewObjectID(), PublishInput{
		Title: "x",
		Video: &File{Reader: strings.NewReader("mp4")},
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Empty(t, f.media.uploads)
}

func TestPublish_DiscardsVideoWhenThumbnailFails(t *testing.T) {
	f := newVideoFixture()
	owner := primitive.NewObjectID()

	in := PublishInput{
		Title:     "x",
		Video:     &File{Reader: strings.NewReader("mp4")},
		Thumbnail: &File{Reader: &failingReader{}},
	}
	_, err := f.svc.Publish(context.Background(), owner, in)
	require.Error(t, err)
	require.Len(t, f.media.uploads, 1)
	assert.Len(t, f.media.deleted, 1)
	assert.Empty(t, f.videos.byID)
}

type failingReader struct{}

func (*failingReader) Read([]byte) (int, error) { return 0, assert.AnError }

func TestWatch_UnpublishedVisibleOnlyToOwner(t *testing.T) {
	f := newVideoFixture()
	owner := primitive.NewObjectID()
	v := f.publish(t, owner)
	_, err := f.svc.TogglePublish(context.Background(), v.ID, owner)
	require.NoError(t, err)

	_, err = f.svc.Watch(context.Background(), v.ID, primitive.NewObjectID())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	got, err := f.svc.Watch(context.Background(), v.ID, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.Views)
	assert.Equal(t, []primitive.ObjectID{v.ID}, f.history.pushed)
}

func TestVideoMutations_OwnerOnly(t *testing.T) {
	f := newVideoFixture()
	owner := primitive.NewObjectID()
	v := f.publish(t, owner)
	stranger := primitive.NewObjectID()
	title := "stolen"

	_, err := f.svc.Update(context.Background(), v.ID, stranger, VideoUpdate{Title: &title})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	_, err = f.svc.TogglePublish(context.Background(), v.ID, stranger)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.True(t, apperr.Is(f.svc.Delete(context.Background(), v.ID, stranger), apperr.KindForbidden))

	_, err = f.svc.Update(context.Background(), v.ID, owner, VideoUpdate{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	err = f.svc.Delete(context.Background(), primitive.NewObjectID(), owner)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestUpdate_ReplacesThumbnail(t *testing.T) {
	f := newVideoFixture()
	owner := primitive.NewObjectID()
	v := f.publish(t, owner)

	updated, err := f.svc.Update(context.Background(), v.ID, owner, VideoUpdate{
		Thumbnail: &File{Reader: strings.NewReader("new"), Filename: "new.jpg"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, v.ThumbnailPublicID, updated.ThumbnailPublicID)
	assert.Equal(t, []string{v.ThumbnailPublicID}, f.media.deleted)
}

func TestDelete_Cascades(t *testing.T) {
	f := newVideoFixture()
	owner := primitive.NewObjectID()
	v := f.publish(t, owner)
	f.cleanup.comments = []primitive.ObjectID{primitive.NewObjectID()}

	require.NoError(t, f.svc.Delete(context.Background(), v.ID, owner))

	assert.Empty(t, f.videos.byID)
	assert.Equal(t, []string{"comments", "likes:comment", "likes:video", "playlists", "histories"}, f.cleanup.steps)
	assert.ElementsMatch(t, []string{v.VideoPublicID, v.ThumbnailPublicID}, f.media.deleted)
}

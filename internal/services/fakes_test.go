package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/AnshRaj112/vidtube-backend/internal/auth"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.User
	reads int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.byID {
		if v.Username == u.Username || v.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	u, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) FindByLogin(_ context.Context, username, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	for _, u := range f.byID {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) SetRefreshToken(_ context.Context, id primitive.ObjectID, digest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.RefreshTokenHash = digest
	return nil
}

func (f *fakeUsers) SwapRefreshToken(_ context.Context, id primitive.ObjectID, oldDigest, newDigest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || u.RefreshTokenHash != oldDigest {
		return store.ErrStale
	}
	u.RefreshTokenHash = newDigest
	return nil
}

func (f *fakeUsers) ClearRefreshToken(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		u.RefreshTokenHash = ""
	}
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	for k, v := range set {
		s, _ := v.(string)
		switch k {
		case "fullname":
			u.FullName = s
		case "email":
			for _, other := range f.byID {
				if other.ID != id && other.Email == s {
					return nil, store.ErrDuplicate
				}
			}
			u.Email = s
		case "avatar":
			u.Avatar = s
		case "avatarPublicId":
			u.AvatarPublicID = s
		case "coverImage":
			u.CoverImage = s
		case "coverImagePublicId":
			u.CoverImagePublicID = s
		}
	}
	return sanitize(u), nil
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) ChannelProfile(_ context.Context, username string, _ primitive.ObjectID) (*models.ChannelProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			return &models.ChannelProfile{ID: u.ID, Username: u.Username, FullName: u.FullName}, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) WatchHistory(context.Context, primitive.ObjectID) ([]models.VideoWithOwner, error) {
	return []models.VideoWithOwner{}, nil
}

func (f *fakeUsers) storedHash(id primitive.ObjectID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].RefreshTokenHash
}

type fakeMedia struct {
	mu       sync.Mutex
	uploads  []UploadOptions
	deleted  []string
	failNext bool
}

func (m *fakeMedia) Upload(_ context.Context, r io.Reader, opts UploadOptions) (*MediaAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return nil, errors.New("cdn unavailable")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	m.uploads = append(m.uploads, opts)
	id := primitive.NewObjectID().Hex()
	return &MediaAsset{URL: "https://cdn.test/" + id, PublicID: id}, nil
}

func (m *fakeMedia) Delete(_ context.Context, publicID string, _ MediaKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, publicID)
	return nil
}

type fakeSubs struct{ cleared []primitive.ObjectID }

func (s *fakeSubs) DeleteForUser(_ context.Context, id primitive.ObjectID) error {
	s.cleared = append(s.cleared, id)
	return nil
}

type fakeLikes struct {
	removed map[models.LikeTarget][]primitive.ObjectID
}

func (l *fakeLikes) DeleteForTargets(_ context.Context, target models.LikeTarget, ids []primitive.ObjectID) error {
	if l.removed == nil {
		l.removed = map[models.LikeTarget][]primitive.ObjectID{}
	}
	l.removed[target] = append(l.removed[target], ids...)
	return nil
}

type fakeTweets struct {
	byID map[primitive.ObjectID]*models.Tweet
}

func newFakeTweets() *fakeTweets {
	return &fakeTweets{byID: map[primitive.ObjectID]*models.Tweet{}}
}

func (f *fakeTweets) Create(_ context.Context, t *models.Tweet) error {
	t.ID = primitive.NewObjectID()
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTweets) FindByID(_ context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTweets) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Tweet, error) {
	out := []models.Tweet{}
	for _, t := range f.byID {
		if t.Owner == owner {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTweets) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	t.Content = content
	cp := *t
	return &cp, nil
}

func (f *fakeTweets) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.byID[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func newCodec(clock *testClock) *auth.Codec {
	c, err := auth.NewCodec(auth.Config{
		AccessSecret:  []byte("test-access-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshSecret: []byte("test-refresh-secret"),
		RefreshTTL:    240 * time.Hour,
	}, auth.WithClock(clock.Now))
	if err != nil {
		panic(err)
	}
	return c
}

package handlers

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/AnshRaj112/vidtube-backend/internal/auth"
	"github.com/AnshRaj112/vidtube-backend/internal/middleware"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/services"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memUsers is an in-memory user collection covering every user-facing
// store interface.
type memUsers struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[primitive.ObjectID]*models.User{}}
}

func (m *memUsers) get(id primitive.ObjectID) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byID {
		if v.Username == u.Username || v.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(id)
}

func (m *memUsers) FindProfileByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.get(id)
	if err != nil {
		return nil, err
	}
	u.Password, u.RefreshTokenHash = "", ""
	return u, nil
}

func (m *memUsers) FindByLogin(_ context.Context, username, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUsers) SetRefreshToken(_ context.Context, id primitive.ObjectID, digest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.RefreshTokenHash = digest
	return nil
}

func (m *memUsers) SwapRefreshToken(_ context.Context, id primitive.ObjectID, oldDigest, newDigest string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok || u.RefreshTokenHash != oldDigest {
		return store.ErrStale
	}
	u.RefreshTokenHash = newDigest
	return nil
}

func (m *memUsers) ClearRefreshToken(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		u.RefreshTokenHash = ""
	}
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if v, ok := set["fullname"].(string); ok {
		u.FullName = v
	}
	if v, ok := set["email"].(string); ok {
		u.Email = v
	}
	cp := *u
	cp.Password, cp.RefreshTokenHash = "", ""
	return &cp, nil
}

func (m *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memUsers) ChannelProfile(context.Context, string, primitive.ObjectID) (*models.ChannelProfile, error) {
	return nil, store.ErrNotFound
}

func (m *memUsers) WatchHistory(context.Context, primitive.ObjectID) ([]models.VideoWithOwner, error) {
	return []models.VideoWithOwner{}, nil
}

func (m *memUsers) DeleteForUser(context.Context, primitive.ObjectID) error { return nil }

func (m *memUsers) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.byID[id]
	return ok, nil
}

type memMedia struct{}

func (memMedia) Upload(_ context.Context, r io.Reader, _ services.UploadOptions) (*services.MediaAsset, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	id := primitive.NewObjectID().Hex()
	return &services.MediaAsset{URL: "https://cdn.test/" + id, PublicID: id}, nil
}

func (memMedia) Delete(context.Context, string, services.MediaKind) error { return nil }

type memTweets struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Tweet
}

func (m *memTweets) Create(_ context.Context, t *models.Tweet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = primitive.NewObjectID()
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *memTweets) FindByID(_ context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTweets) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Tweet{}
	for _, t := range m.byID {
		if t.Owner == owner {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memTweets) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	t.Content = content
	cp := *t
	return &cp, nil
}

func (m *memTweets) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

type noLikes struct{}

func (noLikes) DeleteForTargets(context.Context, models.LikeTarget, []primitive.ObjectID) error {
	return nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testEnv struct {
	users  *memUsers
	tweets *memTweets
	h      *Handler
	router chi.Router
}

func newTestEnv() *testEnv {
	codec, err := auth.NewCodec(auth.Config{
		AccessSecret:  []byte("handler-access"),
		AccessTTL:     15 * time.Minute,
		RefreshSecret: []byte("handler-refresh"),
		RefreshTTL:    24 * time.Hour,
	})
	if err != nil {
		panic(err)
	}
	log := zap.NewNop()
	users := newMemUsers()
	tweets := &memTweets{byID: map[primitive.ObjectID]*models.Tweet{}}

	h := New(Deps{
		Sessions:     services.NewSessionManager(users, codec),
		Accounts:     services.NewAccountService(users, users, memMedia{}, log),
		Tweets:       services.NewTweetService(tweets, noLikes{}, log),
		Health:       pingFunc(func(context.Context) error { return nil }),
		CookieSecure: true,
		Log:          log,
	})

	r := chi.NewRouter()
	r.Get("/healthcheck", h.Wrap(h.Healthcheck))
	r.Post("/users/register", h.Wrap(h.Register))
	r.Post("/users/login", h.Wrap(h.Login))
	r.Post("/users/refresh-token", h.Wrap(h.RefreshToken))
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(codec, users, log))
		r.Post("/users/logout", h.Wrap(h.Logout))
		r.Get("/users/current-user", h.Wrap(h.CurrentUser))
		r.Post("/tweets", h.Wrap(h.CreateTweet))
		r.Patch("/tweets/{tweetId}", h.Wrap(h.UpdateTweet))
		r.Delete("/tweets/{tweetId}", h.Wrap(h.DeleteTweet))
		r.Get("/tweets/user/{userId}", h.Wrap(h.UserTweets))
	})
	return &testEnv{users: users, tweets: tweets, h: h, router: r}
}

package routes

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/handlers"
	"github.com/AnshRaj112/vidtube-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	loginPath   = "/api/v1/users/login"
	refreshPath = "/api/v1/users/refresh-token"
)

var errNotFound = apperr.NotFound("Route not found")

type Options struct {
	Handler *handlers.Handler
	Tokens  middleware.AccessTokenVerifier
	Users   middleware.UserLoader
	Metrics *middleware.Metrics

	AllowedOrigins []string
	// TrustProxy rewrites the client address from proxy headers. Only set it
	// behind a proxy that overwrites them, or clients pick their own
	// rate-limit key.
	TrustProxy bool
	// Redis backs the shared rate limit. Without it each process limits
	// on its own.
	Redis             *redis.Client
	RateLimitRequests int
	RateLimitWindow   time.Duration
	Log               *zap.Logger
}

// New builds the application router.
func New(o Options) http.Handler {
	r := chi.NewRouter()
	h := o.Handler

	r.Use(chimw.RequestID)
	if o.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(o.Log))
	if o.Metrics != nil {
		r.Use(o.Metrics.Middleware)
	}
	r.Use(middleware.CORS(o.AllowedOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimit(o))
	r.Use(middleware.LoginRateLimit(loginPath, refreshPath))

	if o.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", o.Metrics.Handler())
	}

	guard := middleware.Authenticate(o.Tokens, o.Users, o.Log)
	uploads := middleware.UploadRateLimit()

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", h.Wrap(h.Healthcheck))

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", h.Wrap(h.Register))
			r.Post("/login", h.Wrap(h.Login))
			r.Post("/refresh-token", h.Wrap(h.RefreshToken))

			r.Group(func(r chi.Router) {
				r.Use(guard)
				r.Post("/logout", h.Wrap(h.Logout))
				r.Patch("/change-password", h.Wrap(h.ChangePassword))
				r.Get("/current-user", h.Wrap(h.CurrentUser))
				r.Patch("/update-account-details", h.Wrap(h.UpdateAccountDetails))
				r.With(uploads).Patch("/update-avatar", h.Wrap(h.UpdateAvatar))
				r.With(uploads).Patch("/update-cover-image", h.Wrap(h.UpdateCoverImage))
				r.Delete("/delete-user", h.Wrap(h.DeleteUser))
				r.Get("/c/{username}", h.Wrap(h.ChannelProfile))
				r.Get("/history", h.Wrap(h.WatchHistory))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(guard)

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", h.Wrap(h.ListVideos))
				r.With(uploads).Post("/", h.Wrap(h.PublishVideo))
				r.Get("/{videoId}", h.Wrap(h.GetVideo))
				r.With(uploads).Patch("/{videoId}", h.Wrap(h.UpdateVideo))
				r.Delete("/{videoId}", h.Wrap(h.DeleteVideo))
				r.Patch("/toggle/publish/{videoId}", h.Wrap(h.TogglePublishStatus))
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/{videoId}", h.Wrap(h.ListComments))
				r.Post("/{videoId}", h.Wrap(h.AddComment))
				r.Patch("/c/{commentId}", h.Wrap(h.UpdateComment))
				r.Delete("/c/{commentId}", h.Wrap(h.DeleteComment))
			})

			r.Route("/tweets", func(r chi.Router) {
				r.Post("/", h.Wrap(h.CreateTweet))
				r.Get("/user/{userId}", h.Wrap(h.UserTweets))
				r.Patch("/{tweetId}", h.Wrap(h.UpdateTweet))
				r.Delete("/{tweetId}", h.Wrap(h.DeleteTweet))
			})

			r.Route("/playlist", func(r chi.Router) {
				r.Post("/", h.Wrap(h.CreatePlaylist))
				r.Get("/user/{userId}", h.Wrap(h.UserPlaylists))
				r.Patch("/add/{videoId}/{playlistId}", h.Wrap(h.AddVideoToPlaylist))
				r.Patch("/remove/{videoId}/{playlistId}", h.Wrap(h.RemoveVideoFromPlaylist))
				r.Get("/{playlistId}", h.Wrap(h.GetPlaylist))
				r.Patch("/{playlistId}", h.Wrap(h.UpdatePlaylist))
				r.Delete("/{playlistId}", h.Wrap(h.DeletePlaylist))
			})

			r.Route("/likes", func(r chi.Router) {
				r.Post("/toggle/v/{videoId}", h.Wrap(h.ToggleVideoLike))
				r.Post("/toggle/c/{commentId}", h.Wrap(h.ToggleCommentLike))
				r.Post("/toggle/t/{tweetId}", h.Wrap(h.ToggleTweetLike))
				r.Get("/videos", h.Wrap(h.LikedVideos))
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Post("/c/{channelId}", h.Wrap(h.ToggleSubscription))
				r.Get("/c/{subscriberId}", h.Wrap(h.SubscribedChannels))
				r.Get("/u/{channelId}", h.Wrap(h.ChannelSubscribers))
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", h.Wrap(h.ChannelStats))
				r.Get("/videos", h.Wrap(h.ChannelVideos))
			})
		})
	})

	r.NotFound(h.Wrap(func(w http.ResponseWriter, r *http.Request) error {
		return errNotFound
	}))
	return r
}

// rateLimit picks the Redis-backed limiter when Redis is available.
func rateLimit(o Options) func(http.Handler) http.Handler {
	if o.Redis != nil {
		return middleware.RedisRateLimit(o.Redis, o.RateLimitRequests, o.RateLimitWindow, o.Log)
	}
	rps := float64(o.RateLimitRequests) / o.RateLimitWindow.Seconds()
	return middleware.GlobalRateLimit(rps, o.RateLimitRequests)
}

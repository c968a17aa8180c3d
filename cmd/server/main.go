package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/vidtube-backend/internal/auth"
	"github.com/AnshRaj112/vidtube-backend/internal/config"
	"github.com/AnshRaj112/vidtube-backend/internal/database"
	"github.com/AnshRaj112/vidtube-backend/internal/handlers"
	"github.com/AnshRaj112/vidtube-backend/internal/logger"
	"github.com/AnshRaj112/vidtube-backend/internal/middleware"
	"github.com/AnshRaj112/vidtube-backend/internal/routes"
	"github.com/AnshRaj112/vidtube-backend/internal/services"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Disconnect(client); err != nil {
			zl.Warn("mongodb disconnect failed", zap.Error(err))
		}
	}()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	var (
		rdb   *redis.Client
		cache services.Cache
	)
	if cfg.RedisURI != "" {
		rdb, err = database.ConnectRedis(ctx, cfg.RedisURI, zl)
		if err != nil {
			return err
		}
		defer func() { _ = database.DisconnectRedis(rdb) }()
		cache = services.NewRedisCache(rdb, services.StatsCacheTTL, zl)
	} else {
		zl.Info("REDIS_URI not set, using in-process rate limiting and no cache")
	}

	media, err := newMediaStore(ctx, cfg)
	if err != nil {
		return err
	}
	zl.Info("media store ready", zap.String("backend", cfg.MediaBackend))

	codec, err := auth.NewCodec(auth.Config{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		AccessTTL:     cfg.AccessTokenExpiry,
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		RefreshTTL:    cfg.RefreshTokenExpiry,
	})
	if err != nil {
		return err
	}

	users := store.NewUserStore(db)
	videos := store.NewVideoStore(db)
	comments := store.NewCommentStore(db)
	tweets := store.NewTweetStore(db)
	playlists := store.NewPlaylistStore(db)
	likes := store.NewLikeStore(db)
	subs := store.NewSubscriptionStore(db)

	videoService := services.NewVideoService(videos,
		services.NewVideoCleanup(comments, likes, playlists, users), users, media, zl)

	h := handlers.New(handlers.Deps{
		Sessions:       services.NewSessionManager(users, codec),
		Accounts:       services.NewAccountService(users, subs, media, zl),
		Videos:         videoService,
		Comments:       services.NewCommentService(comments, videos, likes, zl),
		Tweets:         services.NewTweetService(tweets, likes, zl),
		Playlists:      services.NewPlaylistService(playlists, videos),
		Likes:          services.NewLikeService(likes, videos, comments, tweets),
		Subscriptions:  services.NewSubscriptionService(subs, users),
		Dashboard:      services.NewDashboardService(store.NewStatsStore(db), videoService, cache),
		Health:         database.MongoPinger{Client: client},
		CookieSecure:   cfg.CookieSecure,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Log:            zl,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: routes.New(routes.Options{
			Handler:           h,
			Tokens:            codec,
			Users:             users,
			Metrics:           middleware.NewMetrics(reg),
			AllowedOrigins:    cfg.AllowedOrigins,
			TrustProxy:        cfg.TrustProxy,
			Redis:             rdb,
			RateLimitRequests: cfg.RateLimitRequests,
			RateLimitWindow:   cfg.RateLimitWindow,
			Log:               zl,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newMediaStore(ctx context.Context, cfg *config.Config) (services.MediaStore, error) {
	switch cfg.MediaBackend {
	case config.MediaBackendS3:
		return services.NewS3Service(ctx, services.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	default:
		return services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	}
}

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	MediaBackendCloudinary = "cloudinary"
	MediaBackendS3         = "s3"
)

type Config struct {
	Environment    string // ENV: production, development, etc.
	Port           string
	LogLevel       string
	MongoURI       string
	MongoDatabase  string
	RedisURI       string   // empty disables the Redis rate limiter
	AllowedOrigins []string // CORS origins allowed to send credentials
	TrustProxy     bool     // take the client IP from X-Forwarded-For / X-Real-IP

	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenSecret string
	RefreshTokenExpiry time.Duration
	CookieSecure       bool

	MediaBackend        string
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	S3Bucket            string
	S3Region            string
	S3Endpoint          string
	S3AccessKey         string
	S3SecretKey         string
	S3PublicURL         string

	MaxUploadBytes    int64
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "vidtube")
	v.SetDefault("REDIS_URI", "")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("ACCESS_TOKEN_EXPIRY", "1d")
	v.SetDefault("REFRESH_TOKEN_EXPIRY", "10d")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("MEDIA_BACKEND", MediaBackendCloudinary)
	v.SetDefault("CLOUDINARY_FOLDER", "ytbackend")
	v.SetDefault("MAX_UPLOAD_MB", 200)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
}

// Load reads configuration from the environment. Callers load .env first.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	accessExpiry, err := ParseExpiry(v.GetString("ACCESS_TOKEN_EXPIRY"))
	if err != nil {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRY: %w", err)
	}
	refreshExpiry, err := ParseExpiry(v.GetString("REFRESH_TOKEN_EXPIRY"))
	if err != nil {
		return nil, fmt.Errorf("REFRESH_TOKEN_EXPIRY: %w", err)
	}
	window, err := ParseExpiry(v.GetString("RATE_LIMIT_WINDOW"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW: %w", err)
	}

	cfg := &Config{
		Environment:    strings.ToLower(strings.TrimSpace(v.GetString("ENV"))),
		Port:           v.GetString("PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		MongoURI:       v.GetString("MONGODB_URI"),
		MongoDatabase:  v.GetString("MONGODB_DATABASE"),
		RedisURI:       v.GetString("REDIS_URI"),
		AllowedOrigins: parseOrigins(v.GetString("ALLOWED_ORIGINS")),
		TrustProxy:     v.GetBool("TRUST_PROXY"),

		AccessTokenSecret:  v.GetString("ACCESS_TOKEN_SECRET"),
		AccessTokenExpiry:  accessExpiry,
		RefreshTokenSecret: v.GetString("REFRESH_TOKEN_SECRET"),
		RefreshTokenExpiry: refreshExpiry,
		CookieSecure:       v.GetBool("COOKIE_SECURE"),

		MediaBackend:        strings.ToLower(strings.TrimSpace(v.GetString("MEDIA_BACKEND"))),
		CloudinaryName:      v.GetString("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    v.GetString("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: v.GetString("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    v.GetString("CLOUDINARY_FOLDER"),
		S3Bucket:            v.GetString("S3_BUCKET"),
		S3Region:            v.GetString("S3_REGION"),
		S3Endpoint:          strings.TrimSuffix(v.GetString("S3_ENDPOINT"), "/"),
		S3AccessKey:         v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:         v.GetString("S3_SECRET_KEY"),
		S3PublicURL:         strings.TrimSuffix(v.GetString("S3_PUBLIC_URL"), "/"),

		MaxUploadBytes:    v.GetInt64("MAX_UPLOAD_MB") << 20,
		RateLimitRequests: v.GetInt("RATE_LIMIT_REQUESTS"),
		RateLimitWindow:   window,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET is required"))
	}
	if c.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	switch c.MediaBackend {
	case MediaBackendCloudinary, MediaBackendS3:
	default:
		errs = append(errs, fmt.Errorf("MEDIA_BACKEND %q is not supported", c.MediaBackend))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_MB must be positive"))
	}
	return errors.Join(errs...)
}

// ParseExpiry accepts Go durations ("15m", "36h"), whole days ("10d") and bare seconds ("900").
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	var d time.Duration
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		d = time.Duration(n) * 24 * time.Hour
	} else if secs, err := strconv.Atoi(s); err == nil {
		d = time.Duration(secs) * time.Second
	} else {
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" && !containsOrigin(out, part) {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

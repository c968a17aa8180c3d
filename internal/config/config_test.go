package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setSecrets(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenExpiry)
	assert.Equal(t, 10*24*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, MediaBackendCloudinary, cfg.MediaBackend)
	assert.Equal(t, int64(200)<<20, cfg.MaxUploadBytes)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	setSecrets(t)
	t.Setenv("ENV", " Production ")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "15m")
	t.Setenv("REFRESH_TOKEN_EXPIRY", "604800")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://A.example ,https://b.example")
	t.Setenv("MEDIA_BACKEND", "S3")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, MediaBackendS3, cfg.MediaBackend)
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	t.Setenv("REFRESH_TOKEN_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_SECRET is required")
	assert.Contains(t, err.Error(), "REFRESH_TOKEN_SECRET is required")
}

func TestLoad_SameSecrets(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "shared")
	t.Setenv("REFRESH_TOKEN_SECRET", "shared")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestLoad_BadExpiry(t *testing.T) {
	setSecrets(t)
	t.Setenv("ACCESS_TOKEN_EXPIRY", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"1d", 24 * time.Hour, false},
		{"10d", 240 * time.Hour, false},
		{"900", 900 * time.Second, false},
		{"36h", 36 * time.Hour, false},
		{"1h30m", 90 * time.Minute, false},
		{"", 0, true},
		{"0", 0, true},
		{"-5m", 0, true},
		{"xd", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseExpiry(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

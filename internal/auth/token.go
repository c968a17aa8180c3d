// Package auth issues and verifies the access and refresh tokens that back
// a user session. Both are HS256 JWTs signed with independent secrets.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMalformed        = errors.New("token is malformed")
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token has expired")
)

// UserClaims is the identity embedded in an access token.
type UserClaims struct {
	ID       string
	Username string
	FullName string
	Email    string
}

type AccessClaims struct {
	UserID   string `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

type Config struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
}

type Codec struct {
	cfg Config
	now func() time.Time
}

type Option func(*Codec)

// WithClock overrides the time source used for iat/exp and verification.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(cfg Config, opts ...Option) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("auth: token secrets must be set")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("auth: token lifetimes must be positive")
	}
	c := &Codec{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Codec) AccessTTL() time.Duration  { return c.cfg.AccessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.cfg.RefreshTTL }

func (c *Codec) IssueAccessToken(u UserClaims) (string, error) {
	now := c.now()
	claims := AccessClaims{
		UserID:   u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.AccessTTL)),
		},
	}
	return c.sign(claims, c.cfg.AccessSecret)
}

// IssueRefreshToken carries only the user id. The jti keeps tokens issued
// within the same second distinct.
func (c *Codec) IssueRefreshToken(userID string) (string, error) {
	now := c.now()
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.RefreshTTL)),
		},
	}
	return c.sign(claims, c.cfg.RefreshSecret)
}

func (c *Codec) VerifyAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.verify(token, c.cfg.AccessSecret, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

func (c *Codec) VerifyRefreshToken(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.verify(token, c.cfg.RefreshSecret, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

func (c *Codec) sign(claims jwt.Claims, secret []byte) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

func (c *Codec) verify(token string, secret []byte, claims jwt.Claims) error {
	if token == "" {
		return ErrMalformed
	}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		// Bad signature, unexpected alg, or a claim that fails validation.
		return ErrInvalidSignature
	}
}

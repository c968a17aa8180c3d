package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/auth"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/response"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const AccessTokenCookie = "accessToken"

type AccessTokenVerifier interface {
	VerifyAccessToken(token string) (*auth.AccessClaims, error)
}

// UserLoader loads a user without password or refresh token. A missing user
// is reported as store.ErrNotFound.
type UserLoader interface {
	FindProfileByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type userKey struct{}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// CurrentUser returns the user attached by Authenticate.
func CurrentUser(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey{}).(*models.User)
	return u, ok && u != nil
}

// Authenticate admits a request only with a valid access token for an
// existing user. Every rejection is the same 401; the cause is logged.
func Authenticate(tokens AccessTokenVerifier, users UserLoader, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(reason string, err error) {
				log.Debug("request rejected by auth guard",
					zap.String("reason", reason),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				response.Error(w, apperr.Unauthenticated("Unauthorized request"))
			}

			token := extractToken(r)
			if token == "" {
				reject("missing token", nil)
				return
			}
			claims, err := tokens.VerifyAccessToken(token)
			if err != nil {
				reject("invalid token", err)
				return
			}
			id, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				reject("invalid subject", err)
				return
			}
			u, err := users.FindProfileByID(r.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				reject("user no longer exists", err)
				return
			}
			if err != nil {
				log.Error("auth guard user lookup failed",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				response.Error(w, apperr.Internal(err, "failed to load user"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// extractToken reads the access token cookie, then the Authorization header.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/auth"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"github.com/AnshRaj112/vidtube-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrMissingToken       = errors.New("refresh token is missing")
	ErrInvalidToken       = errors.New("refresh token is invalid or expired")
	ErrTokenMismatch      = errors.New("refresh token has been used or revoked")
	ErrInvalidCredentials = errors.New("invalid user credentials")
	ErrUserNotFound       = errors.New("user does not exist")
)

// CredentialStore is the part of the user store the session core needs.
// Nothing outside SessionManager writes the refresh token.
type CredentialStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByLogin(ctx context.Context, username, email string) (*models.User, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, digest string) error
	SwapRefreshToken(ctx context.Context, id primitive.ObjectID, oldDigest, newDigest string) error
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
}

// Session is the result of a login or refresh. User is sanitized.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// SessionManager runs login, refresh and logout. Each user has at most one
// valid refresh token; issuing a new one invalidates the previous one.
type SessionManager struct {
	users CredentialStore
	codec *auth.Codec
}

func NewSessionManager(users CredentialStore, codec *auth.Codec) *SessionManager {
	return &SessionManager{users: users, codec: codec}
}

func (m *SessionManager) Codec() *auth.Codec { return m.codec }

// Login checks the password and starts a new session, replacing any other.
func (m *SessionManager) Login(ctx context.Context, username, email, password string) (*Session, error) {
	u, err := m.users.FindByLogin(ctx, utils.NormalizeUsername(username), utils.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrUserNotFound, "Invalid user credentials")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user")
	}

	ok, err := utils.VerifyPassword(password, u.Password)
	if err != nil {
		return nil, apperr.Internal(err, "failed to verify password")
	}
	if !ok {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrInvalidCredentials, "Invalid user credentials")
	}

	access, refresh, err := m.issuePair(u)
	if err != nil {
		return nil, err
	}
	if err := m.users.SetRefreshToken(ctx, u.ID, digest(refresh)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrUserNotFound, "Invalid user credentials")
		}
		return nil, apperr.Internal(err, "failed to store session")
	}

	return &Session{User: sanitize(u), AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates the session. The presented token must verify and be the
// one currently stored; the swap to the new token is a single conditional
// update so two racing refreshes of the same token cannot both succeed.
func (m *SessionManager) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrMissingToken, "Unauthorized request")
	}

	claims, err := m.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrInvalidToken, "Invalid refresh token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrInvalidToken, "Invalid refresh token")
	}

	u, err := m.users.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrUserNotFound, "Invalid refresh token")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load user")
	}

	presented := digest(refreshToken)
	if subtle.ConstantTimeCompare([]byte(presented), []byte(u.RefreshTokenHash)) != 1 {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrTokenMismatch, "Refresh token is expired or used")
	}

	access, refresh, err := m.issuePair(u)
	if err != nil {
		return nil, err
	}
	if err := m.users.SwapRefreshToken(ctx, u.ID, presented, digest(refresh)); err != nil {
		if errors.Is(err, store.ErrStale) || errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Wrap(apperr.KindUnauthenticated, ErrTokenMismatch, "Refresh token is expired or used")
		}
		return nil, apperr.Internal(err, "failed to rotate session")
	}

	return &Session{User: sanitize(u), AccessToken: access, RefreshToken: refresh}, nil
}

// Logout clears the stored refresh token. Logging out twice is fine.
func (m *SessionManager) Logout(ctx context.Context, userID primitive.ObjectID) error {
	if err := m.users.ClearRefreshToken(ctx, userID); err != nil {
		return apperr.Internal(err, "failed to end session")
	}
	return nil
}

func (m *SessionManager) issuePair(u *models.User) (string, string, error) {
	access, err := m.codec.IssueAccessToken(auth.UserClaims{
		ID:       u.ID.Hex(),
		Username: u.Username,
		FullName: u.FullName,
		Email:    u.Email,
	})
	if err != nil {
		return "", "", apperr.Internal(err, "failed to issue access token")
	}
	refresh, err := m.codec.IssueRefreshToken(u.ID.Hex())
	if err != nil {
		return "", "", apperr.Internal(err, "failed to issue refresh token")
	}
	return access, refresh, nil
}

// digest is what the store keeps instead of the refresh token itself.
func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func sanitize(u *models.User) *models.User {
	out := *u
	out.Password = ""
	out.RefreshTokenHash = ""
	return &out
}

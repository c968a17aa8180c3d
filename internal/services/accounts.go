package services

import (
	"context"
	"errors"
	"io"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"github.com/AnshRaj112/vidtube-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// File is an uploaded file on its way to the media store.
type File struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

type AccountStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByLogin(ctx context.Context, username, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]models.VideoWithOwner, error)
}

// SubscriptionCleaner drops a deleted account's subscriptions.
type SubscriptionCleaner interface {
	DeleteForUser(ctx context.Context, id primitive.ObjectID) error
}

type AccountService struct {
	users AccountStore
	subs  SubscriptionCleaner
	media MediaStore
	log   *zap.Logger
}

func NewAccountService(users AccountStore, subs SubscriptionCleaner, media MediaStore, log *zap.Logger) *AccountService {
	return &AccountService{users: users, subs: subs, media: media, log: log}
}

type RegisterInput struct {
	Username   string
	Email      string
	FullName   string
	Password   string
	Avatar     *File
	CoverImage *File
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := utils.ValidateUsername(in.Username); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	username := utils.NormalizeUsername(in.Username)
	email := utils.NormalizeEmail(in.Email)

	_, err := s.users.FindByLogin(ctx, username, email)
	if err == nil {
		return nil, apperr.Conflict("User with email or username already exists")
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal(err, "failed to check existing users")
	}

	if in.Avatar == nil {
		return nil, apperr.Validation("Avatar file is required")
	}
	if in.CoverImage == nil {
		return nil, apperr.Validation("Cover image file is required")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err, "failed to hash password")
	}

	avatar, err := uploadFile(ctx, s.media, in.Avatar, "avatars", MediaImage)
	if err != nil {
		return nil, err
	}
	cover, err := uploadFile(ctx, s.media, in.CoverImage, "covers", MediaImage)
	if err != nil {
		discardAsset(s.media, s.log, avatar.PublicID, MediaImage)
		return nil, err
	}

	u := &models.User{
		Username:           username,
		Email:              email,
		FullName:           in.FullName,
		Avatar:             avatar.URL,
		AvatarPublicID:     avatar.PublicID,
		CoverImage:         cover.URL,
		CoverImagePublicID: cover.PublicID,
		Password:           hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		discardAsset(s.media, s.log, avatar.PublicID, MediaImage)
		discardAsset(s.media, s.log, cover.PublicID, MediaImage)
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("User with email or username already exists")
		}
		return nil, apperr.Internal(err, "failed to create user")
	}

	s.log.Info("user registered", zap.String("user_id", u.ID.Hex()), zap.String("username", u.Username))
	return sanitize(u), nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return apperr.Internal(err, "failed to load user")
	}

	ok, err := utils.VerifyPassword(oldPassword, u.Password)
	if err != nil {
		return apperr.Internal(err, "failed to verify password")
	}
	if !ok {
		return apperr.Validation("Invalid old password")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err, "failed to hash password")
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return apperr.Internal(err, "failed to update password")
	}
	return nil
}

func (s *AccountService) UpdateDetails(ctx context.Context, userID primitive.ObjectID, fullName, email string) (*models.User, error) {
	u, err := s.users.UpdateProfile(ctx, userID, bson.M{
		"fullname": fullName,
		"email":    utils.NormalizeEmail(email),
	})
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict("Email is already in use")
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.NotFound("User not found")
	case err != nil:
		return nil, apperr.Internal(err, "failed to update account")
	}
	return u, nil
}

// UpdateAvatar uploads the new avatar, stores it, then removes the old asset.
func (s *AccountService) UpdateAvatar(ctx context.Context, current *models.User, file *File) (*models.User, error) {
	return s.replaceImage(ctx, current, file, "avatars", "avatar", "avatarPublicId", current.AvatarPublicID)
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, current *models.User, file *File) (*models.User, error) {
	return s.replaceImage(ctx, current, file, "covers", "coverImage", "coverImagePublicId", current.CoverImagePublicID)
}

func (s *AccountService) replaceImage(ctx context.Context, current *models.User, file *File, folder, urlField, idField, oldPublicID string) (*models.User, error) {
	if file == nil {
		return nil, apperr.Validation("File is required")
	}
	asset, err := uploadFile(ctx, s.media, file, folder, MediaImage)
	if err != nil {
		return nil, err
	}

	u, err := s.users.UpdateProfile(ctx, current.ID, bson.M{urlField: asset.URL, idField: asset.PublicID})
	if err != nil {
		discardAsset(s.media, s.log, asset.PublicID, MediaImage)
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err, "failed to update user")
	}

	discardAsset(s.media, s.log, oldPublicID, MediaImage)
	return u, nil
}

// DeleteAccount removes the user, their subscriptions and their images.
func (s *AccountService) DeleteAccount(ctx context.Context, u *models.User) error {
	if err := s.users.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal(err, "failed to delete user")
	}
	if err := s.subs.DeleteForUser(ctx, u.ID); err != nil {
		s.log.Warn("failed to remove subscriptions of deleted user", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}
	discardAsset(s.media, s.log, u.AvatarPublicID, MediaImage)
	discardAsset(s.media, s.log, u.CoverImagePublicID, MediaImage)
	s.log.Info("user deleted", zap.String("user_id", u.ID.Hex()))
	return nil
}

func (s *AccountService) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*models.ChannelProfile, error) {
	username = utils.NormalizeUsername(username)
	if username == "" {
		return nil, apperr.Validation("Username is missing")
	}
	p, err := s.users.ChannelProfile(ctx, username, viewer)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Channel does not exist")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to load channel")
	}
	return p, nil
}

func (s *AccountService) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]models.VideoWithOwner, error) {
	h, err := s.users.WatchHistory(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load watch history")
	}
	return h, nil
}

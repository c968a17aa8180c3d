package services

import (
	"context"

	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type commentPurger interface {
	DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type likePurger interface {
	DeleteForTargets(ctx context.Context, target models.LikeTarget, ids []primitive.ObjectID) error
}

type playlistPurger interface {
	PullVideoEverywhere(ctx context.Context, videoID primitive.ObjectID) error
}

type historyPurger interface {
	PullFromWatchHistories(ctx context.Context, videoID primitive.ObjectID) error
}

type storeCleanup struct {
	comments  commentPurger
	likes     likePurger
	playlists playlistPurger
	users     historyPurger
}

// NewVideoCleanup combines the stores that reference videos.
func NewVideoCleanup(comments commentPurger, likes likePurger, playlists playlistPurger, users historyPurger) VideoCleanup {
	return &storeCleanup{comments: comments, likes: likes, playlists: playlists, users: users}
}

func (c *storeCleanup) DeleteCommentsOf(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return c.comments.DeleteByVideo(ctx, videoID)
}

func (c *storeCleanup) DeleteLikesOf(ctx context.Context, target models.LikeTarget, ids []primitive.ObjectID) error {
	return c.likes.DeleteForTargets(ctx, target, ids)
}

func (c *storeCleanup) PullFromPlaylists(ctx context.Context, videoID primitive.ObjectID) error {
	return c.playlists.PullVideoEverywhere(ctx, videoID)
}

func (c *storeCleanup) PullFromHistories(ctx context.Context, videoID primitive.ObjectID) error {
	return c.users.PullFromWatchHistories(ctx, videoID)
}

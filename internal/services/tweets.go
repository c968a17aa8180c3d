package services

import (
	"context"
	"errors"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"github.com/AnshRaj112/vidtube-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type TweetStore interface {
	Create(ctx context.Context, t *models.Tweet) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Tweet, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type TweetService struct {
	tweets TweetStore
	likes  likePurger
	log    *zap.Logger
}

func NewTweetService(tweets TweetStore, likes likePurger, log *zap.Logger) *TweetService {
	return &TweetService{tweets: tweets, likes: likes, log: log}
}

func (s *TweetService) Create(ctx context.Context, owner primitive.ObjectID, content string) (*models.Tweet, error) {
	t := &models.Tweet{Content: content, Owner: owner}
	if err := s.tweets.Create(ctx, t); err != nil {
		return nil, apperr.Internal(err, "failed to create tweet")
	}
	return t, nil
}

func (s *TweetService) ListByUser(ctx context.Context, owner primitive.ObjectID) ([]models.Tweet, error) {
	ts, err := s.tweets.ListByOwner(ctx, owner)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list tweets")
	}
	return ts, nil
}

func (s *TweetService) Update(ctx context.Context, id, actor primitive.ObjectID, content string) (*models.Tweet, error) {
	if err := s.checkOwner(ctx, id, actor); err != nil {
		return nil, err
	}
	t, err := s.tweets.UpdateContent(ctx, id, content)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Tweet not found")
	}
	if err != nil {
		return nil, apperr.Internal(err, "failed to update tweet")
	}
	return t, nil
}

func (s *TweetService) Delete(ctx context.Context, id, actor primitive.ObjectID) error {
	if err := s.checkOwner(ctx, id, actor); err != nil {
		return err
	}
	if err := s.tweets.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("Tweet not found")
		}
		return apperr.Internal(err, "failed to delete tweet")
	}
	if err := s.likes.DeleteForTargets(ctx, models.LikeTweet, []primitive.ObjectID{id}); err != nil {
		s.log.Warn("failed to delete tweet likes", zap.String("tweet_id", id.Hex()), zap.Error(err))
	}
	return nil
}

func (s *TweetService) checkOwner(ctx context.Context, id, actor primitive.ObjectID) error {
	t, err := s.tweets.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("Tweet not found")
	}
	if err != nil {
		return apperr.Internal(err, "failed to load tweet")
	}
	return RequireOwner(t.Owner, actor, "tweet")
}

package services

import (
	"context"

	"github.com/AnshRaj112/vidtube-backend/internal/apperr"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LikeStore interface {
	Toggle(ctx context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (bool, error)
	LikedVideos(ctx context.Context, userID primitive.ObjectID) ([]models.LikedVideo, error)
}

type LikeService struct {
	likes   LikeStore
	targets map[models.LikeTarget]ExistenceChecker
}

// NewLikeService takes one existence checker per likeable collection.
func NewLikeService(likes LikeStore, videos, comments, tweets ExistenceChecker) *LikeService {
	return &LikeService{
		likes: likes,
		targets: map[models.LikeTarget]ExistenceChecker{
			models.LikeVideo:   videos,
			models.LikeComment: comments,
			models.LikeTweet:   tweets,
		},
	}
}

var likeTargetNames = map[models.LikeTarget]string{
	models.LikeVideo:   "Video",
	models.LikeComment: "Comment",
	models.LikeTweet:   "Tweet",
}

// Toggle likes the target or removes an existing like and reports the new state.
func (s *LikeService) Toggle(ctx context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (bool, error) {
	checker, ok := s.targets[target]
	if !ok {
		return false, apperr.Validation("Unknown like target")
	}
	if err := requireExists(ctx, checker, targetID, likeTargetNames[target]); err != nil {
		return false, err
	}
	liked, err := s.likes.Toggle(ctx, target, targetID, userID)
	if err != nil {
		return false, apperr.Internal(err, "failed to toggle like")
	}
	return liked, nil
}

func (s *LikeService) LikedVideos(ctx context.Context, userID primitive.ObjectID) ([]models.LikedVideo, error) {
	vs, err := s.likes.LikedVideos(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load liked videos")
	}
	return vs, nil
}

type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error)
	Subscribers(ctx context.Context, channel primitive.ObjectID) ([]models.SubscriptionEntry, error)
	Channels(ctx context.Context, subscriber primitive.ObjectID) ([]models.SubscriptionEntry, error)
}

type SubscriptionService struct {
	subs  SubscriptionStore
	users ExistenceChecker
}

func NewSubscriptionService(subs SubscriptionStore, users ExistenceChecker) *SubscriptionService {
	return &SubscriptionService{subs: subs, users: users}
}

func (s *SubscriptionService) Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	if subscriber == channel {
		return false, apperr.Validation("You cannot subscribe to your own channel")
	}
	if err := requireExists(ctx, s.users, channel, "Channel"); err != nil {
		return false, err
	}
	subscribed, err := s.subs.Toggle(ctx, subscriber, channel)
	if err != nil {
		return false, apperr.Internal(err, "failed to toggle subscription")
	}
	return subscribed, nil
}

func (s *SubscriptionService) Subscribers(ctx context.Context, channel primitive.ObjectID) ([]models.SubscriptionEntry, error) {
	out, err := s.subs.Subscribers(ctx, channel)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list subscribers")
	}
	return out, nil
}

func (s *SubscriptionService) Channels(ctx context.Context, subscriber primitive.ObjectID) ([]models.SubscriptionEntry, error) {
	out, err := s.subs.Channels(ctx, subscriber)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list subscribed channels")
	}
	return out, nil
}

type StatsStore interface {
	ChannelStats(ctx context.Context, owner primitive.ObjectID) (*models.ChannelStats, error)
}

type DashboardService struct {
	stats  StatsStore
	videos *VideoService
	cache  Cache
}

// NewDashboardService builds the dashboard. cache may be nil.
func NewDashboardService(stats StatsStore, videos *VideoService, cache Cache) *DashboardService {
	return &DashboardService{stats: stats, videos: videos, cache: cache}
}

// Stats aggregates the channel totals, served from cache for up to a minute.
func (s *DashboardService) Stats(ctx context.Context, owner primitive.ObjectID) (*models.ChannelStats, error) {
	key := CacheKey("stats", owner.Hex())
	if s.cache != nil {
		var cached models.ChannelStats
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	st, err := s.stats.ChannelStats(ctx, owner)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load channel stats")
	}
	if s.cache != nil {
		s.cache.Set(ctx, key, st)
	}
	return st, nil
}

func (s *DashboardService) Videos(ctx context.Context, owner primitive.ObjectID) ([]models.Video, error) {
	return s.videos.ChannelVideos(ctx, owner)
}

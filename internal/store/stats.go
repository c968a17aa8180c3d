package store

import (
	"context"
	"fmt"

	"github.com/AnshRaj112/vidtube-backend/internal/database"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// StatsStore computes dashboard aggregates across collections.
type StatsStore struct {
	videos *mongo.Collection
	likes  *mongo.Collection
	subs   *mongo.Collection
}

func NewStatsStore(db *mongo.Database) *StatsStore {
	return &StatsStore{
		videos: db.Collection(database.Videos),
		likes:  db.Collection(database.Likes),
		subs:   db.Collection(database.Subscriptions),
	}
}

func (s *StatsStore) ChannelStats(ctx context.Context, owner primitive.ObjectID) (*models.ChannelStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "owner", Value: owner}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "ids", Value: bson.D{{Key: "$push", Value: "$_id"}}},
			{Key: "totalVideos", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalViews", Value: bson.D{{Key: "$sum", Value: "$views"}}},
			{Key: "totalDuration", Value: bson.D{{Key: "$sum", Value: "$duration"}}},
		}}},
	}
	cur, err := s.videos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("video stats: %w", err)
	}
	var groups []struct {
		IDs           []primitive.ObjectID `bson:"ids"`
		TotalVideos   int64                `bson:"totalVideos"`
		TotalViews    int64                `bson:"totalViews"`
		TotalDuration float64              `bson:"totalDuration"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}

	stats := &models.ChannelStats{}
	if len(groups) > 0 {
		g := groups[0]
		stats.TotalVideos = g.TotalVideos
		stats.TotalViews = g.TotalViews
		stats.TotalDuration = g.TotalDuration
		if len(g.IDs) > 0 {
			stats.TotalLikes, err = s.likes.CountDocuments(ctx, bson.M{"video": bson.M{"$in": g.IDs}})
			if err != nil {
				return nil, err
			}
		}
	}

	stats.TotalSubscribers, err = s.subs.CountDocuments(ctx, bson.M{"channel": owner})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

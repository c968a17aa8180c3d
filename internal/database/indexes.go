package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes every store relies on. Called on startup
// from main after Mongo has connected; creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		Users: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName("uniq_username").SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("uniq_email").SetUnique(true)},
			{Keys: bson.D{{Key: "fullname", Value: 1}}, Options: options.Index().SetName("idx_fullname")},
		},
		Videos: {
			// Channel listings and the public feed both sort on createdAt.
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_owner_created")},
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_published_created")},
		},
		Comments: {
			{Keys: bson.D{{Key: "video", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_video_created")},
		},
		Tweets: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_owner_created")},
		},
		Playlists: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("idx_owner_created")},
		},
		Likes: {
			{Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "video", Value: 1}}, Options: options.Index().SetName("idx_likedby_video")},
			{Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "comment", Value: 1}}, Options: options.Index().SetName("idx_likedby_comment")},
			{Keys: bson.D{{Key: "likedBy", Value: 1}, {Key: "tweet", Value: 1}}, Options: options.Index().SetName("idx_likedby_tweet")},
			{Keys: bson.D{{Key: "video", Value: 1}}, Options: options.Index().SetName("idx_video")},
		},
		Subscriptions: {
			{Keys: bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}}, Options: options.Index().SetName("uniq_subscriber_channel").SetUnique(true)},
			{Keys: bson.D{{Key: "channel", Value: 1}}, Options: options.Index().SetName("idx_channel")},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

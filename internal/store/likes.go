package store

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshRaj112/vidtube-backend/internal/database"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LikeStore struct {
	col *mongo.Collection
}

func NewLikeStore(db *mongo.Database) *LikeStore {
	return &LikeStore{col: db.Collection(database.Likes)}
}

// Toggle removes the user's like on target if present and creates it
// otherwise. It reports whether the target is liked afterwards.
func (s *LikeStore) Toggle(ctx context.Context, target models.LikeTarget, targetID, userID primitive.ObjectID) (bool, error) {
	filter := bson.M{string(target): targetID, "likedBy": userID}

	res, err := s.col.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	like := models.Like{ID: primitive.NewObjectID(), LikedBy: userID, CreatedAt: now, UpdatedAt: now}
	id := targetID
	switch target {
	case models.LikeVideo:
		like.Video = &id
	case models.LikeComment:
		like.Comment = &id
	case models.LikeTweet:
		like.Tweet = &id
	default:
		return false, fmt.Errorf("unknown like target %q", target)
	}
	if _, err := s.col.InsertOne(ctx, like); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteForTargets removes every like pointing at one of ids.
func (s *LikeStore) DeleteForTargets(ctx context.Context, target models.LikeTarget, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.col.DeleteMany(ctx, bson.M{string(target): bson.M{"$in": ids}})
	return err
}

// LikedVideos lists the videos a user liked, most recent like first.
// Likes on videos that no longer exist are skipped.
func (s *LikeStore) LikedVideos(ctx context.Context, userID primitive.ObjectID) ([]models.LikedVideo, error) {
	videoPipeline := bson.A{}
	for _, st := range ownerLookup() {
		videoPipeline = append(videoPipeline, st)
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "likedBy", Value: userID},
			{Key: "video", Value: bson.D{{Key: "$exists", Value: true}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.Videos},
			{Key: "localField", Value: "video"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "video"},
			{Key: "pipeline", Value: videoPipeline},
		}}},
		{{Key: "$unwind", Value: "$video"}},
	}

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("liked videos: %w", err)
	}
	out := []models.LikedVideo{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

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

type SubscriptionStore struct {
	col *mongo.Collection
}

func NewSubscriptionStore(db *mongo.Database) *SubscriptionStore {
	return &SubscriptionStore{col: db.Collection(database.Subscriptions)}
}

// Toggle subscribes or unsubscribes and reports the resulting state.
func (s *SubscriptionStore) Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	filter := bson.M{"subscriber": subscriber, "channel": channel}
	res, err := s.col.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	if res.DeletedCount > 0 {
		return false, nil
	}

	now := time.Now().UTC()
	_, err = s.col.InsertOne(ctx, models.Subscription{
		ID:         primitive.NewObjectID(),
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent toggle already subscribed.
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Subscribers lists the users following channel.
func (s *SubscriptionStore) Subscribers(ctx context.Context, channel primitive.ObjectID) ([]models.SubscriptionEntry, error) {
	return s.list(ctx, "channel", channel, "subscriber")
}

// Channels lists the channels subscriber follows.
func (s *SubscriptionStore) Channels(ctx context.Context, subscriber primitive.ObjectID) ([]models.SubscriptionEntry, error) {
	return s.list(ctx, "subscriber", subscriber, "channel")
}

func (s *SubscriptionStore) CountSubscribers(ctx context.Context, channel primitive.ObjectID) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"channel": channel})
}

// DeleteForUser removes every subscription in which id takes part.
func (s *SubscriptionStore) DeleteForUser(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"subscriber": id},
		bson.M{"channel": id},
	}})
	return err
}

func (s *SubscriptionStore) list(ctx context.Context, matchField string, id primitive.ObjectID, joinField string) ([]models.SubscriptionEntry, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: matchField, Value: id}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.Users},
			{Key: "localField", Value: joinField},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "user"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "username", Value: 1},
					{Key: "fullname", Value: 1},
					{Key: "avatar", Value: 1},
				}}},
			}},
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.D{
			{Key: "user", Value: 1},
			{Key: "createdAt", Value: 1},
		}}},
	}

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	out := []models.SubscriptionEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package store

import (
	"context"
	"time"

	"github.com/AnshRaj112/vidtube-backend/internal/database"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TweetStore struct {
	col *mongo.Collection
}

func NewTweetStore(db *mongo.Database) *TweetStore {
	return &TweetStore{col: db.Collection(database.Tweets)}
}

func (s *TweetStore) Create(ctx context.Context, t *models.Tweet) error {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, t)
	return err
}

func (s *TweetStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	var t models.Tweet
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *TweetStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *TweetStore) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Tweet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Tweet{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TweetStore) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}}

	var t models.Tweet
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *TweetStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

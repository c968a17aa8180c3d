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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentStore struct {
	col *mongo.Collection
}

func NewCommentStore(db *mongo.Database) *CommentStore {
	return &CommentStore{col: db.Collection(database.Comments)}
}

func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, c)
	return err
}

func (s *CommentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *CommentStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

// ListByVideo returns one page of a video's comments, newest first.
func (s *CommentStore) ListByVideo(ctx context.Context, videoID primitive.ObjectID, p Page) ([]models.CommentWithOwner, int64, error) {
	p = p.Normalize()
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "video", Value: videoID}}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	for _, st := range ownerLookup() {
		pipeline = append(pipeline, st)
	}
	pipeline = paginate(pipeline, p)

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	var res []facetResult[models.CommentWithOwner]
	if err := cur.All(ctx, &res); err != nil {
		return nil, 0, err
	}
	if len(res) == 0 || res[0].Docs == nil {
		return []models.CommentWithOwner{}, 0, nil
	}
	return res[0].Docs, res[0].count(), nil
}

func (s *CommentStore) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}}

	var c models.Comment
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c); err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *CommentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByVideo removes all comments on a video and returns their ids.
func (s *CommentStore) DeleteByVideo(ctx context.Context, videoID primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"video": videoID}
	ids := []primitive.ObjectID{}

	cur, err := s.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if _, err := s.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, err
	}
	return ids, nil
}

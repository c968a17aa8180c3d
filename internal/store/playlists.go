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

type PlaylistStore struct {
	col *mongo.Collection
}

func NewPlaylistStore(db *mongo.Database) *PlaylistStore {
	return &PlaylistStore{col: db.Collection(database.Playlists)}
}

func (s *PlaylistStore) Create(ctx context.Context, p *models.Playlist) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Videos == nil {
		p.Videos = []primitive.ObjectID{}
	}
	_, err := s.col.InsertOne(ctx, p)
	return err
}

func (s *PlaylistStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	var p models.Playlist
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Detail returns the playlist with its videos and owner resolved.
func (s *PlaylistStore) Detail(ctx context.Context, id primitive.ObjectID) (*models.PlaylistDetail, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.Videos},
			{Key: "localField", Value: "videos"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "videos"},
		}}},
	}
	for _, st := range ownerLookup() {
		pipeline = append(pipeline, st)
	}

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("playlist detail: %w", err)
	}
	var out []models.PlaylistDetail
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	if out[0].Videos == nil {
		out[0].Videos = []models.Video{}
	}
	return &out[0], nil
}

func (s *PlaylistStore) ListByOwner(ctx context.Context, owner primitive.ObjectID, p Page) (*models.PlaylistPage, error) {
	p = p.Normalize()
	filter := bson.M{"owner": owner}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(p.Limit)
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	playlists := []models.Playlist{}
	if err := cur.All(ctx, &playlists); err != nil {
		return nil, err
	}
	return &models.PlaylistPage{Playlists: playlists, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

func (s *PlaylistStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Playlist, error) {
	set["updatedAt"] = time.Now().UTC()
	return s.findAndUpdate(ctx, id, bson.M{"$set": set})
}

func (s *PlaylistStore) AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return s.findAndUpdate(ctx, id, bson.M{
		"$addToSet": bson.M{"videos": videoID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (s *PlaylistStore) RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (*models.Playlist, error) {
	return s.findAndUpdate(ctx, id, bson.M{
		"$pull": bson.M{"videos": videoID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

// PullVideoEverywhere drops a deleted video from every playlist.
func (s *PlaylistStore) PullVideoEverywhere(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := s.col.UpdateMany(ctx, bson.M{"videos": videoID}, bson.M{"$pull": bson.M{"videos": videoID}})
	return err
}

func (s *PlaylistStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PlaylistStore) findAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Playlist, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Playlist
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/AnshRaj112/vidtube-backend/internal/database"
	"github.com/AnshRaj112/vidtube-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VideoQuery filters the video listing.
type VideoQuery struct {
	Page
	Search   string
	SortBy   string // createdAt, views, duration or title
	Asc      bool
	Owner    *primitive.ObjectID
	Unlisted bool // include unpublished videos
}

var videoSortFields = map[string]bool{
	"createdAt": true,
	"views":     true,
	"duration":  true,
	"title":     true,
}

// ValidVideoSort reports whether field can be used in VideoQuery.SortBy.
func ValidVideoSort(field string) bool {
	return videoSortFields[field]
}

type VideoStore struct {
	col *mongo.Collection
}

func NewVideoStore(db *mongo.Database) *VideoStore {
	return &VideoStore{col: db.Collection(database.Videos)}
}

func (s *VideoStore) Create(ctx context.Context, v *models.Video) error {
	now := time.Now().UTC()
	v.ID = primitive.NewObjectID()
	v.CreatedAt = now
	v.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, v)
	return err
}

func (s *VideoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var v models.Video
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (s *VideoStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

func (s *VideoStore) List(ctx context.Context, q VideoQuery) (*models.VideoPage, error) {
	q.Page = q.Page.Normalize()

	match := bson.D{}
	if !q.Unlisted {
		match = append(match, bson.E{Key: "isPublished", Value: true})
	}
	if q.Owner != nil {
		match = append(match, bson.E{Key: "owner", Value: *q.Owner})
	}
	if q.Search != "" {
		match = append(match, bson.E{Key: "title", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(q.Search),
			Options: "i",
		}})
	}

	sortBy := q.SortBy
	if !ValidVideoSort(sortBy) {
		sortBy = "createdAt"
	}
	dir := -1
	if q.Asc {
		dir = 1
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: sortBy, Value: dir}, {Key: "_id", Value: dir}}}},
	}
	for _, st := range ownerLookup() {
		pipeline = append(pipeline, st)
	}
	pipeline = paginate(pipeline, q.Page)

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	var res []facetResult[models.VideoWithOwner]
	if err := cur.All(ctx, &res); err != nil {
		return nil, err
	}

	page := &models.VideoPage{
		Videos: []models.VideoWithOwner{},
		Page:   q.Page.Page,
		Limit:  q.Page.Limit,
	}
	if len(res) > 0 {
		if res[0].Docs != nil {
			page.Videos = res[0].Docs
		}
		page.Total = res[0].count()
	}
	page.TotalPages = totalPages(page.Total, page.Limit)
	return page, nil
}

// ListByOwner returns every video of a channel, published or not, newest first.
func (s *VideoStore) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Video, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, err
	}
	out := []models.Video{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *VideoStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Video, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var v models.Video
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&v); err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

// TogglePublished flips isPublished in one update and returns the new state.
func (s *VideoStore) TogglePublished(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "isPublished", Value: bson.D{{Key: "$not", Value: bson.A{"$isPublished"}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var v models.Video
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&v); err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (s *VideoStore) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	return err
}

func (s *VideoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

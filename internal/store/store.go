// Package store holds the MongoDB-backed persistence for every collection.
// Each type wraps one collection; aggregation pipelines live next to the
// store that owns the root collection.
package store

import (
	"errors"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("store: document not found")
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrStale means a conditional update found no document in the expected state.
	ErrStale = errors.New("store: document changed concurrently")
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit far from int64 overflow.
	MaxPage = 1_000_000
)

// Page is a 1-based page request.
type Page struct {
	Page  int64
	Limit int64
}

// Normalize clamps the page into range.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

func totalPages(total, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(total) / float64(limit)))
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// ownerLookup joins the public owner summary onto each document.
func ownerLookup() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "owner"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "username", Value: 1},
					{Key: "fullname", Value: 1},
					{Key: "avatar", Value: 1},
				}}},
			}},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$owner"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// paginate appends a $facet stage producing {docs, total}.
func paginate(pipeline mongo.Pipeline, p Page) mongo.Pipeline {
	return append(pipeline, bson.D{{Key: "$facet", Value: bson.D{
		{Key: "docs", Value: bson.A{
			bson.D{{Key: "$skip", Value: p.Skip()}},
			bson.D{{Key: "$limit", Value: p.Limit}},
		}},
		{Key: "total", Value: bson.A{
			bson.D{{Key: "$count", Value: "n"}},
		}},
	}}})
}

type facetResult[T any] struct {
	Docs  []T `bson:"docs"`
	Total []struct {
		N int64 `bson:"n"`
	} `bson:"total"`
}

func (f facetResult[T]) count() int64 {
	if len(f.Total) == 0 {
		return 0
	}
	return f.Total[0].N
}

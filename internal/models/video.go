package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Video struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	VideoFile         string             `bson:"videoFile" json:"videoFile"`
	VideoPublicID     string             `bson:"videoPublicId,omitempty" json:"-"`
	Thumbnail         string             `bson:"thumbnail" json:"thumbnail"`
	ThumbnailPublicID string             `bson:"thumbnailPublicId,omitempty" json:"-"`
	Title             string             `bson:"title" json:"title"`
	Description       string             `bson:"description" json:"description"`
	Duration          float64            `bson:"duration" json:"duration"`
	Views             int64              `bson:"views" json:"views"`
	IsPublished       bool               `bson:"isPublished" json:"isPublished"`
	Owner             primitive.ObjectID `bson:"owner" json:"owner"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// VideoWithOwner is a video with its owner's public summary joined in.
type VideoWithOwner struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	VideoFile   string             `bson:"videoFile" json:"videoFile"`
	Thumbnail   string             `bson:"thumbnail" json:"thumbnail"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	Owner       *Owner             `bson:"owner,omitempty" json:"owner,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// VideoPage is one page of a video listing.
type VideoPage struct {
	Videos     []VideoWithOwner `json:"docs"`
	Total      int64            `json:"totalDocs"`
	Page       int64            `json:"page"`
	Limit      int64            `json:"limit"`
	TotalPages int64            `json:"totalPages"`
}

// ChannelStats summarises a channel for its owner's dashboard.
type ChannelStats struct {
	TotalVideos      int64   `json:"totalVideos"`
	TotalSubscribers int64   `json:"totalSubscribers"`
	TotalViews       int64   `json:"totalViews"`
	TotalLikes       int64   `json:"totalLikes"`
	TotalDuration    float64 `json:"totalDuration"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Playlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Videos      []primitive.ObjectID `bson:"videos" json:"videos"`
	Owner       primitive.ObjectID   `bson:"owner" json:"owner"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// PlaylistDetail is a playlist with its videos and owner resolved.
type PlaylistDetail struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Videos      []Video            `bson:"videos" json:"videos"`
	Owner       *Owner             `bson:"owner,omitempty" json:"owner,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type PlaylistPage struct {
	Playlists []Playlist `json:"playlists"`
	Total     int64      `json:"total"`
	Page      int64      `json:"page"`
	Limit     int64      `json:"limit"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the stored account document. Secrets never leave the server:
// Password holds a bcrypt hash and RefreshTokenHash a SHA-256 digest of the
// one refresh token currently valid for this user.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username   string             `bson:"username" json:"username"`
	Email      string             `bson:"email" json:"email"`
	FullName   string             `bson:"fullname" json:"fullname"`
	Avatar     string             `bson:"avatar" json:"avatar"`
	CoverImage string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`

	AvatarPublicID     string `bson:"avatarPublicId,omitempty" json:"-"`
	CoverImagePublicID string `bson:"coverImagePublicId,omitempty" json:"-"`

	WatchHistory []primitive.ObjectID `bson:"watchHistory" json:"watchHistory"`

	Password         string `bson:"password" json:"-"`
	RefreshTokenHash string `bson:"refreshTokenHash,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Owner is the public summary of a user joined onto other documents.
type Owner struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Username string             `bson:"username" json:"username"`
	FullName string             `bson:"fullname" json:"fullname"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}

// ChannelProfile is the public view of a user's channel.
type ChannelProfile struct {
	ID                        primitive.ObjectID `bson:"_id" json:"_id"`
	Username                  string             `bson:"username" json:"username"`
	FullName                  string             `bson:"fullname" json:"fullname"`
	Email                     string             `bson:"email" json:"email"`
	Avatar                    string             `bson:"avatar" json:"avatar"`
	CoverImage                string             `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	SubscribersCount          int64              `bson:"subscribersCount" json:"subscribersCount"`
	ChannelsSubscribedToCount int64              `bson:"channelsSubscribedToCount" json:"channelsSubscribedToCount"`
	IsSubscribed              bool               `bson:"isSubscribed" json:"isSubscribed"`
}

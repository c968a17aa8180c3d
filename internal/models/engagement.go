package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeTarget names the kind of document a like points at.
type LikeTarget string

const (
	LikeVideo   LikeTarget = "video"
	LikeComment LikeTarget = "comment"
	LikeTweet   LikeTarget = "tweet"
)

// Like records one user liking exactly one video, comment or tweet. The
// target is stored under the field named by its LikeTarget.
type Like struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Video     *primitive.ObjectID `bson:"video,omitempty" json:"video,omitempty"`
	Comment   *primitive.ObjectID `bson:"comment,omitempty" json:"comment,omitempty"`
	Tweet     *primitive.ObjectID `bson:"tweet,omitempty" json:"tweet,omitempty"`
	LikedBy   primitive.ObjectID  `bson:"likedBy" json:"likedBy"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}

type LikedVideo struct {
	ID      primitive.ObjectID `bson:"_id" json:"_id"`
	LikedAt time.Time          `bson:"createdAt" json:"likedAt"`
	Video   VideoWithOwner     `bson:"video" json:"video"`
}

type Subscription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Subscriber primitive.ObjectID `bson:"subscriber" json:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel" json:"channel"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SubscriptionEntry is one row of a subscriber or subscribed-channel list;
// User is whichever side of the relation the list is about.
type SubscriptionEntry struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	User         Owner              `bson:"user" json:"user"`
	SubscribedAt time.Time          `bson:"createdAt" json:"subscribedAt"`
}

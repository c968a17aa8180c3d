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

// profileProjection strips secrets from user reads that leave the session core.
var profileProjection = bson.D{
	{Key: "password", Value: 0},
	{Key: "refreshTokenHash", Value: 0},
}

type UserStore struct {
	col *mongo.Collection
	db  *mongo.Database
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection(database.Users), db: db}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.WatchHistory == nil {
		u.WatchHistory = []primitive.ObjectID{}
	}
	if _, err := s.col.InsertOne(ctx, u); err != nil {
		return duplicate(err)
	}
	return nil
}

// FindByID returns the full document, secrets included.
func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) FindProfileByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	opts := options.FindOne().SetProjection(profileProjection)
	if err := s.col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

// FindByLogin matches either the username or the email. Empty values are ignored.
func (s *UserStore) FindByLogin(ctx context.Context, username, email string) (*models.User, error) {
	or := bson.A{}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil, ErrNotFound
	}
	var u models.User
	if err := s.col.FindOne(ctx, bson.M{"$or": or}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *UserStore) SetRefreshToken(ctx context.Context, id primitive.ObjectID, digest string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"refreshTokenHash": digest, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SwapRefreshToken replaces the stored digest only while it still equals
// oldDigest. Of two concurrent swaps from the same token, one gets ErrStale.
func (s *UserStore) SwapRefreshToken(ctx context.Context, id primitive.ObjectID, oldDigest, newDigest string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "refreshTokenHash": oldDigest},
		bson.M{"$set": bson.M{"refreshTokenHash": newDigest, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrStale
	}
	return nil
}

func (s *UserStore) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$unset": bson.M{"refreshTokenHash": ""},
	})
	return err
}

func (s *UserStore) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"password": hash, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile applies set and returns the updated profile.
func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	set["updatedAt"] = time.Now().UTC()
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(profileProjection)

	var u models.User
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err != nil {
		return nil, duplicate(notFound(err))
	}
	return &u, nil
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PushWatchHistory moves videoID to the front of the user's history.
func (s *UserStore) PushWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "watchHistory", Value: bson.D{{Key: "$concatArrays", Value: bson.A{
				bson.A{videoID},
				bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$watchHistory", bson.A{}}}}},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", videoID}}}},
				}}},
			}}}},
		}}},
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, update)
	return err
}

// PullFromWatchHistories removes a deleted video from every history.
func (s *UserStore) PullFromWatchHistories(ctx context.Context, videoID primitive.ObjectID) error {
	_, err := s.col.UpdateMany(ctx,
		bson.M{"watchHistory": videoID},
		bson.M{"$pull": bson.M{"watchHistory": videoID}},
	)
	return err
}

// ChannelProfile resolves a channel by username with its subscription counts
// and whether viewer follows it.
func (s *UserStore) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*models.ChannelProfile, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "username", Value: username}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.Subscriptions},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "channel"},
			{Key: "as", Value: "subscribers"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.Subscriptions},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "subscriber"},
			{Key: "as", Value: "subscribedTo"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "subscribersCount", Value: bson.D{{Key: "$size", Value: "$subscribers"}}},
			{Key: "channelsSubscribedToCount", Value: bson.D{{Key: "$size", Value: "$subscribedTo"}}},
			{Key: "isSubscribed", Value: bson.D{{Key: "$in", Value: bson.A{viewer, "$subscribers.subscriber"}}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "username", Value: 1},
			{Key: "fullname", Value: 1},
			{Key: "email", Value: 1},
			{Key: "avatar", Value: 1},
			{Key: "coverImage", Value: 1},
			{Key: "subscribersCount", Value: 1},
			{Key: "channelsSubscribedToCount", Value: 1},
			{Key: "isSubscribed", Value: 1},
		}}},
	}

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("channel profile: %w", err)
	}
	var out []models.ChannelProfile
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// WatchHistory returns the user's watched videos, most recent first.
func (s *UserStore) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]models.VideoWithOwner, error) {
	videoPipeline := bson.A{}
	for _, st := range ownerLookup() {
		videoPipeline = append(videoPipeline, st)
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: userID}}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$watchHistory"},
			{Key: "includeArrayIndex", Value: "position"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: database.Videos},
			{Key: "localField", Value: "watchHistory"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "video"},
			{Key: "pipeline", Value: videoPipeline},
		}}},
		{{Key: "$unwind", Value: "$video"}},
		{{Key: "$sort", Value: bson.D{{Key: "position", Value: 1}}}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$video"}}}},
	}

	cur, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("watch history: %w", err)
	}
	out := []models.VideoWithOwner{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names.
const (
	Users         = "users"
	Videos        = "videos"
	Comments      = "comments"
	Tweets        = "tweets"
	Playlists     = "playlists"
	Likes         = "likes"
	Subscriptions = "subscriptions"
)

// Connect opens a client against mongoURI and checks it with a ping.
func Connect(ctx context.Context, mongoURI, dbName string, log *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	// Atlas clusters can take a while on first handshake.
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(mongoURI).
		SetServerSelectionTimeout(10 * time.Second)

	log.Info("connecting to mongodb", zap.String("database", dbName))
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Info("connected to mongodb")
	return client, client.Database(dbName), nil
}

func Disconnect(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// MongoPinger checks that the primary answers.
type MongoPinger struct {
	Client *mongo.Client
}

func (p MongoPinger) Ping(ctx context.Context) error {
	return p.Client.Ping(ctx, readpref.Primary())
}

// Package mongo stores orders as documents in MongoDB.
package mongo

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Connect opens a client for uri and verifies the primary is reachable.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongodb")
	}

	return client, nil
}

// Ping is a readiness probe for client.
func Ping(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

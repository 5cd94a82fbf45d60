package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOptions tunes the client pool. Zero fields take the defaults below.
type MongoOptions struct {
	MaxPoolSize            uint64
	MinPoolSize            uint64
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

const (
	defaultMaxPoolSize            = 100
	defaultMinPoolSize            = 10
	defaultConnectTimeout         = 10 * time.Second
	defaultServerSelectionTimeout = 5 * time.Second
)

func (o MongoOptions) withDefaults() MongoOptions {
	if o.MaxPoolSize == 0 {
		o.MaxPoolSize = defaultMaxPoolSize
	}
	if o.MinPoolSize == 0 {
		o.MinPoolSize = min(defaultMinPoolSize, o.MaxPoolSize)
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = defaultConnectTimeout
	}
	if o.ServerSelectionTimeout <= 0 {
		o.ServerSelectionTimeout = defaultServerSelectionTimeout
	}
	return o
}

func clientOptions(uri string, opts MongoOptions) *options.ClientOptions {
	opts = opts.withDefaults()
	return options.Client().
		ApplyURI(uri).
		SetConnectTimeout(opts.ConnectTimeout).
		SetServerSelectionTimeout(opts.ServerSelectionTimeout).
		SetMaxPoolSize(opts.MaxPoolSize).
		SetMinPoolSize(opts.MinPoolSize)
}

// ConnectMongoDB connects and pings. A client whose ping fails is
// disconnected before the error is returned.
func ConnectMongoDB(ctx context.Context, uri, database string, opts MongoOptions) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, clientOptions(uri, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		if errDisc := client.Disconnect(context.WithoutCancel(ctx)); errDisc != nil {
			log.Warn().Err(errDisc).Msg("failed to disconnect MongoDB client after ping failure")
		}
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(database), nil
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions_FromConfig(t *testing.T) {
	opts := clientOptions("mongodb://localhost:27017", MongoOptions{
		MaxPoolSize:            20,
		MinPoolSize:            2,
		ConnectTimeout:         3 * time.Second,
		ServerSelectionTimeout: time.Second,
	})

	require.NotNil(t, opts.MaxPoolSize)
	assert.Equal(t, uint64(20), *opts.MaxPoolSize)
	assert.Equal(t, uint64(2), *opts.MinPoolSize)
	assert.Equal(t, 3*time.Second, *opts.ConnectTimeout)
	assert.Equal(t, time.Second, *opts.ServerSelectionTimeout)
}

func TestClientOptions_Defaults(t *testing.T) {
	opts := clientOptions("mongodb://localhost:27017", MongoOptions{})

	assert.Equal(t, uint64(defaultMaxPoolSize), *opts.MaxPoolSize)
	assert.Equal(t, uint64(defaultMinPoolSize), *opts.MinPoolSize)
	assert.Equal(t, defaultConnectTimeout, *opts.ConnectTimeout)
	assert.Equal(t, defaultServerSelectionTimeout, *opts.ServerSelectionTimeout)

	// a small pool never gets a larger default minimum
	opts = clientOptions("mongodb://localhost:27017", MongoOptions{MaxPoolSize: 4})
	assert.Equal(t, uint64(4), *opts.MinPoolSize)
}

func TestConnectMongoDB_UnreachableServer(t *testing.T) {
	start := time.Now()
	db, err := ConnectMongoDB(context.Background(), "mongodb://127.0.0.1:1/?directConnection=true", "testdb", MongoOptions{
		ConnectTimeout:         200 * time.Millisecond,
		ServerSelectionTimeout: 300 * time.Millisecond,
	})

	require.ErrorContains(t, err, "failed to ping MongoDB")
	assert.Nil(t, db)
	assert.Less(t, time.Since(start), 5*time.Second, "server selection timeout comes from the options")
}

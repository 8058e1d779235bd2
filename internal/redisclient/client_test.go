package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRedisForTest connects to the Redis at REDIS_ADDR
func setupRedisForTest(t *testing.T) (*Client, func()) {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("Skipping Redis integration tests: REDIS_ADDR not set")
	}

	client := NewClient(redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	}))

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err(), "Failed to connect to Redis")

	return client, func() {
		client.Del(context.Background(), "test:poll:1", "test:geo")
		client.Close()
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient(redis.NewClient(&redis.Options{Addr: "localhost:6379"}))

	assert.NotNil(t, client)
	assert.NotNil(t, client.cmdable)
}

func TestNewClusterClient(t *testing.T) {
	client := NewClusterClient(redis.NewClusterClient(&redis.ClusterOptions{Addrs: []string{"localhost:7000"}}))

	assert.NotNil(t, client.cmdable)
}

func TestClient_SetGetDel(t *testing.T) {
	client, cleanup := setupRedisForTest(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "test:poll:1", `[{"selectionId":1,"count":2}]`, time.Minute).Err())

	val, err := client.Get(ctx, "test:poll:1").Result()
	require.NoError(t, err)
	assert.Equal(t, `[{"selectionId":1,"count":2}]`, val)

	deleted, err := client.Del(ctx, "test:poll:1").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = client.Get(ctx, "test:poll:1").Result()
	assert.ErrorIs(t, err, redis.Nil, "deleted key should be a miss")
}

func TestClient_Expiration(t *testing.T) {
	client, cleanup := setupRedisForTest(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, client.Set(ctx, "test:geo", "x", 100*time.Millisecond).Err())

	time.Sleep(250 * time.Millisecond)

	_, err := client.Get(ctx, "test:geo").Result()
	assert.ErrorIs(t, err, redis.Nil)
}

func TestClient_PingUnreachable(t *testing.T) {
	client := NewClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Error(t, client.Ping(ctx).Err())
}

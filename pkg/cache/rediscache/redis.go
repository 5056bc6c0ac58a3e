package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/menta2k/quickcrop/pkg/types"
)

// KeyPrefix namespaces every key written by the cache.
const KeyPrefix = "quickcrop:box:"

// Options configures the redis connection
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache is a BoxCache backed by redis
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a redis-backed cache. It does not connect until first use;
// call Ping to check the server.
func New(opts Options) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	return &Cache{
		client: client,
		ttl:    opts.TTL,
	}
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the cached box for key
func (c *Cache) Get(ctx context.Context, key string) (types.Box, bool, error) {
	data, err := c.client.Get(ctx, Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return types.Box{}, false, nil
		}
		return types.Box{}, false, err
	}

	box, err := decodeBox(data)
	if err != nil {
		return types.Box{}, false, err
	}
	return box, true, nil
}

// Set stores box under key with the configured TTL
func (c *Cache) Set(ctx context.Context, key string, box types.Box) error {
	data, err := encodeBox(box)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(key), data, c.ttl).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// Key returns the redis key for a content digest
func Key(digest string) string {
	return KeyPrefix + digest
}

func encodeBox(box types.Box) ([]byte, error) {
	return json.Marshal(box)
}

func decodeBox(data []byte) (types.Box, error) {
	var box types.Box
	if err := json.Unmarshal(data, &box); err != nil {
		return types.Box{}, err
	}
	return box, nil
}

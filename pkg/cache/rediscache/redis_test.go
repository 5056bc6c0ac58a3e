package rediscache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/quickcrop/pkg/cache"
	"github.com/menta2k/quickcrop/pkg/types"
)

var _ cache.BoxCache = (*Cache)(nil)

func TestKey(t *testing.T) {
	assert.Equal(t, "quickcrop:box:abc", Key("abc"))
}

func TestBoxEncoding(t *testing.T) {
	box := types.Box{X0: 3, X1: 10, Y0: 1, Y1: 4}

	data, err := encodeBox(box)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x0":3,"x1":10,"y0":1,"y1":4}`, string(data))

	got, err := decodeBox(data)
	require.NoError(t, err)
	assert.Equal(t, box, got)

	_, err = decodeBox([]byte("{"))
	assert.Error(t, err)
}

func TestUnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewWithClient(client, time.Minute)
	defer c.Close()

	ctx := context.Background()
	assert.Error(t, c.Ping(ctx))

	_, ok, err := c.Get(ctx, "digest")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "digest", types.Box{X1: 1, Y1: 1}))
}

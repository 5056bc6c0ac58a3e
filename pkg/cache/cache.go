// Package cache stores content boxes keyed by a digest of the encoded image.
package cache

import (
	"context"

	"github.com/menta2k/quickcrop/pkg/types"
)

// BoxCache remembers the content box computed for an image.
type BoxCache interface {
	// Get returns the cached box for key. ok is false on a miss.
	Get(ctx context.Context, key string) (box types.Box, ok bool, err error)
	Set(ctx context.Context, key string, box types.Box) error
}

// Nop is a BoxCache that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (types.Box, bool, error) { return types.Box{}, false, nil }

func (Nop) Set(context.Context, string, types.Box) error { return nil }

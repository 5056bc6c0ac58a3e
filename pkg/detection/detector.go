package detection

import (
	"bytes"
	"context"
	"image"

	"go.uber.org/zap"

	"github.com/menta2k/quickcrop/internal/utils"
	"github.com/menta2k/quickcrop/pkg/analyzer"
	"github.com/menta2k/quickcrop/pkg/cache"
	"github.com/menta2k/quickcrop/pkg/cropper"
	"github.com/menta2k/quickcrop/pkg/processing"
	"github.com/menta2k/quickcrop/pkg/types"
)

// Detector finds the content box of encoded images, remembering results in
// a BoxCache keyed by the SHA-256 of the encoded bytes
type Detector struct {
	cache    cache.BoxCache
	analyzer *analyzer.ImageAnalyzer
	cropper  *cropper.AlphaCropper
	logger   *zap.Logger
}

// Result is a detected box together with the dimensions of its source
type Result struct {
	Digest string    `json:"digest"`
	Box    types.Box `json:"box"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Cached bool      `json:"cached"`
}

// NewDetector creates a new detector backed by boxCache. A nil cache
// disables caching.
func NewDetector(boxCache cache.BoxCache, a *analyzer.ImageAnalyzer, c *cropper.AlphaCropper, logger *zap.Logger) *Detector {
	if boxCache == nil {
		boxCache = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{cache: boxCache, analyzer: a, cropper: c, logger: logger}
}

// DetectBox returns the content box of the encoded image data. On a cache
// hit only the image header is decoded. Cache failures are logged and
// otherwise ignored.
func (d *Detector) DetectBox(ctx context.Context, data []byte) (Result, error) {
	digest := utils.BytesSHA256(data)

	if res, ok := d.lookup(ctx, digest, data); ok {
		return res, nil
	}

	img, err := d.analyzer.LoadImageFromBytes(data)
	if err != nil {
		return Result{}, err
	}
	return d.compute(ctx, digest, img)
}

// Trim decodes data and crops it to its content box, reusing a cached box
// when one exists. When the source has an alpha channel the result keeps
// one on PNG encoding, even if the cropped region is fully opaque.
func (d *Detector) Trim(ctx context.Context, data []byte) (image.Image, Result, error) {
	digest := utils.BytesSHA256(data)

	img, err := d.analyzer.LoadImageFromBytes(data)
	if err != nil {
		return nil, Result{}, err
	}

	res, ok := d.lookup(ctx, digest, data)
	if !ok {
		if res, err = d.compute(ctx, digest, img); err != nil {
			return nil, Result{}, err
		}
	}

	cropped, err := cropper.CropToBox(img, res.Box)
	if err != nil {
		return nil, Result{}, err
	}
	if analyzer.HasAlpha(img) {
		cropped = processing.KeepAlpha(cropped)
	}
	return cropped, res, nil
}

func (d *Detector) lookup(ctx context.Context, digest string, data []byte) (Result, bool) {
	box, ok, err := d.cache.Get(ctx, d.cacheKey(digest))
	if err != nil {
		d.logger.Warn("box cache read failed", zap.String("digest", digest), zap.Error(err))
		return Result{}, false
	}
	if !ok {
		return Result{}, false
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || !box.Within(cfg.Width, cfg.Height) || box.Empty() {
		return Result{}, false
	}

	d.logger.Debug("box cache hit", zap.String("digest", digest))
	return Result{Digest: digest, Box: box, Width: cfg.Width, Height: cfg.Height, Cached: true}, true
}

func (d *Detector) compute(ctx context.Context, digest string, img image.Image) (Result, error) {
	box, err := d.cropper.ContentBox(img)
	if err != nil {
		return Result{}, err
	}

	if err := d.cache.Set(ctx, d.cacheKey(digest), box); err != nil {
		d.logger.Warn("box cache write failed", zap.String("digest", digest), zap.Error(err))
	}

	bounds := img.Bounds()
	return Result{Digest: digest, Box: box, Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// cacheKey scopes a digest to the cropper settings, which change the box.
func (d *Detector) cacheKey(digest string) string {
	return digest + ":" + d.cropper.Key()
}

package main

import (
	"context"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/menta2k/quickcrop/internal/config"
	"github.com/menta2k/quickcrop/internal/utils"
	"github.com/menta2k/quickcrop/pkg/analyzer"
	"github.com/menta2k/quickcrop/pkg/batch"
	"github.com/menta2k/quickcrop/pkg/cache"
	"github.com/menta2k/quickcrop/pkg/cache/rediscache"
	"github.com/menta2k/quickcrop/pkg/cropper"
	"github.com/menta2k/quickcrop/pkg/detection"
	"github.com/menta2k/quickcrop/pkg/processing"
)

func newAnalyzer(cfg *config.Config) *analyzer.ImageAnalyzer {
	formats := lo.Uniq(lo.Map(cfg.Input.Extensions, func(ext string, _ int) string {
		return processing.NormalizeFormat(ext)
	}))
	return analyzer.NewWithConfig(analyzer.Config{
		SupportedFormats: formats,
		MinImageSize:     1,
		RequireAlpha:     cfg.Input.RequireAlpha,
	})
}

func newCropper(cfg *config.Config) *cropper.AlphaCropper {
	return cropper.NewWithConfig(cropper.CropConfig{
		Strategy: cfg.Cropper.Strategy,
		Padding:  cfg.Cropper.Padding,
	})
}

// newProcessor returns a processor using the configured PNG compression.
// The configuration is validated before any command runs.
func newProcessor(cfg *config.Config) *processing.Processor {
	level, err := processing.ParseCompression(cfg.Output.Compression)
	if err != nil {
		return processing.NewProcessor()
	}
	return processing.NewProcessorWithCompression(level)
}

func newRunner(cfg *config.Config) *batch.Runner {
	return batch.New(batch.Options{
		Extensions:      cfg.Input.Extensions,
		CaseInsensitive: cfg.Input.CaseInsensitive,
		Prefix:          cfg.Output.Prefix,
		Format:          cfg.Output.Format,
		Quality:         cfg.Output.Quality,
		Lossless:        cfg.Output.Lossless,
		Workers:         cfg.Batch.Workers,
		Manifest:        cfg.Output.Manifest,
		Analyzer:        newAnalyzer(cfg),
		Cropper:         newCropper(cfg),
		Processor:       newProcessor(cfg),
		Logger:          utils.Logger,
	})
}

// newBoxCache returns the redis cache when enabled and reachable. Otherwise
// it falls back to fallback, which may be nil.
func newBoxCache(ctx context.Context, cfg *config.Config, fallback cache.BoxCache) (cache.BoxCache, func()) {
	if !cfg.Redis.Enabled {
		return fallback, func() {}
	}

	redisCache := rediscache.New(rediscache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Redis.TTL,
	})
	if err := redisCache.Ping(ctx); err != nil {
		utils.Logger.Warn("redis connection failed, using fallback cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = redisCache.Close()
		return fallback, func() {}
	}

	utils.Logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return redisCache, func() { _ = redisCache.Close() }
}

func newDetector(ctx context.Context, cfg *config.Config, fallback cache.BoxCache) (*detection.Detector, func()) {
	boxCache, closeCache := newBoxCache(ctx, cfg, fallback)
	return detection.NewDetector(boxCache, newAnalyzer(cfg), newCropper(cfg), utils.Logger), closeCache
}

// Package quickcrop trims the fully transparent margins from images.
//
// The content box of an image is found by summing its alpha channel along
// each axis and searching the two projections for their first and last
// non-zero entries. Cropping to that box keeps every visible pixel and
// drops the empty border around it.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/menta2k/quickcrop"
//	)
//
//	func main() {
//		trimmer := quickcrop.New()
//
//		// Trim a single image
//		img, err := trimmer.LoadImage("sprite.png")
//		if err != nil {
//			log.Fatal(err)
//		}
//		result, err := trimmer.Crop(img)
//		if err != nil {
//			log.Fatal(err)
//		}
//		if err := trimmer.SaveImage(result.Image, "sprite_trimmed.png"); err != nil {
//			log.Fatal(err)
//		}
//
//		// Trim a whole directory
//		summary, err := trimmer.CropBatch(context.Background(), "sprites", "trimmed")
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Printf("%d of %d images trimmed\n", summary.Succeeded, summary.Attempted)
//	}
//
// The package consists of these main components:
//
// 1. Edge (pkg/edge): binary search for the content edges of a projection
// 2. Projection (pkg/projection): per-axis alpha sums
// 3. Cropper (pkg/cropper): content box detection and cropping
// 4. Batch (pkg/batch): directory processing with per-file results
// 5. Detection (pkg/detection): content boxes for encoded images with caching
//
// The binary search assumes each projection holds a single contiguous run
// of non-zero values. A stray visible pixel inside a margin can make the
// search miss part of that margin; the linear strategy of pkg/cropper scans
// every entry instead.
package quickcrop

import (
	"context"
	"fmt"
	"image"
	"io"
	"path/filepath"

	"github.com/menta2k/quickcrop/internal/utils"
	"github.com/menta2k/quickcrop/pkg/analyzer"
	"github.com/menta2k/quickcrop/pkg/batch"
	"github.com/menta2k/quickcrop/pkg/cropper"
	"github.com/menta2k/quickcrop/pkg/edge"
	"github.com/menta2k/quickcrop/pkg/processing"
	"github.com/menta2k/quickcrop/pkg/types"
)

// Version of the quickcrop library
const Version = "1.0.0"

// Trimmer provides a high-level interface for trimming images
type Trimmer struct {
	analyzer  *analyzer.ImageAnalyzer
	cropper   *cropper.AlphaCropper
	processor *processing.Processor
	runner    *batch.Runner
}

// New creates a new Trimmer with default configuration
func New() *Trimmer {
	return NewWithConfig(analyzer.New(), cropper.New())
}

// NewWithConfig creates a new Trimmer from configured components
func NewWithConfig(a *analyzer.ImageAnalyzer, c *cropper.AlphaCropper) *Trimmer {
	return NewWithOptions(batch.Options{Analyzer: a, Cropper: c})
}

// NewWithOptions creates a new Trimmer whose batch runs and single-file
// runs use opts. Unset components get their defaults.
func NewWithOptions(opts batch.Options) *Trimmer {
	if opts.Analyzer == nil {
		opts.Analyzer = analyzer.New()
	}
	if opts.Cropper == nil {
		opts.Cropper = cropper.New()
	}
	if opts.Processor == nil {
		opts.Processor = processing.NewProcessor()
	}
	return &Trimmer{
		analyzer:  opts.Analyzer,
		cropper:   opts.Cropper,
		processor: opts.Processor,
		runner:    batch.New(opts),
	}
}

// LoadImage loads and validates an image from file
func (t *Trimmer) LoadImage(path string) (image.Image, error) {
	return t.analyzer.LoadImage(path)
}

// LoadImageFromReader loads and validates an image from an io.Reader
func (t *Trimmer) LoadImageFromReader(reader io.Reader) (image.Image, error) {
	return t.analyzer.LoadImageFromReader(reader)
}

// SaveImage writes img as PNG. Images of a type with an alpha channel keep
// it even when every pixel is opaque.
func (t *Trimmer) SaveImage(img image.Image, path string) error {
	if analyzer.HasAlpha(img) {
		img = processing.KeepAlpha(img)
	}
	return t.processor.SaveImage(img, path, processing.FormatPNG, 0, true)
}

// ContentBox returns the box holding every visible pixel of img
func (t *Trimmer) ContentBox(img image.Image) (types.Box, error) {
	return t.cropper.ContentBox(img)
}

// Crop trims img to its content box
func (t *Trimmer) Crop(img image.Image) (cropper.CropResult, error) {
	return t.cropper.Crop(img)
}

// GetImageInfo returns basic information about an image
func (t *Trimmer) GetImageInfo(img image.Image) analyzer.ImageInfo {
	return t.analyzer.GetImageInfo(img)
}

// ValidateImage checks if an image meets requirements
func (t *Trimmer) ValidateImage(img image.Image) error {
	return t.analyzer.ValidateImage(img)
}

// ProcessImageFile trims the image at inputPath into outputDir, naming the
// output the way CropBatch does.
func (t *Trimmer) ProcessImageFile(ctx context.Context, inputPath, outputDir string) (types.FileResult, error) {
	if err := utils.EnsureDir(outputDir); err != nil {
		return types.FileResult{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	name := t.runner.OutputName(filepath.Base(inputPath))
	return t.runner.CropFile(ctx, inputPath, filepath.Join(outputDir, name)), nil
}

// CropBatch trims every PNG directly inside inputDir into outputDir. See
// batch.Runner.CropBatch.
func (t *Trimmer) CropBatch(ctx context.Context, inputDir, outputDir string) (types.Summary, error) {
	return t.runner.CropBatch(ctx, inputDir, outputDir)
}

// FindEdge returns the first (or, with reverse, the last) index of the
// non-zero run in a projection. See edge.Find.
func FindEdge(arr []uint64, reverse bool) int {
	return edge.Find(arr, reverse)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}

package analyzer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/menta2k/quickcrop/pkg/processing"
)

// ErrNoAlpha is returned for images that carry no alpha channel.
var ErrNoAlpha = errors.New("image has no alpha channel")

// ImageAnalyzer loads images and checks that they can be trimmed
type ImageAnalyzer struct {
	config    Config
	processor *processing.Processor
}

// Config holds configuration for the image analyzer
type Config struct {
	SupportedFormats []string
	MinImageSize     int
	RequireAlpha     bool
}

// New creates a new ImageAnalyzer with default configuration
func New() *ImageAnalyzer {
	return &ImageAnalyzer{
		config: Config{
			SupportedFormats: []string{"png"},
			MinImageSize:     1,
			RequireAlpha:     true,
		},
		processor: processing.NewProcessor(),
	}
}

// NewWithConfig creates a new ImageAnalyzer with custom configuration
func NewWithConfig(config Config) *ImageAnalyzer {
	return &ImageAnalyzer{config: config, processor: processing.NewProcessor()}
}

// LoadImage loads an image from file and validates it
func (a *ImageAnalyzer) LoadImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	return a.LoadImageFromBytes(data)
}

// LoadImageFromReader loads an image from an io.Reader and validates it
func (a *ImageAnalyzer) LoadImageFromReader(reader io.Reader) (image.Image, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return a.LoadImageFromBytes(data)
}

// LoadImageFromBytes decodes encoded image data and validates the result
func (a *ImageAnalyzer) LoadImageFromBytes(data []byte) (image.Image, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if !a.isFormatSupported(format) {
		return nil, fmt.Errorf("unsupported image format: %s", format)
	}

	img, err := a.processor.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if err := a.ValidateImage(img); err != nil {
		return nil, err
	}
	return img, nil
}

// GetImageInfo returns basic information about an image
func (a *ImageAnalyzer) GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var ratio float64
	if height > 0 {
		ratio = float64(width) / float64(height)
	}

	return ImageInfo{
		Width:       width,
		Height:      height,
		AspectRatio: ratio,
		Area:        width * height,
		HasAlpha:    HasAlpha(img),
	}
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
	HasAlpha    bool    `json:"has_alpha"`
}

func (a *ImageAnalyzer) isFormatSupported(format string) bool {
	for _, supported := range a.config.SupportedFormats {
		if strings.EqualFold(format, supported) {
			return true
		}
	}
	return false
}

// ValidateImage checks if an image meets minimum requirements
func (a *ImageAnalyzer) ValidateImage(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() < a.config.MinImageSize || bounds.Dy() < a.config.MinImageSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), a.config.MinImageSize)
	}
	if a.config.RequireAlpha && !HasAlpha(img) {
		return fmt.Errorf("%w (color model %T)", ErrNoAlpha, img)
	}
	return nil
}

// HasAlpha reports whether img has an alpha channel that can carry
// transparency.
//
// Non-premultiplied and alpha-only images count regardless of their pixel
// values. The PNG decoder returns *image.RGBA and *image.RGBA64 only for
// truecolor files without an alpha channel, so for those types the pixels
// are scanned and the image counts only if one of them is not opaque.
// Paletted images count if any palette entry is not opaque.
func HasAlpha(img image.Image) bool {
	switch src := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.Alpha, *image.Alpha16:
		return true
	case *image.RGBA:
		return !src.Opaque()
	case *image.RGBA64:
		return !src.Opaque()
	case *image.Paletted:
		for _, c := range src.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return false
	}

	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return true
}

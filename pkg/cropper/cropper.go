package cropper

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/menta2k/quickcrop/pkg/edge"
	"github.com/menta2k/quickcrop/pkg/projection"
	"github.com/menta2k/quickcrop/pkg/types"
)

// ErrBlank is returned for images with no pixel of non-zero alpha.
var ErrBlank = errors.New("image is fully transparent")

// Edge search strategies
const (
	StrategyBinary = "binary"
	StrategyLinear = "linear"
)

// AlphaCropper trims the transparent margin around image content
type AlphaCropper struct {
	config CropConfig
	find   edge.Finder
}

// CropConfig holds configuration for alpha trimming
type CropConfig struct {
	// Strategy selects the edge search: StrategyBinary assumes each
	// projection has a single contiguous non-blank run, StrategyLinear
	// tolerates stray pixels in the margins.
	Strategy string
	// Padding keeps this many extra pixels around the content, clamped to
	// the image bounds.
	Padding int
}

// New creates a new AlphaCropper with default configuration
func New() *AlphaCropper {
	return NewWithConfig(CropConfig{Strategy: StrategyBinary})
}

// NewWithConfig creates a new AlphaCropper with custom configuration
func NewWithConfig(config CropConfig) *AlphaCropper {
	find := edge.Find
	if config.Strategy == StrategyLinear {
		find = edge.FindLinear
	}
	return &AlphaCropper{config: config, find: find}
}

// Key identifies the settings that affect ContentBox results.
func (c *AlphaCropper) Key() string {
	strategy := c.config.Strategy
	if strategy == "" {
		strategy = StrategyBinary
	}
	return fmt.Sprintf("%s:p%d", strategy, c.config.Padding)
}

// CropResult contains the result of a cropping operation
type CropResult struct {
	Image        image.Image
	Box          types.Box
	SourceWidth  int
	SourceHeight int
}

// Trimmed reports whether the crop removed anything.
func (r CropResult) Trimmed() bool {
	return r.Box.Width() != r.SourceWidth || r.Box.Height() != r.SourceHeight
}

// ContentBox returns the tightest box holding every column and row with
// non-zero alpha, in coordinates relative to img.Bounds().Min.
func (c *AlphaCropper) ContentBox(img image.Image) (types.Box, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return types.Box{}, fmt.Errorf("invalid image dimensions %dx%d", bounds.Dx(), bounds.Dy())
	}

	cols, rows := projection.Alpha(img)

	x0, x1, ok := edge.BoundsWith(c.find, cols)
	if !ok {
		return types.Box{}, ErrBlank
	}
	y0, y1, ok := edge.BoundsWith(c.find, rows)
	if !ok {
		return types.Box{}, ErrBlank
	}

	box := types.Box{X0: x0, X1: x1, Y0: y0, Y1: y1}
	if c.config.Padding > 0 {
		box = pad(box, c.config.Padding, bounds.Dx(), bounds.Dy())
	}
	return box, nil
}

// Crop trims img to its content box. The result starts at (0,0) and keeps
// the color model of img wherever the concrete type supports SubImage.
func (c *AlphaCropper) Crop(img image.Image) (CropResult, error) {
	box, err := c.ContentBox(img)
	if err != nil {
		return CropResult{}, err
	}

	cropped, err := CropToBox(img, box)
	if err != nil {
		return CropResult{}, err
	}

	bounds := img.Bounds()
	return CropResult{
		Image:        cropped,
		Box:          box,
		SourceWidth:  bounds.Dx(),
		SourceHeight: bounds.Dy(),
	}, nil
}

// CropToBox slices img to box. The source is never modified.
func CropToBox(img image.Image, box types.Box) (image.Image, error) {
	bounds := img.Bounds()
	if !box.Within(bounds.Dx(), bounds.Dy()) || box.Empty() {
		return nil, fmt.Errorf("crop box %+v outside %dx%d image", box, bounds.Dx(), bounds.Dy())
	}
	rect := box.Rect(bounds.Min)

	if sub, ok := img.(subImager); ok {
		return rebase(sub.SubImage(rect)), nil
	}

	// imaging.Crop converts to NRGBA and rebases to (0,0)
	return imaging.Crop(img, rect), nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// rebase shifts a sub-image so its bounds start at (0,0) without copying
// pixels, for the standard library types that expose Rect.
func rebase(img image.Image) image.Image {
	switch m := img.(type) {
	case *image.NRGBA:
		out := *m
		out.Rect = out.Rect.Sub(out.Rect.Min)
		return &out
	case *image.RGBA:
		out := *m
		out.Rect = out.Rect.Sub(out.Rect.Min)
		return &out
	case *image.NRGBA64:
		out := *m
		out.Rect = out.Rect.Sub(out.Rect.Min)
		return &out
	case *image.RGBA64:
		out := *m
		out.Rect = out.Rect.Sub(out.Rect.Min)
		return &out
	case *image.Paletted:
		out := *m
		out.Rect = out.Rect.Sub(out.Rect.Min)
		return &out
	case *image.Alpha:
		out := *m
		out.Rect = out.Rect.Sub(out.Rect.Min)
		return &out
	case *image.Alpha16:
		out := *m
		out.Rect = out.Rect.Sub(out.Rect.Min)
		return &out
	}
	return &croppedImage{original: img, bounds: img.Bounds()}
}

func pad(box types.Box, padding, width, height int) types.Box {
	return types.Box{
		X0: max(box.X0-padding, 0),
		X1: min(box.X1+padding, width),
		Y0: max(box.Y0-padding, 0),
		Y1: min(box.Y1+padding, height),
	}
}

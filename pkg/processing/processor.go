package processing

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/quickcrop/pkg/types"
)

// Output formats understood by Encode and SaveImage.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Processor handles image decoding and encoding
type Processor struct {
	compression png.CompressionLevel
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{compression: png.BestCompression}
}

// NewProcessorWithCompression creates a processor with a specific PNG
// compression level
func NewProcessorWithCompression(level png.CompressionLevel) *Processor {
	return &Processor{compression: level}
}

// PNG compression names accepted by ParseCompression
const (
	CompressionDefault = "default"
	CompressionNone    = "none"
	CompressionSpeed   = "speed"
	CompressionBest    = "best"
)

// ParseCompression maps a compression name to a PNG compression level. The
// empty string selects CompressionBest.
func ParseCompression(name string) (png.CompressionLevel, error) {
	switch strings.ToLower(name) {
	case "", CompressionBest:
		return png.BestCompression, nil
	case CompressionDefault:
		return png.DefaultCompression, nil
	case CompressionNone:
		return png.NoCompression, nil
	case CompressionSpeed:
		return png.BestSpeed, nil
	}
	return 0, fmt.Errorf("unknown png compression %q", name)
}

// KeepAlpha marks img as translucent so PNG encoding writes an alpha
// channel even when every pixel of img is opaque. Paletted images are
// returned unchanged since their palette already carries transparency.
func KeepAlpha(img image.Image) image.Image {
	switch img.(type) {
	case image.PalettedImage, alphaImage:
		return img
	}
	return alphaImage{img}
}

// alphaImage reports itself as never opaque
type alphaImage struct {
	image.Image
}

func (alphaImage) Opaque() bool { return false }

// DecodeBytes decodes an image from byte data with WebP support
func (p *Processor) DecodeBytes(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}

	if img, webpErr := webp.Decode(bytes.NewReader(data)); webpErr == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format: %w", err)
}

// Encode writes img to w in the given format. PNG output keeps the color
// model of img; WebP output is lossless unless lossless is false, in which
// case quality (1-100) applies.
func (p *Processor) Encode(w io.Writer, img image.Image, format string, quality int, lossless bool) error {
	switch NormalizeFormat(format) {
	case FormatWebP:
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(w, img, opts)
	case FormatPNG:
		return imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(p.compression))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := p.Encode(f, img, format, quality, lossless); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// NormalizeFormat lowercases a format name and maps the empty string to PNG.
func NormalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		return FormatPNG
	}
	return format
}

// SupportedFormat reports whether Encode can write format.
func SupportedFormat(format string) bool {
	switch NormalizeFormat(format) {
	case FormatPNG, FormatWebP:
		return true
	}
	return false
}

// CreateDebugOverlay returns a copy of img with box outlined, for checking
// a detected content box by eye.
func (p *Processor) CreateDebugOverlay(img image.Image, box types.Box) image.Image {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	gold := color.NRGBA{255, 204, 0, 255}
	stroke := maxInt(1, minInt(w, h)/250)

	if !box.Empty() {
		drawBox(nrgba, box, gold, stroke)
	}
	return nrgba
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func drawBox(img *image.NRGBA, box types.Box, color color.NRGBA, stroke int) {
	for s := 0; s < stroke; s++ {
		drawHLine(img, box.Y0+s, box.X0, box.X1, color)
		drawHLine(img, box.Y1-1-s, box.X0, box.X1, color)
		drawVLine(img, box.X0+s, box.Y0, box.Y1, color)
		drawVLine(img, box.X1-1-s, box.Y0, box.Y1, color)
	}
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	if y < 0 || y >= img.Bounds().Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if x1 <= 0 || x0 >= img.Bounds().Dx() {
		return
	}
	if x0 < 0 {
		x0 = 0
	}
	if x1 > img.Bounds().Dx() {
		x1 = img.Bounds().Dx()
	}
	i := y*img.Stride + x0*4
	for x := x0; x < x1; x++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += 4
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	if x < 0 || x >= img.Bounds().Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	if y1 <= 0 || y0 >= img.Bounds().Dy() {
		return
	}
	if y0 < 0 {
		y0 = 0
	}
	if y1 > img.Bounds().Dy() {
		y1 = img.Bounds().Dy()
	}
	i := y0*img.Stride + x*4
	for y := y0; y < y1; y++ {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
		i += img.Stride
	}
}

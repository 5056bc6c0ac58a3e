package processing

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/quickcrop/pkg/types"
)

// createTestImage creates a half-transparent NRGBA test image
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width/2; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 10), uint8(y * 10), 128, 255})
		}
	}
	return img
}

func TestEncodeDecodePNGKeepsAlpha(t *testing.T) {
	p := NewProcessor()
	src := createTestImage(8, 6)

	var buf bytes.Buffer
	require.NoError(t, p.Encode(&buf, src, "png", 0, false))

	img, err := p.DecodeBytes(buf.Bytes())
	require.NoError(t, err)

	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok, "expected *image.NRGBA, got %T", img)
	assert.Equal(t, src.Pix, nrgba.Pix)
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	p := NewProcessor()
	err := p.Encode(&bytes.Buffer{}, createTestImage(2, 2), "bmp", 0, false)
	assert.Error(t, err)
}

func TestSaveImage(t *testing.T) {
	p := NewProcessor()
	path := filepath.Join(t.TempDir(), "out.png")

	require.NoError(t, p.SaveImage(createTestImage(10, 4), path, FormatPNG, 0, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := p.DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
}

func TestDecodeBytesGarbage(t *testing.T) {
	_, err := NewProcessor().DecodeBytes([]byte("not an image"))
	assert.Error(t, err)
}

func TestEncodeOpaqueDropsAlphaWithoutKeepAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 200
	}
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}

	var plain, kept bytes.Buffer
	require.NoError(t, png.Encode(&plain, src))
	require.NoError(t, NewProcessor().Encode(&kept, KeepAlpha(src), FormatPNG, 0, true))

	img, err := png.Decode(&plain)
	require.NoError(t, err)
	_, isRGBA := img.(*image.RGBA)
	assert.True(t, isRGBA, "opaque NRGBA encodes without alpha, got %T", img)

	img, err = png.Decode(&kept)
	require.NoError(t, err)
	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok, "expected *image.NRGBA, got %T", img)
	assert.Equal(t, src.Pix, nrgba.Pix)
}

func TestKeepAlphaSixteenBit(t *testing.T) {
	src := image.NewNRGBA64(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.SetNRGBA64(x, y, color.NRGBA64{R: 0x1234, A: 0xffff})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, NewProcessor().Encode(&buf, KeepAlpha(src), FormatPNG, 0, true))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	_, ok := img.(*image.NRGBA64)
	assert.True(t, ok, "expected *image.NRGBA64, got %T", img)
}

func TestKeepAlphaPalettedUnchanged(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Transparent, color.White})
	assert.Same(t, pal, KeepAlpha(pal))

	wrapped := KeepAlpha(createTestImage(2, 2))
	assert.Equal(t, wrapped, KeepAlpha(wrapped))
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		name string
		want png.CompressionLevel
	}{
		{"", png.BestCompression},
		{"best", png.BestCompression},
		{"BEST", png.BestCompression},
		{"default", png.DefaultCompression},
		{"none", png.NoCompression},
		{"speed", png.BestSpeed},
	}
	for _, tt := range tests {
		level, err := ParseCompression(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, level, tt.name)
	}

	_, err := ParseCompression("ultra")
	assert.Error(t, err)
}

func TestCompressionLevels(t *testing.T) {
	src := createTestImage(64, 64)

	var best, none bytes.Buffer
	require.NoError(t, NewProcessor().Encode(&best, src, FormatPNG, 0, true))
	require.NoError(t, NewProcessorWithCompression(png.NoCompression).Encode(&none, src, FormatPNG, 0, true))

	assert.Less(t, best.Len(), none.Len())

	img, err := png.Decode(&none)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, img.(*image.NRGBA).Pix)
}

func TestNormalizeFormat(t *testing.T) {
	assert.Equal(t, FormatPNG, NormalizeFormat(""))
	assert.Equal(t, FormatPNG, NormalizeFormat(".PNG"))
	assert.Equal(t, FormatWebP, NormalizeFormat("WebP"))

	assert.True(t, SupportedFormat("png"))
	assert.True(t, SupportedFormat("webp"))
	assert.False(t, SupportedFormat("jpg"))
}

func TestCreateDebugOverlay(t *testing.T) {
	p := NewProcessor()
	src := createTestImage(20, 20)

	overlay := p.CreateDebugOverlay(src, types.Box{X0: 2, X1: 10, Y0: 3, Y1: 12})
	nrgba, ok := overlay.(*image.NRGBA)
	require.True(t, ok)

	assert.Equal(t, color.NRGBA{255, 204, 0, 255}, nrgba.NRGBAAt(2, 3))
	assert.Equal(t, color.NRGBA{255, 204, 0, 255}, nrgba.NRGBAAt(9, 11))
	// source untouched
	assert.NotEqual(t, color.NRGBA{255, 204, 0, 255}, src.NRGBAAt(2, 3))
}

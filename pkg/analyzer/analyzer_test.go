package analyzer

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImage creates an NRGBA image with a transparent left half
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			img.Set(x, y, color.NRGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	analyzer := New()
	require.NotNil(t, analyzer)
	assert.True(t, analyzer.config.RequireAlpha)
	assert.Equal(t, []string{"png"}, analyzer.config.SupportedFormats)
}

func TestNewWithConfig(t *testing.T) {
	cfg := Config{
		SupportedFormats: []string{"png", "webp"},
		MinImageSize:     200,
	}

	analyzer := NewWithConfig(cfg)
	require.NotNil(t, analyzer)
	assert.Equal(t, 200, analyzer.config.MinImageSize)
	assert.False(t, analyzer.config.RequireAlpha)
}

func TestGetImageInfo(t *testing.T) {
	analyzer := New()
	img := createTestImage(400, 300)

	info := analyzer.GetImageInfo(img)

	assert.Equal(t, 400, info.Width)
	assert.Equal(t, 300, info.Height)
	assert.Equal(t, float64(400)/float64(300), info.AspectRatio)
	assert.Equal(t, 120000, info.Area)
	assert.True(t, info.HasAlpha)
}

func TestHasAlpha(t *testing.T) {
	opaqueRGBA := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 3; i < len(opaqueRGBA.Pix); i += 4 {
		opaqueRGBA.Pix[i] = 255
	}
	translucentRGBA := image.NewRGBA(image.Rect(0, 0, 2, 2))

	opaquePalette := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})
	alphaPalette := image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Transparent, color.White})

	tests := []struct {
		name string
		img  image.Image
		want bool
	}{
		{"nrgba", image.NewNRGBA(image.Rect(0, 0, 2, 2)), true},
		{"nrgba64", image.NewNRGBA64(image.Rect(0, 0, 2, 2)), true},
		{"alpha", image.NewAlpha(image.Rect(0, 0, 2, 2)), true},
		{"opaque rgba", opaqueRGBA, false},
		{"translucent rgba", translucentRGBA, true},
		{"gray", image.NewGray(image.Rect(0, 0, 2, 2)), false},
		{"opaque palette", opaquePalette, false},
		{"alpha palette", alphaPalette, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasAlpha(tt.img))
		})
	}
}

func TestValidateImage(t *testing.T) {
	analyzer := New()

	assert.NoError(t, analyzer.ValidateImage(createTestImage(4, 4)))

	err := analyzer.ValidateImage(image.NewGray(image.Rect(0, 0, 4, 4)))
	assert.ErrorIs(t, err, ErrNoAlpha)

	err = analyzer.ValidateImage(image.NewNRGBA(image.Rect(0, 0, 0, 0)))
	assert.Error(t, err)
}

func TestLoadImageFromBytes(t *testing.T) {
	analyzer := New()

	img, err := analyzer.LoadImageFromBytes(encodePNG(t, createTestImage(6, 3)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 3), img.Bounds())
}

func TestLoadImageOpaquePNGHasNoAlpha(t *testing.T) {
	analyzer := New()

	// an all-opaque NRGBA is written as truecolor without alpha
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	_, err := analyzer.LoadImageFromBytes(encodePNG(t, img))
	assert.ErrorIs(t, err, ErrNoAlpha)
}

func TestLoadImageUnsupportedFormat(t *testing.T) {
	analyzer := New()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 4, 4)), nil))

	_, err := analyzer.LoadImageFromBytes(buf.Bytes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image format")
}

func TestLoadImageMissingFile(t *testing.T) {
	analyzer := New()
	_, err := analyzer.LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadImageFromReader(t *testing.T) {
	analyzer := New()
	_, err := analyzer.LoadImageFromReader(bytes.NewReader([]byte("garbage")))
	assert.Error(t, err)
}

func BenchmarkGetImageInfo(b *testing.B) {
	analyzer := New()
	img := createTestImage(1920, 1080)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		analyzer.GetImageInfo(img)
	}
}

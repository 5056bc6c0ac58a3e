// Package projection computes per-axis alpha sums of an image.
package projection

import (
	"image"
)

// Alpha computes the alpha projections of img: cols[x] is the sum of the
// alpha channel over column x and rows[y] the sum over row y, with x and y
// relative to img.Bounds().Min.
//
// Alpha values are accumulated in the 16-bit range of color.Color (0..65535),
// so 8-bit and 16-bit sources both yield a non-zero sum for any column or
// row holding a pixel that is not fully transparent.
func Alpha(img image.Image) (cols, rows []uint64) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	cols = make([]uint64, width)
	rows = make([]uint64, height)
	if width == 0 || height == 0 {
		return cols, rows
	}

	switch src := img.(type) {
	case *image.NRGBA:
		accumulate8(src.Pix, src.Stride, 4, 3, width, height, cols, rows)
	case *image.RGBA:
		accumulate8(src.Pix, src.Stride, 4, 3, width, height, cols, rows)
	case *image.Alpha:
		accumulate8(src.Pix, src.Stride, 1, 0, width, height, cols, rows)
	case *image.NRGBA64:
		accumulate16(src.Pix, src.Stride, 8, 6, width, height, cols, rows)
	case *image.RGBA64:
		accumulate16(src.Pix, src.Stride, 8, 6, width, height, cols, rows)
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				_, _, _, a := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				cols[x] += uint64(a)
				rows[y] += uint64(a)
			}
		}
	}

	return cols, rows
}

// accumulate8 walks an 8-bit-per-channel pixel buffer. pixSize is the number
// of bytes per pixel and alphaOff the offset of the alpha byte in a pixel.
func accumulate8(pix []uint8, stride, pixSize, alphaOff, width, height int, cols, rows []uint64) {
	for y := 0; y < height; y++ {
		i := y*stride + alphaOff
		var rowSum uint64
		for x := 0; x < width; x++ {
			// scale to 16 bits like color.Color.RGBA does
			a := uint64(pix[i]) * 0x101
			cols[x] += a
			rowSum += a
			i += pixSize
		}
		rows[y] = rowSum
	}
}

// accumulate16 is accumulate8 for big-endian 16-bit channels.
func accumulate16(pix []uint8, stride, pixSize, alphaOff, width, height int, cols, rows []uint64) {
	for y := 0; y < height; y++ {
		i := y*stride + alphaOff
		var rowSum uint64
		for x := 0; x < width; x++ {
			a := uint64(pix[i])<<8 | uint64(pix[i+1])
			cols[x] += a
			rowSum += a
			i += pixSize
		}
		rows[y] = rowSum
	}
}

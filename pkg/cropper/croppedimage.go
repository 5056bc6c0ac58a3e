package cropper

import (
	"image"
	"image/color"
)

// croppedImage presents a region of another image with bounds starting at
// (0,0). It is used for SubImage results whose concrete type cannot be
// rebased in place.
type croppedImage struct {
	original image.Image
	bounds   image.Rectangle
}

func (c *croppedImage) ColorModel() color.Model {
	return c.original.ColorModel()
}

func (c *croppedImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.bounds.Dx(), c.bounds.Dy())
}

func (c *croppedImage) At(x, y int) color.Color {
	pt := image.Point{x, y}
	if !pt.In(c.Bounds()) {
		return c.original.ColorModel().Convert(color.Transparent)
	}
	return c.original.At(x+c.bounds.Min.X, y+c.bounds.Min.Y)
}

// Opaque scans the region, so png.Encoder picks the right color type.
func (c *croppedImage) Opaque() bool {
	for y := 0; y < c.bounds.Dy(); y++ {
		for x := 0; x < c.bounds.Dx(); x++ {
			if _, _, _, a := c.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

package types

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxDimensions(t *testing.T) {
	b := Box{X0: 2, X1: 10, Y0: 3, Y1: 7}
	assert.Equal(t, 8, b.Width())
	assert.Equal(t, 4, b.Height())
	assert.False(t, b.Empty())

	assert.True(t, Box{X0: 4, X1: 4, Y0: 0, Y1: 3}.Empty())
}

func TestBoxRect(t *testing.T) {
	b := Box{X0: 1, X1: 3, Y0: 2, Y1: 5}
	assert.Equal(t, image.Rect(1, 2, 3, 5), b.Rect(image.Point{}))
	assert.Equal(t, image.Rect(11, 22, 13, 25), b.Rect(image.Pt(10, 20)))
}

func TestBoxWithin(t *testing.T) {
	assert.True(t, Box{0, 10, 0, 5}.Within(10, 5))
	assert.False(t, Box{0, 11, 0, 5}.Within(10, 5))
	assert.False(t, Box{3, 2, 0, 5}.Within(10, 5))
	assert.False(t, Box{-1, 2, 0, 5}.Within(10, 5))
}

func TestSummaryOK(t *testing.T) {
	assert.True(t, Summary{Attempted: 2, Succeeded: 2}.OK())
	assert.False(t, Summary{Attempted: 2, Succeeded: 1, Failed: 1}.OK())
}

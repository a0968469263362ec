package preprocess

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frame returns a white RGBA image.
func frame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func fillRect(img *image.RGBA, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, color.Black)
		}
	}
}

// tiltedBar draws a bar of half-length l and half-width t centered at
// (cx, cy), leaning deg degrees clockwise.
func tiltedBar(b *Bitmap, cx, cy, l, t, deg float64) {
	sin, cos := math.Sincos(deg * math.Pi / 180)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			along := dx*cos + dy*sin
			across := -dx*sin + dy*cos
			if math.Abs(along) <= l && math.Abs(across) <= t {
				b.Set(x, y, true)
			}
		}
	}
}

func TestBinarize(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 20, 15, 21))
	img.Set(10, 20, color.RGBA{0, 0, 0, 255})
	img.Set(11, 20, color.RGBA{100, 100, 100, 255})
	img.Set(12, 20, color.RGBA{255, 0, 0, 255})
	img.Set(13, 20, color.RGBA{200, 200, 200, 255})
	img.Set(14, 20, color.RGBA{255, 255, 0, 255})

	b := Binarize(img, 170)
	require.Equal(t, 5, b.Width)
	require.Equal(t, 1, b.Height)
	assert.Equal(t, []bool{true, true, true, false, false}, b.Pix)
}

func TestBinarizeIsStableOnBinaryImages(t *testing.T) {
	b := NewBitmap(6, 4)
	b.Set(1, 1, true)
	b.Set(4, 2, true)
	assert.True(t, b.Equal(Binarize(b.Image(), 170)))
}

func TestContentBounds(t *testing.T) {
	b := NewBitmap(20, 10)
	assert.Equal(t, image.Rect(0, 0, 20, 10), b.ContentBounds(3))

	b.Set(5, 3, true)
	b.Set(8, 6, true)
	assert.Equal(t, image.Rect(5, 3, 9, 7), b.ContentBounds(0))
	assert.Equal(t, image.Rect(3, 1, 11, 9), b.ContentBounds(2))
	assert.Equal(t, image.Rect(0, 0, 20, 10), b.ContentBounds(10))
}

func TestCrop(t *testing.T) {
	b := NewBitmap(6, 6)
	b.Set(2, 3, true)
	c := b.Crop(image.Rect(2, 2, 5, 6))
	require.Equal(t, 3, c.Width)
	require.Equal(t, 4, c.Height)
	assert.True(t, c.At(0, 1))
	assert.Equal(t, 1, c.Count())

	clipped := b.Crop(image.Rect(-4, -4, 100, 3))
	assert.Equal(t, 6, clipped.Width)
	assert.Equal(t, 3, clipped.Height)
}

func TestSkewAngle(t *testing.T) {
	for _, deg := range []float64{0, 12, 20, -20, 35} {
		b := NewBitmap(100, 100)
		tiltedBar(b, 50, 50, 35, 3, deg)
		assert.InDelta(t, deg, b.SkewAngle(20), 1.5, "bar at %v degrees", deg)
	}

	upright := NewBitmap(40, 40)
	tiltedBar(upright, 20, 20, 15, 2, 90)
	assert.InDelta(t, 0, upright.SkewAngle(20), 1e-9)

	sparse := NewBitmap(40, 40)
	tiltedBar(sparse, 20, 20, 4, 0.5, 30)
	require.Less(t, sparse.Count(), 20)
	assert.Zero(t, sparse.SkewAngle(20))
}

func TestRotate(t *testing.T) {
	b := NewBitmap(10, 10)
	b.Set(1, 1, true)
	assert.True(t, b.Equal(b.Rotate(0)))

	r := b.Rotate(90)
	assert.Equal(t, 1, r.Count())
	assert.True(t, r.At(8, 1), "top-left pixel should move to the top-right")
}

func TestRotateUndoesSkew(t *testing.T) {
	b := NewBitmap(100, 100)
	tiltedBar(b, 50, 50, 35, 4, 25)
	angle := b.SkewAngle(20)
	straight := b.Rotate(-angle)
	assert.InDelta(t, 0, straight.SkewAngle(20), 2)
}

func TestResizeKeepAspect(t *testing.T) {
	b := NewBitmap(10, 20)
	for i := range b.Pix {
		b.Pix[i] = true
	}
	r := b.ResizeKeepAspect(32, 2)
	require.Equal(t, 32, r.Width)
	assert.Equal(t, 14*28, r.Count())
	assert.True(t, r.At(9, 2))
	assert.True(t, r.At(22, 29))
	assert.False(t, r.At(8, 2))
	assert.False(t, r.At(23, 2))
	assert.False(t, r.At(9, 1))
	assert.False(t, r.At(9, 30))

	empty := NewBitmap(0, 5).ResizeKeepAspect(32, 2)
	assert.Zero(t, empty.Count())
	assert.Equal(t, 32*32, len(empty.Pix))
}

func TestResizeSameSizeIsIdentity(t *testing.T) {
	b := NewBitmap(28, 15)
	tiltedBar(b, 14, 7, 12, 3, 10)
	r := b.ResizeKeepAspect(32, 2)
	assert.True(t, b.Equal(r.Crop(image.Rect(2, 8, 30, 23))))
}

func TestCenterByMass(t *testing.T) {
	b := NewBitmap(32, 32)
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			b.Set(x, y, true)
		}
	}
	c := b.CenterByMass(10)
	assert.Equal(t, 16, c.Count())
	assert.True(t, c.At(14, 14))
	assert.True(t, c.At(17, 17))
	assert.True(t, c.Equal(c.CenterByMass(10)))

	assert.True(t, b.Equal(b.CenterByMass(20)))
}

func TestDivRoundEven(t *testing.T) {
	for _, tc := range []struct{ num, den, want int }{
		{5, 2, 2}, {7, 2, 4}, {-5, 2, -2}, {-7, 2, -4},
		{-1, 2, 0}, {1, 2, 0}, {3, 4, 1}, {-3, 4, -1}, {1, 4, 0}, {400, 32, 12},
	} {
		assert.Equal(t, tc.want, divRoundEven(tc.num, tc.den), "%d/%d", tc.num, tc.den)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	b := NewBitmap(4, 4)
	b.Set(0, 0, true)
	b.Set(3, 2, true)
	v := b.Vector()
	assert.Equal(t, 1.0, v[0])
	assert.Equal(t, 1.0, v[2*4+3])
	assert.Equal(t, 2.0, Ink(v))

	back, err := FromVector(v, 4)
	require.NoError(t, err)
	assert.True(t, b.Equal(back))

	_, err = FromVector(v, 5)
	assert.Error(t, err)
}

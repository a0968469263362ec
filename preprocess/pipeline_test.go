package preprocess

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func pauseFrame(dx, dy int) *image.RGBA {
	img := frame(100, 80)
	fillRect(img, image.Rect(30+dx, 15+dy, 40+dx, 65+dy))
	fillRect(img, image.Rect(55+dx, 15+dy, 65+dx, 65+dy))
	return img
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := []Config{
		{Size: 0, Margin: 0},
		{Size: 4, Margin: 2},
		{Size: 32, Margin: 2, Padding: -1},
		{Size: 32, Margin: -1},
		{Size: 32, Margin: 2, MinPixels: -3},
	}
	for _, c := range bad {
		assert.Error(t, c.Validate(), "%+v", c)
	}
}

func TestEmptyFrameYieldsZeroVector(t *testing.T) {
	c := DefaultConfig()
	v := c.Vector(frame(80, 60))
	require.Len(t, v, c.VectorLen())
	assert.Zero(t, Ink(v))
}

func TestPipelineIsDeterministic(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, c.Vector(pauseFrame(0, 0)), c.Vector(pauseFrame(0, 0)))
}

func TestPipelineIgnoresPosition(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, c.Vector(pauseFrame(0, 0)), c.Vector(pauseFrame(-12, 8)))
}

func TestPipelineIsIdempotent(t *testing.T) {
	c := Config{Size: 32, Threshold: 128, Padding: 0, Margin: 2, MinPixels: 20}
	first := c.Bitmap(pauseFrame(3, -4))
	require.NotZero(t, first.Count())

	second := c.Bitmap(first.Image())
	assert.True(t, first.Equal(second))
	assert.Equal(t, first.Vector(), c.Vector(first.Image()))
}

func TestDefaultPaddingShrinksOnSecondPass(t *testing.T) {
	c := DefaultConfig()
	first := c.Bitmap(pauseFrame(3, -4))
	second := c.Bitmap(first.Image())

	b1, b2 := first.ContentBounds(0), second.ContentBounds(0)
	inner := image.Rect(c.Margin, c.Margin, c.Size-c.Margin, c.Size-c.Margin)
	assert.True(t, b1.In(inner), "%v", b1)
	assert.True(t, b2.In(inner), "%v", b2)

	// Padding leaves a white border inside the resized box, so the content
	// never reaches Size-2*Margin and the next pass scales it down.
	assert.Less(t, b1.Dy(), c.Size-2*c.Margin)
	assert.Less(t, b2.Dy(), b1.Dy())
	assert.LessOrEqual(t, second.Count(), first.Count())
	assert.False(t, first.Equal(second))
	assert.True(t, second.Equal(second.CenterByMass(c.MinPixels)))
}

func TestPipelineStraightensTiltedStroke(t *testing.T) {
	b := NewBitmap(120, 120)
	tiltedBar(b, 60, 60, 45, 5, 20)
	out := DefaultConfig().Normalize(b)
	assert.InDelta(t, 0, out.SkewAngle(20), 5)
}

func TestPipelineOutputIsCentered(t *testing.T) {
	c := DefaultConfig()
	out := c.Bitmap(pauseFrame(0, 0))
	assert.True(t, out.Equal(out.CenterByMass(c.MinPixels)))
}

func TestSaltPepper(t *testing.T) {
	b := NewBitmap(8, 8)
	b.Set(2, 2, true)
	rng := rand.New(rand.NewSource(1))

	assert.True(t, b.Equal(SaltPepper(b, 0, rng)))

	inverted := SaltPepper(b, 1, rng)
	assert.Equal(t, 63, inverted.Count())
	assert.False(t, inverted.At(2, 2))
}

func TestShift(t *testing.T) {
	b := NewBitmap(8, 8)
	b.Set(2, 2, true)
	b.Set(7, 7, true)
	s := Shift(b, 1, -2)
	assert.True(t, s.At(3, 0))
	assert.Equal(t, 1, s.Count())
}

func TestAugmentIsSeeded(t *testing.T) {
	b := DefaultConfig().Bitmap(pauseFrame(0, 0))
	a := Augment(b, 5, 2, 0.02, rand.New(rand.NewSource(42)))
	c := Augment(b, 5, 2, 0.02, rand.New(rand.NewSource(42)))
	require.Len(t, a, 5)
	for i := range a {
		assert.True(t, a[i].Equal(c[i]))
	}
}

func TestAugmentNegativeShiftDoesNotMove(t *testing.T) {
	b := DefaultConfig().Bitmap(pauseFrame(0, 0))
	var out []*Bitmap
	require.NotPanics(t, func() {
		out = Augment(b, 3, -2, 0, rand.New(rand.NewSource(7)))
	})
	require.Len(t, out, 3)
	for _, a := range out {
		assert.True(t, b.Equal(a))
	}
}

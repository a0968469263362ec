package preprocess

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Bitmap is a binary image, row-major, true = black (ink).
type Bitmap struct {
	Width, Height int
	Pix           []bool
}

func NewBitmap(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Bitmap{Width: width, Height: height, Pix: make([]bool, width*height)}
}

// At reports whether (x, y) is black. Outside the bitmap everything is white.
func (b *Bitmap) At(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Pix[y*b.Width+x]
}

func (b *Bitmap) Set(x, y int, black bool) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	b.Pix[y*b.Width+x] = black
}

func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{Width: b.Width, Height: b.Height, Pix: append([]bool(nil), b.Pix...)}
}

func (b *Bitmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// Count returns the number of black pixels.
func (b *Bitmap) Count() int {
	n := 0
	for _, p := range b.Pix {
		if p {
			n++
		}
	}
	return n
}

func (b *Bitmap) Equal(o *Bitmap) bool {
	if b.Width != o.Width || b.Height != o.Height {
		return false
	}
	for i, p := range b.Pix {
		if p != o.Pix[i] {
			return false
		}
	}
	return true
}

// Binarize thresholds the luminance Y = 0.299R + 0.587G + 0.114B of every
// pixel: Y < threshold is black.
func Binarize(img image.Image, threshold uint8) *Bitmap {
	bounds := img.Bounds()
	b := NewBitmap(bounds.Dx(), bounds.Dy())
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			r, g, bl, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			lum := uint8(0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8))
			b.Pix[y*b.Width+x] = lum < threshold
		}
	}
	return b
}

// ContentBounds is the smallest rectangle holding every black pixel, grown by
// padding on each side and clamped to the bitmap. Without ink it is the whole
// bitmap.
func (b *Bitmap) ContentBounds(padding int) image.Rectangle {
	minX, minY, maxX, maxY := b.Width, b.Height, -1, -1
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if !b.Pix[y*b.Width+x] {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}
	if maxX < 0 {
		return b.Bounds()
	}
	return image.Rect(minX-padding, minY-padding, maxX+padding+1, maxY+padding+1).Intersect(b.Bounds())
}

// Crop copies r (clipped to the bitmap) into a new bitmap.
func (b *Bitmap) Crop(r image.Rectangle) *Bitmap {
	r = r.Intersect(b.Bounds())
	dst := NewBitmap(r.Dx(), r.Dy())
	for y := 0; y < dst.Height; y++ {
		copy(dst.Pix[y*dst.Width:(y+1)*dst.Width], b.Pix[(r.Min.Y+y)*b.Width+r.Min.X:])
	}
	return dst
}

// SkewAngle estimates the principal axis of the ink, in degrees, folded into
// [-45, 45]. Positive angles lean clockwise. With fewer than minPixels black
// pixels it returns 0.
func (b *Bitmap) SkewAngle(minPixels int) float64 {
	n := b.Count()
	if n < minPixels || n < 2 {
		return 0
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Pix[y*b.Width+x] {
				xs = append(xs, float64(x))
				ys = append(ys, float64(y))
			}
		}
	}

	sxx := stat.Variance(xs, nil)
	syy := stat.Variance(ys, nil)
	sxy := stat.Covariance(xs, ys, nil)

	deg := 0.5 * math.Atan2(2*sxy, sxx-syy) * 180 / math.Pi
	if deg > 45 {
		deg -= 90
	}
	if deg < -45 {
		deg += 90
	}
	return deg
}

// Rotate turns the bitmap clockwise by deg around its center on a canvas of
// the same size. Exposed background is white; sampling is nearest neighbour.
func (b *Bitmap) Rotate(deg float64) *Bitmap {
	if deg == 0 {
		return b.Clone()
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	cx, cy := float64(b.Width)/2, float64(b.Height)/2

	dst := NewBitmap(b.Width, b.Height)
	for y := 0; y < b.Height; y++ {
		py := float64(y) + 0.5 - cy
		for x := 0; x < b.Width; x++ {
			px := float64(x) + 0.5 - cx
			sx := int(math.Floor(cx + cos*px + sin*py))
			sy := int(math.Floor(cy - sin*px + cos*py))
			dst.Pix[y*dst.Width+x] = b.At(sx, sy)
		}
	}
	return dst
}

// ResizeKeepAspect scales the bitmap so its longer side is size-2*margin,
// then centers it on a white size×size canvas.
func (b *Bitmap) ResizeKeepAspect(size, margin int) *Bitmap {
	dst := NewBitmap(size, size)
	target := size - 2*margin
	if b.Width <= 0 || b.Height <= 0 || target <= 0 {
		return dst
	}

	scale := math.Min(float64(target)/float64(b.Width), float64(target)/float64(b.Height))
	nw := max(1, int(math.Round(float64(b.Width)*scale)))
	nh := max(1, int(math.Round(float64(b.Height)*scale)))
	ox, oy := (size-nw)/2, (size-nh)/2

	for y := 0; y < nh; y++ {
		sy := int((float64(y) + 0.5) * float64(b.Height) / float64(nh))
		for x := 0; x < nw; x++ {
			sx := int((float64(x) + 0.5) * float64(b.Width) / float64(nw))
			dst.Set(ox+x, oy+y, b.At(sx, sy))
		}
	}
	return dst
}

// CenterByMass translates the bitmap so the ink centroid lands on the
// canvas center. The offset is rounded half to even in exact integer
// arithmetic, so centering centered content is a no-op. Bitmaps with fewer
// than minPixels black pixels are returned unchanged.
func (b *Bitmap) CenterByMass(minPixels int) *Bitmap {
	var sumX, sumY, n int
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Pix[y*b.Width+x] {
				sumX += x
				sumY += y
				n++
			}
		}
	}
	if n == 0 || n < minPixels {
		return b.Clone()
	}
	// W/2 - sumX/n == (W*n - 2*sumX) / 2n
	tx := divRoundEven(b.Width*n-2*sumX, 2*n)
	ty := divRoundEven(b.Height*n-2*sumY, 2*n)
	return b.Translate(tx, ty)
}

// Translate moves the content by (dx, dy). Pixels pushed off the canvas are
// lost; uncovered pixels are white.
func (b *Bitmap) Translate(dx, dy int) *Bitmap {
	if dx == 0 && dy == 0 {
		return b.Clone()
	}
	dst := NewBitmap(b.Width, b.Height)
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Pix[y*b.Width+x] {
				dst.Set(x+dx, y+dy, true)
			}
		}
	}
	return dst
}

// Vector flattens the bitmap row-major: black 1.0, white 0.0.
func (b *Bitmap) Vector() []float64 {
	v := make([]float64, len(b.Pix))
	for i, p := range b.Pix {
		if p {
			v[i] = 1
		}
	}
	return v
}

// Image renders the bitmap as black on white grayscale.
func (b *Bitmap) Image() *image.Gray {
	img := image.NewGray(b.Bounds())
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := color.Gray{Y: 255}
			if b.Pix[y*b.Width+x] {
				c.Y = 0
			}
			img.SetGray(x, y, c)
		}
	}
	return img
}

// FromVector rebuilds a size×size bitmap from a vector; values >= 0.5 are black.
func FromVector(v []float64, size int) (*Bitmap, error) {
	if len(v) != size*size {
		return nil, fmt.Errorf("vector has %d values, want %d for a %dx%d bitmap", len(v), size*size, size, size)
	}
	b := NewBitmap(size, size)
	for i, x := range v {
		b.Pix[i] = x >= 0.5
	}
	return b, nil
}

// divRoundEven returns num/den rounded to nearest, ties to even. den > 0.
func divRoundEven(num, den int) int {
	q, r := num/den, num%den
	if r < 0 {
		q--
		r += den
	}
	switch {
	case 2*r > den:
		q++
	case 2*r == den && q%2 != 0:
		q++
	}
	return q
}

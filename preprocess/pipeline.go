// Package preprocess turns a captured frame into the fixed-length vector the
// networks consume: binarize, crop to content, deskew, re-crop, resize into a
// padded square, center by mass, flatten.
package preprocess

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/floats"
)

type Config struct {
	Size      int   // edge of the square output bitmap
	Threshold uint8 // luminance below this is ink
	Padding   int   // white border kept around the content when cropping; see Normalize
	Margin    int   // white border inside the output square
	MinPixels int   // ink needed before skew and centering are attempted
}

func DefaultConfig() Config {
	return Config{
		Size:      32,
		Threshold: 170,
		Padding:   5,
		Margin:    2,
		MinPixels: 20,
	}
}

func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("size must be positive, got %d", c.Size)
	}
	if c.Margin < 0 || c.Size-2*c.Margin <= 0 {
		return fmt.Errorf("margin %d leaves no room in a %dx%d bitmap", c.Margin, c.Size, c.Size)
	}
	if c.Padding < 0 {
		return fmt.Errorf("padding must be non-negative, got %d", c.Padding)
	}
	if c.MinPixels < 0 {
		return fmt.Errorf("min pixels must be non-negative, got %d", c.MinPixels)
	}
	return nil
}

// VectorLen is the length of the vectors Vector produces.
func (c Config) VectorLen() int {
	return c.Size * c.Size
}

// Bitmap runs every stage up to and including center-of-mass alignment.
func (c Config) Bitmap(img image.Image) *Bitmap {
	return c.Normalize(Binarize(img, c.Threshold))
}

// Normalize runs the geometric stages on an already binary bitmap.
//
// Normalizing its own output reproduces it only when Padding is 0. A padded
// crop of the output spans more than the content, so the resize to
// Size-2*Margin shrinks the symbol again on every pass.
func (c Config) Normalize(bin *Bitmap) *Bitmap {
	cropped := bin.Crop(bin.ContentBounds(c.Padding))

	angle := cropped.SkewAngle(c.MinPixels)
	rotated := cropped.Rotate(-angle)

	recropped := rotated.Crop(rotated.ContentBounds(c.Padding))
	resized := recropped.ResizeKeepAspect(c.Size, c.Margin)
	return resized.CenterByMass(c.MinPixels)
}

// Vector preprocesses img into Size*Size values. A frame without a symbol
// yields a vector whose Ink is close to zero.
func (c Config) Vector(img image.Image) []float64 {
	return c.Bitmap(img).Vector()
}

// Ink is the amount of foreground in a preprocessed vector.
func Ink(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Sum(v)
}

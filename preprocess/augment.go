package preprocess

import "golang.org/x/exp/rand"

// SaltPepper flips every pixel independently with probability p.
func SaltPepper(b *Bitmap, p float64, rng *rand.Rand) *Bitmap {
	dst := b.Clone()
	for i := range dst.Pix {
		if rng.Float64() < p {
			dst.Pix[i] = !dst.Pix[i]
		}
	}
	return dst
}

// Shift moves the content by (dx, dy) inside the same frame.
func Shift(b *Bitmap, dx, dy int) *Bitmap {
	return b.Translate(dx, dy)
}

// Augment produces count noisy, shifted copies of b for training. Shifts are
// drawn from [-maxShift, maxShift] on both axes; a negative maxShift means
// no shift.
func Augment(b *Bitmap, count, maxShift int, noise float64, rng *rand.Rand) []*Bitmap {
	maxShift = max(maxShift, 0)
	out := make([]*Bitmap, 0, max(count, 0))
	for i := 0; i < count; i++ {
		dx := rng.Intn(2*maxShift+1) - maxShift
		dy := rng.Intn(2*maxShift+1) - maxShift
		out = append(out, SaltPepper(Shift(b, dx, dy), noise, rng))
	}
	return out
}

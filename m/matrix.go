package m

import (
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// newSource returns a deterministic source for a non-zero seed and a
// clock-seeded one otherwise.
func newSource(seed uint64) rand.Source {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.NewSource(seed)
}

// randomArray draws size values from U(-1/sqrt(fanIn), 1/sqrt(fanIn)),
// which is (U(0,1) - 0.5) * 2/sqrt(fanIn).
func randomArray(size int, fanIn float64, src rand.Source) []float64 {
	dist := distuv.Uniform{
		Min: -1 / math.Sqrt(fanIn),
		Max: 1 / math.Sqrt(fanIn),
		Src: src,
	}

	data := make([]float64, size)
	for i := 0; i < size; i++ {
		data[i] = dist.Rand()
	}
	return data
}

func zeroDense(m *mat.Dense) {
	raw := m.RawMatrix().Data
	for i := range raw {
		raw[i] = 0
	}
}

func zeroVec(v *mat.VecDense) {
	raw := v.RawVector().Data
	for i := range raw {
		raw[i] = 0
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

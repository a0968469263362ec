package m

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Activator is the output-layer nonlinearity together with the error
// gradient it pairs with. Hidden layers are always sigmoid.
type Activator interface {
	Activate(v *mat.VecDense)
	// OutputDelta writes dC/dnet for activations a against target y into dst.
	OutputDelta(dst, a, y *mat.VecDense)
	fmt.Stringer
}

// ActivatorLookup maps output activation names to activators.
var ActivatorLookup = map[string]Activator{
	"sigmoid": Sigmoid{},
	"softmax": Softmax{},
}

type Sigmoid struct{}

func (s Sigmoid) Activate(v *mat.VecDense) {
	raw := v.RawVector().Data
	for i, x := range raw {
		raw[i] = sigmoid(x)
	}
}

// OutputDelta is the quadratic-error gradient through the sigmoid.
func (s Sigmoid) OutputDelta(dst, a, y *mat.VecDense) {
	for j := 0; j < a.Len(); j++ {
		aj := a.AtVec(j)
		dst.SetVec(j, (aj-y.AtVec(j))*aj*(1-aj))
	}
}

func (s Sigmoid) String() string {
	return "sigmoid"
}

// Softmax treats the layer input as logits.
type Softmax struct{}

func (s Softmax) Activate(v *mat.VecDense) {
	softmaxInPlace(v.RawVector().Data)
}

// OutputDelta is the simplified cross-entropy gradient a - y.
func (s Softmax) OutputDelta(dst, a, y *mat.VecDense) {
	dst.SubVec(a, y)
}

func (s Softmax) String() string {
	return "softmax"
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func sigmoidPrime(a float64) float64 {
	return a * (1.0 - a)
}

func softmaxInPlace(v []float64) {
	max := floats.Max(v)
	for i := range v {
		v[i] = math.Exp(v[i] - max)
	}
	floats.Scale(1/floats.Sum(v), v)
}

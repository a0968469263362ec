package m

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// layers is the weight/activation state shared by the engines. Index 0 is
// the input layer and has no weights or biases; weights[l] is
// structure[l-1] x structure[l].
type layers struct {
	structure   []int
	output      Activator
	weights     []*mat.Dense
	biases      []*mat.VecDense
	activations []*mat.VecDense
	deltas      []*mat.VecDense
	target      *mat.VecDense
}

func newLayers(structure []int, output Activator, src rand.Source) *layers {
	n := len(structure)
	ls := &layers{
		structure: append([]int(nil), structure...),
		output:    output,
		weights:   make([]*mat.Dense, n),
		biases:    make([]*mat.VecDense, n),
	}
	for l := 1; l < n; l++ {
		rows, cols := structure[l-1], structure[l]
		ls.weights[l] = mat.NewDense(rows, cols, randomArray(rows*cols, float64(rows), src))
		ls.biases[l] = mat.NewVecDense(cols, nil)
	}
	ls.allocScratch()
	return ls
}

// scratch returns a view sharing weights and biases with private
// activation and delta buffers.
func (ls *layers) scratch() *layers {
	c := &layers{
		structure: ls.structure,
		output:    ls.output,
		weights:   ls.weights,
		biases:    ls.biases,
	}
	c.allocScratch()
	return c
}

func (ls *layers) allocScratch() {
	n := len(ls.structure)
	ls.activations = make([]*mat.VecDense, n)
	ls.deltas = make([]*mat.VecDense, n)
	for l, size := range ls.structure {
		ls.activations[l] = mat.NewVecDense(size, nil)
		ls.deltas[l] = mat.NewVecDense(size, nil)
	}
	ls.target = mat.NewVecDense(ls.structure[n-1], nil)
}

func (ls *layers) last() int {
	return len(ls.structure) - 1
}

// checkTarget rejects labeled samples whose target does not match the
// output layer.
func (ls *layers) checkTarget(s *Sample) error {
	if out := ls.structure[ls.last()]; s.Labeled() && len(s.Target) != out {
		return fmt.Errorf("%w: target has %d classes, output layer has %d",
			ErrDimensionMismatch, len(s.Target), out)
	}
	return nil
}

func (ls *layers) feedForward(input []float64) error {
	if len(input) != ls.structure[0] {
		return fmt.Errorf("%w: input has %d values, input layer has %d",
			ErrDimensionMismatch, len(input), ls.structure[0])
	}
	copy(ls.activations[0].RawVector().Data, input)

	last := ls.last()
	for l := 1; l <= last; l++ {
		net := ls.activations[l]
		net.MulVec(ls.weights[l].T(), ls.activations[l-1])
		net.AddVec(net, ls.biases[l])
		if l == last {
			ls.output.Activate(net)
		} else {
			Sigmoid{}.Activate(net)
		}
	}
	return nil
}

func (ls *layers) result() []float64 {
	return append([]float64(nil), ls.activations[ls.last()].RawVector().Data...)
}

// backpropagate fills deltas for every non-input layer from the activations
// of the preceding feedForward. Unlabeled samples produce zero deltas.
func (ls *layers) backpropagate(s *Sample) {
	last := ls.last()
	if !s.Labeled() {
		for l := 1; l <= last; l++ {
			zeroVec(ls.deltas[l])
		}
		return
	}

	copy(ls.target.RawVector().Data, s.Target)
	ls.output.OutputDelta(ls.deltas[last], ls.activations[last], ls.target)

	for l := last - 1; l >= 1; l-- {
		d := ls.deltas[l]
		d.MulVec(ls.weights[l+1], ls.deltas[l+1])
		a := ls.activations[l]
		for i := 0; i < d.Len(); i++ {
			d.SetVec(i, d.AtVec(i)*sigmoidPrime(a.AtVec(i)))
		}
	}
}

// descend applies one gradient step with the current deltas.
func (ls *layers) descend(rate float64) {
	for l := 1; l <= ls.last(); l++ {
		ls.weights[l].RankOne(ls.weights[l], -rate, ls.activations[l-1], ls.deltas[l])
		ls.biases[l].AddScaledVec(ls.biases[l], -rate, ls.deltas[l])
	}
}

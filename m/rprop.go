package m

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"
)

const (
	rpropIncrease    = 1.2
	rpropDecrease    = 0.5
	rpropInitialStep = 0.0125
	rpropMaxStep     = 50.0
	rpropMinStep     = 1e-6
)

// RProp is the alternative engine: full-batch resilient backpropagation
// (iRprop-). Each epoch accumulates gradients over every sample, then moves
// each parameter by its own adaptive step in the direction of the gradient
// sign. With the parallel hint the gradient pass is split across goroutines.
type RProp struct {
	config   Config
	layers   *layers
	grads    *gradients
	prev     *gradients
	steps    *gradients
	progress ProgressFunc
}

// gradients mirrors the parameter shapes of a layers value.
type gradients struct {
	weights []*mat.Dense
	biases  []*mat.VecDense
}

func newGradients(structure []int, fill float64) *gradients {
	g := &gradients{
		weights: make([]*mat.Dense, len(structure)),
		biases:  make([]*mat.VecDense, len(structure)),
	}
	for l := 1; l < len(structure); l++ {
		g.weights[l] = mat.NewDense(structure[l-1], structure[l], nil)
		g.biases[l] = mat.NewVecDense(structure[l], nil)
	}
	if fill != 0 {
		g.each(func(_ int, v []float64) {
			for i := range v {
				v[i] = fill
			}
		})
	}
	return g
}

// each visits the raw storage of every parameter block, layer by layer.
func (g *gradients) each(fn func(block int, v []float64)) {
	for l := 1; l < len(g.weights); l++ {
		fn(2*l, g.weights[l].RawMatrix().Data)
		fn(2*l+1, g.biases[l].RawVector().Data)
	}
}

func (g *gradients) zero() {
	for l := 1; l < len(g.weights); l++ {
		zeroDense(g.weights[l])
		zeroVec(g.biases[l])
	}
}

func (g *gradients) accumulate(ls *layers) {
	for l := 1; l < len(g.weights); l++ {
		g.weights[l].RankOne(g.weights[l], 1, ls.activations[l-1], ls.deltas[l])
		g.biases[l].AddVec(g.biases[l], ls.deltas[l])
	}
}

func (g *gradients) add(o *gradients) {
	for l := 1; l < len(g.weights); l++ {
		g.weights[l].Add(g.weights[l], o.weights[l])
		g.biases[l].AddVec(g.biases[l], o.biases[l])
	}
}

func NewRProp(c Config) (*RProp, error) {
	if err := ValidateStructure(c.Structure); err != nil {
		return nil, err
	}
	if c.Output == nil {
		c.Output = Sigmoid{}
	}
	c = c.withDefaults()
	c.Structure = append([]int(nil), c.Structure...)

	return &RProp{
		config: c,
		layers: newLayers(c.Structure, c.Output, newSource(c.Seed)),
		grads:  newGradients(c.Structure, 0),
		prev:   newGradients(c.Structure, 0),
		steps:  newGradients(c.Structure, rpropInitialStep),
	}, nil
}

func (r *RProp) String() string {
	return fmt.Sprintf("rprop %v (%s output)", r.config.Structure, r.config.Output)
}

func (r *RProp) OnProgress(fn ProgressFunc) {
	r.progress = fn
}

func (r *RProp) Compute(input []float64) ([]float64, error) {
	if err := r.layers.feedForward(input); err != nil {
		return nil, err
	}
	return r.layers.result(), nil
}

func (r *RProp) Predict(s *Sample) (Class, error) {
	if err := r.layers.checkTarget(s); err != nil {
		return Unlabeled, err
	}
	output, err := r.Compute(s.Input)
	if err != nil {
		return Unlabeled, err
	}
	return s.ProcessPrediction(output), nil
}

// Train repeats single-sample batches until the sample's squared error
// reaches acceptableError or MaxIterations is spent.
func (r *RProp) Train(s *Sample, acceptableError float64, parallel bool) (int, error) {
	batch := []*Sample{s}
	iterations := 0
	sampleError := math.Inf(1)

	for sampleError > acceptableError && iterations < r.config.MaxIterations {
		iterations++
		e, err := r.runBatch(batch, false)
		if err != nil {
			return iterations, err
		}
		sampleError = e
	}
	return iterations, nil
}

func (r *RProp) TrainOnDataSet(ctx context.Context, ds *Dataset, epochs int, acceptableError float64, parallel bool) (float64, error) {
	if ds.Len() == 0 {
		return 0, ErrEmptyDataset
	}
	return epochLoop(ctx, epochs, acceptableError, r.progress, func() (float64, error) {
		return r.runBatch(ds.Samples, parallel)
	})
}

// runBatch accumulates gradients over samples, applies one resilient update
// and returns the mean squared error measured before the update.
func (r *RProp) runBatch(samples []*Sample, parallel bool) (float64, error) {
	r.grads.zero()

	workers := workerCount(len(samples), parallel)

	var sumError float64
	if workers <= 1 {
		e, err := gradientPass(r.layers, r.grads, samples)
		if err != nil {
			return 0, err
		}
		sumError = e
	} else {
		e, err := r.parallelGradientPass(samples, workers)
		if err != nil {
			return 0, err
		}
		sumError = e
	}

	r.update()
	return sumError / float64(len(samples)), nil
}

// workerCount is one per usable CPU (GOMAXPROCS), never more than samples.
func workerCount(samples int, parallel bool) int {
	if !parallel {
		return 1
	}
	return max(1, min(runtime.GOMAXPROCS(0), samples))
}

// parallelGradientPass gives each worker a contiguous chunk, private
// activations and private gradients, then sums the partials in worker order.
func (r *RProp) parallelGradientPass(samples []*Sample, workers int) (float64, error) {
	partial := make([]*gradients, workers)
	errs := make([]float64, workers)
	failures := make([]error, workers)
	chunk := (len(samples) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > len(samples) {
			end = len(samples)
		}
		partial[w] = newGradients(r.config.Structure, 0)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(w int, part []*Sample) {
			defer wg.Done()
			errs[w], failures[w] = gradientPass(r.layers.scratch(), partial[w], part)
		}(w, samples[start:end])
	}
	wg.Wait()

	var sumError float64
	for w := 0; w < workers; w++ {
		if failures[w] != nil {
			return 0, failures[w]
		}
		r.grads.add(partial[w])
		sumError += errs[w]
	}
	return sumError, nil
}

func gradientPass(ls *layers, g *gradients, samples []*Sample) (float64, error) {
	var sumError float64
	for _, s := range samples {
		if err := ls.checkTarget(s); err != nil {
			return 0, err
		}
		if err := ls.feedForward(s.Input); err != nil {
			return 0, err
		}
		s.ProcessPrediction(ls.result())
		sumError += s.EstimatedError()

		ls.backpropagate(s)
		g.accumulate(ls)
	}
	return sumError, nil
}

func (r *RProp) update() {
	params := newParamView(r.layers)
	prev := blocks(r.prev)
	steps := blocks(r.steps)

	r.grads.each(func(block int, grad []float64) {
		p, w, st := prev[block], params[block], steps[block]
		for i, g := range grad {
			switch change := g * p[i]; {
			case change > 0:
				st[i] = math.Min(st[i]*rpropIncrease, rpropMaxStep)
				w[i] -= sign(g) * st[i]
				p[i] = g
			case change < 0:
				st[i] = math.Max(st[i]*rpropDecrease, rpropMinStep)
				p[i] = 0
			default:
				w[i] -= sign(g) * st[i]
				p[i] = g
			}
		}
	})
}

func newParamView(ls *layers) map[int][]float64 {
	view := make(map[int][]float64, 2*len(ls.weights))
	for l := 1; l < len(ls.weights); l++ {
		view[2*l] = ls.weights[l].RawMatrix().Data
		view[2*l+1] = ls.biases[l].RawVector().Data
	}
	return view
}

func blocks(g *gradients) map[int][]float64 {
	view := make(map[int][]float64, 2*len(g.weights))
	g.each(func(block int, v []float64) {
		view[block] = v
	})
	return view
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

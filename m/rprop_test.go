package m

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPropLearnsSeparableSet(t *testing.T) {
	e, err := NewEngine("rprop", Config{Structure: []int{4, 4, 2}, Seed: 31})
	require.NoError(t, err)

	var records []Progress
	e.OnProgress(func(p Progress) { records = append(records, p) })

	ds := toyDataset(10)
	final, err := e.TrainOnDataSet(context.Background(), ds, 300, 0.001, false)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(records), 2)
	assert.Less(t, final, records[0].Error)
	assert.Equal(t, 1.0, records[len(records)-1].Progress)

	accuracy, err := ds.TestNetwork(e)
	require.NoError(t, err)
	assert.Equal(t, 1.0, accuracy)
}

func TestRPropParallelMatchesSequential(t *testing.T) {
	train := func(parallel bool) (float64, []float64) {
		r, err := NewRProp(Config{Structure: []int{4, 6, 2}, Seed: 5})
		require.NoError(t, err)
		final, err := r.TrainOnDataSet(context.Background(), toyDataset(40), 50, 0, parallel)
		require.NoError(t, err)
		out, err := r.Compute([]float64{1, 0.9, 0.1, 0})
		require.NoError(t, err)
		return final, out
	}

	seqErr, seqOut := train(false)
	parErr, parOut := train(true)
	assert.InDelta(t, seqErr, parErr, 1e-3)
	assert.InDeltaSlice(t, seqOut, parOut, 1e-3)
}

func TestRPropTrainSingleSample(t *testing.T) {
	r, err := NewRProp(Config{Structure: []int{4, 3, 2}, Seed: 9})
	require.NoError(t, err)
	s := NewSample([]float64{0, 0, 1, 1}, 2, 1)

	iterations, err := r.Train(s, 0.01, false)
	require.NoError(t, err)
	assert.Less(t, iterations, DefaultMaxIterations)

	class, err := r.Predict(s)
	require.NoError(t, err)
	assert.Equal(t, Class(1), class)
}

func TestRPropRejectsBadInput(t *testing.T) {
	_, err := NewRProp(Config{Structure: []int{3}})
	assert.True(t, errors.Is(err, ErrConfiguration))

	r, err := NewRProp(Config{Structure: []int{3, 2}, Seed: 1})
	require.NoError(t, err)
	_, err = r.TrainOnDataSet(context.Background(), NewDataset(NewSample([]float64{1}, 2, 0)), 5, 0, true)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
	_, err = r.TrainOnDataSet(context.Background(), &Dataset{}, 5, 0, true)
	assert.True(t, errors.Is(err, ErrEmptyDataset))
}

func TestEngineRegistry(t *testing.T) {
	assert.Equal(t, []string{"rprop", "student", "student-quadratic"}, EngineNames())

	_, err := NewEngine("perceptron", Config{Structure: []int{2, 2}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))

	for _, name := range EngineNames() {
		e, err := NewEngine(name, Config{Structure: []int{2, 2}, Seed: 1})
		require.NoError(t, err, name)
		assert.NotEmpty(t, e.String())
	}
}

func TestRPropRejectsTargetWidthMismatch(t *testing.T) {
	r, err := NewRProp(Config{Structure: []int{2, 3, 2}, Seed: 1})
	require.NoError(t, err)

	ds := NewDataset(NewSample([]float64{1, 0}, 3, 2), NewSample([]float64{0, 1}, 3, 0))
	for _, parallel := range []bool{false, true} {
		_, err = r.TrainOnDataSet(context.Background(), ds, 10, 0.01, parallel)
		assert.True(t, errors.Is(err, ErrDimensionMismatch), "parallel=%v: %v", parallel, err)
	}

	_, err = r.Train(NewSample([]float64{1, 0}, 3, 2), 0, false)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
	_, err = r.Predict(NewSample([]float64{1, 0}, 3, 1))
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

func TestEngineOutputOverride(t *testing.T) {
	defaults := map[string]string{"student": "softmax", "student-quadratic": "sigmoid", "rprop": "softmax"}
	for name, output := range defaults {
		e, err := NewEngine(name, Config{Structure: []int{2, 2}, Seed: 1})
		require.NoError(t, err, name)
		assert.Contains(t, e.String(), output+" output", name)

		e, err = NewEngine(name, Config{Structure: []int{2, 2}, Output: ActivatorLookup["sigmoid"], Seed: 1})
		require.NoError(t, err, name)
		assert.Contains(t, e.String(), "sigmoid output", name)
	}
}

func TestWorkerCountFollowsGOMAXPROCS(t *testing.T) {
	prev := runtime.GOMAXPROCS(3)
	defer runtime.GOMAXPROCS(prev)

	assert.Equal(t, 1, workerCount(100, false))
	assert.Equal(t, 3, workerCount(100, true))
	assert.Equal(t, 2, workerCount(2, true))
	assert.Equal(t, 1, workerCount(0, true))
}

package m

import (
	"golang.org/x/exp/rand"
)

// Dataset is an ordered collection of samples. Training may reorder it.
type Dataset struct {
	Samples []*Sample
}

func NewDataset(samples ...*Sample) *Dataset {
	return &Dataset{Samples: samples}
}

// Clone copies the sample order; the samples themselves are shared.
func (ds *Dataset) Clone() *Dataset {
	return &Dataset{Samples: append([]*Sample(nil), ds.Samples...)}
}

func (ds *Dataset) Add(s *Sample) {
	ds.Samples = append(ds.Samples, s)
}

func (ds *Dataset) Len() int {
	return len(ds.Samples)
}

// Shuffle reorders the samples uniformly at random.
func (ds *Dataset) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(ds.Samples), func(i, j int) {
		ds.Samples[i], ds.Samples[j] = ds.Samples[j], ds.Samples[i]
	})
}

// Counts returns how many samples carry each class, unlabeled included.
func (ds *Dataset) Counts() map[Class]int {
	counts := make(map[Class]int)
	for _, s := range ds.Samples {
		counts[s.Actual]++
	}
	return counts
}

// TestNetwork predicts every sample and returns the fraction whose
// recognized class equals the actual one.
func (ds *Dataset) TestNetwork(e Engine) (float64, error) {
	if ds.Len() == 0 {
		return 0, ErrEmptyDataset
	}
	var correct float64
	for _, s := range ds.Samples {
		predicted, err := e.Predict(s)
		if err != nil {
			return 0, err
		}
		if predicted == s.Actual {
			correct++
		}
	}
	return correct / float64(ds.Len()), nil
}

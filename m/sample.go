package m

import (
	"strconv"

	"gonum.org/v1/gonum/floats"
)

// Class is a discrete label. Unlabeled marks a sample without a known class.
type Class int

const Unlabeled Class = -1

func (c Class) String() string {
	if c == Unlabeled {
		return "unlabeled"
	}
	return strconv.Itoa(int(c))
}

// Sample is one observation: the input vector, its one-hot target and the
// last prediction written back by an engine.
type Sample struct {
	Input      []float64
	Target     []float64
	Output     []float64
	Error      []float64
	Actual     Class
	Recognized Class
}

// NewSample copies input. A class outside [0, classCount) leaves the target
// all-zero and the sample unlabeled.
func NewSample(input []float64, classCount int, class Class) *Sample {
	s := &Sample{
		Input:  append([]float64(nil), input...),
		Target: make([]float64, classCount),
		Output: make([]float64, classCount),
		Error:  make([]float64, classCount),
		Actual: Unlabeled,
	}
	if class >= 0 && int(class) < classCount {
		s.Actual = class
		s.Target[class] = 1.0
	}
	return s
}

func (s *Sample) Labeled() bool {
	return s.Actual != Unlabeled
}

// ProcessPrediction stores output, recomputes the error vector and returns
// the recognized class (argmax, first index wins ties).
func (s *Sample) ProcessPrediction(output []float64) Class {
	s.Output = output
	s.Recognized = Class(floats.MaxIdx(output))

	if len(s.Error) != len(output) {
		s.Error = make([]float64, len(output))
	}
	if s.Labeled() && len(s.Target) == len(output) {
		floats.SubTo(s.Error, output, s.Target)
	} else {
		for i := range s.Error {
			s.Error[i] = 0
		}
	}
	return s.Recognized
}

// EstimatedError is the squared error of the last prediction.
func (s *Sample) EstimatedError() float64 {
	return floats.Dot(s.Error, s.Error)
}

func (s *Sample) Correct() bool {
	return s.Labeled() && s.Actual == s.Recognized
}

// Package recognize connects frames to engines: it preprocesses images into
// samples, flags frames without a symbol and builds datasets from folders of
// labeled drawings.
package recognize

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"symrec/m"
	"symrec/preprocess"
)

// ErrNoSymbol is returned with the sample when a frame holds too little ink
// to be trusted. It is not a failure of the engine.
var ErrNoSymbol = errors.New("no symbol detected")

const DefaultMinInk = 10.0

// Recognizer serializes access to one engine.
type Recognizer struct {
	mu         sync.Mutex
	engine     m.Engine
	cfg        preprocess.Config
	classCount int
	MinInk     float64
}

func New(e m.Engine, cfg preprocess.Config, classCount int) (*Recognizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", m.ErrConfiguration, err)
	}
	if classCount < 1 {
		return nil, fmt.Errorf("%w: class count %d", m.ErrConfiguration, classCount)
	}
	return &Recognizer{
		engine:     e,
		cfg:        cfg,
		classCount: classCount,
		MinInk:     DefaultMinInk,
	}, nil
}

// Sample preprocesses img into a sample labeled class (m.Unlabeled for none).
func (r *Recognizer) Sample(img image.Image, class m.Class) *m.Sample {
	return m.NewSample(r.cfg.Vector(img), r.classCount, class)
}

// Recognize preprocesses img and runs the engine on it. When the frame has
// less than MinInk foreground the sample is returned unpredicted together
// with ErrNoSymbol.
func (r *Recognizer) Recognize(img image.Image) (*m.Sample, error) {
	s := r.Sample(img, m.Unlabeled)
	if ink := preprocess.Ink(s.Input); ink < r.MinInk {
		return s, fmt.Errorf("%w: ink %.0f below %.0f", ErrNoSymbol, ink, r.MinInk)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.engine.Predict(s); err != nil {
		return s, err
	}
	return s, nil
}

// RecognizeFrom takes one frame from src and recognizes it.
func (r *Recognizer) RecognizeFrom(src FrameSource) (*m.Sample, error) {
	img, err := src.Snapshot()
	if err != nil {
		return nil, err
	}
	return r.Recognize(img)
}

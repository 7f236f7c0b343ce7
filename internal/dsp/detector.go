// internal/dsp/detector.go
package dsp

import (
	"errors"
	"time"
)

var (
	// ErrInvalidThreshold indicates threshold must be between 0 and 1
	ErrInvalidThreshold = errors.New("threshold must be between 0.0 and 1.0")
	// ErrInvalidHysteresis indicates hysteresis must be at least one block
	ErrInvalidHysteresis = errors.New("hysteresis must be at least 1")
	// ErrGoertzelRequired indicates Goertzel instance is required
	ErrGoertzelRequired = errors.New("goertzel instance is required")
)

// ToneEvent is a confirmed key-down or key-up transition.
type ToneEvent struct {
	// ToneOn is true when the tone starts, false when it ends
	ToneOn bool
	// Offset is the stream position of the transition
	Offset time.Duration
	// Duration is the length of the preceding state (zero for the first event)
	Duration time.Duration
	// Magnitude is the block magnitude that confirmed the transition
	Magnitude float64
}

// ToneCallback receives transitions in stream order.
type ToneCallback func(event ToneEvent)

// DetectorConfig holds the keying thresholds.
type DetectorConfig struct {
	// Threshold is the magnitude (0.0-1.0) above which a block counts as keyed
	Threshold float64
	// Hysteresis is the number of consecutive blocks needed to change state
	Hysteresis int
}

// Detector turns blocks of samples into tone on/off events. Time is measured
// in samples consumed, not wall clock, so offline audio decodes the same as
// live audio.
type Detector struct {
	config   DetectorConfig
	goertzel *Goertzel

	pending []float32
	samples int64 // samples consumed so far

	toneState       bool
	pendingState    bool
	hysteresisCount int
	lastTransition  time.Duration
	seenTransition  bool

	callback ToneCallback
}

// NewDetector creates a detector reading magnitudes from goertzel.
func NewDetector(cfg DetectorConfig, goertzel *Goertzel) (*Detector, error) {
	if goertzel == nil {
		return nil, ErrGoertzelRequired
	}
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, ErrInvalidThreshold
	}
	if cfg.Hysteresis < 1 {
		return nil, ErrInvalidHysteresis
	}
	return &Detector{
		config:   cfg,
		goertzel: goertzel,
		pending:  make([]float32, 0, goertzel.BlockSize()),
	}, nil
}

// SetCallback sets the transition callback. Not safe to call concurrently
// with Process.
func (d *Detector) SetCallback(cb ToneCallback) {
	d.callback = cb
}

// Process consumes samples; partial blocks are carried to the next call.
func (d *Detector) Process(samples []float32) {
	blockSize := d.goertzel.BlockSize()
	d.pending = append(d.pending, samples...)

	for len(d.pending) >= blockSize {
		d.processBlock(d.pending[:blockSize])
		d.pending = d.pending[blockSize:]
	}
	// Compact so the backing array does not grow without bound.
	d.pending = append(make([]float32, 0, blockSize), d.pending...)
}

func (d *Detector) processBlock(block []float32) {
	magnitude := d.goertzel.magnitude(block)
	d.samples += int64(len(block))
	d.updateHysteresis(magnitude > d.config.Threshold, magnitude)
}

func (d *Detector) updateHysteresis(tonePresent bool, magnitude float64) {
	if tonePresent == d.toneState {
		d.pendingState = d.toneState
		d.hysteresisCount = 0
		return
	}

	if tonePresent == d.pendingState {
		d.hysteresisCount++
	} else {
		d.pendingState = tonePresent
		d.hysteresisCount = 1
	}

	if d.hysteresisCount >= d.config.Hysteresis {
		d.transition(d.pendingState, magnitude)
	}
}

func (d *Detector) transition(on bool, magnitude float64) {
	now := d.position()
	var duration time.Duration
	if d.seenTransition {
		duration = now - d.lastTransition
	}

	d.toneState = on
	d.lastTransition = now
	d.seenTransition = true
	d.hysteresisCount = 0

	if d.callback != nil {
		d.callback(ToneEvent{
			ToneOn:    on,
			Offset:    now,
			Duration:  duration,
			Magnitude: magnitude,
		})
	}
}

// Flush closes a tone still keyed at the end of the stream.
func (d *Detector) Flush() {
	if d.toneState {
		d.transition(false, 0)
	}
}

func (d *Detector) position() time.Duration {
	return d.goertzel.offset(d.samples)
}

// ToneState returns the current confirmed tone state
func (d *Detector) ToneState() bool {
	return d.toneState
}

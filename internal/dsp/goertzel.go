// internal/dsp/goertzel.go

// Package dsp detects the keyed tone in rendered audio so the timing of a
// transmission can be checked without a listener.
package dsp

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidBlockSize    = errors.New("block size must be positive")
	ErrInvalidSampleRate   = errors.New("sample rate must be positive")
	ErrInvalidFrequency    = errors.New("target frequency must be positive and below Nyquist")
	ErrInsufficientSamples = errors.New("insufficient samples for block size")
)

// GoertzelConfig holds configuration for the Goertzel filter.
type GoertzelConfig struct {
	// TargetFrequency is the sidetone frequency in Hz
	TargetFrequency float64
	// SampleRate is the audio sample rate in Hz
	SampleRate float64
	// BlockSize is the number of samples per detection window
	BlockSize int
}

func (c GoertzelConfig) validate() error {
	switch {
	case c.BlockSize <= 0:
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, c.BlockSize)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, c.SampleRate)
	case c.TargetFrequency <= 0 || c.TargetFrequency >= c.SampleRate/2:
		return fmt.Errorf("%w: %v Hz at %v Hz", ErrInvalidFrequency, c.TargetFrequency, c.SampleRate)
	}
	return nil
}

// Goertzel measures the sidetone level in fixed-size blocks of samples. It
// evaluates one DFT bin at the exact sidetone frequency rather than the
// nearest integer bin.
type Goertzel struct {
	blockSize  int
	sampleRate float64
	coeff      float64 // 2cos(ω)
	scale      float64 // 2/N, so a full-scale sine reads 1.0
}

// NewGoertzel validates cfg and precomputes the filter coefficient.
func NewGoertzel(cfg GoertzelConfig) (*Goertzel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	omega := 2 * math.Pi * cfg.TargetFrequency / cfg.SampleRate
	return &Goertzel{
		blockSize:  cfg.BlockSize,
		sampleRate: cfg.SampleRate,
		coeff:      2 * math.Cos(omega),
		scale:      2 / float64(cfg.BlockSize),
	}, nil
}

// Magnitude returns the normalized magnitude of the target frequency in the
// first BlockSize samples. A full-scale sine at the target reads about 1.0.
func (g *Goertzel) Magnitude(samples []float32) (float64, error) {
	if len(samples) < g.blockSize {
		return 0, fmt.Errorf("%w: have %d, need %d", ErrInsufficientSamples, len(samples), g.blockSize)
	}
	return g.magnitude(samples[:g.blockSize]), nil
}

// magnitude runs the recurrence over exactly one block.
func (g *Goertzel) magnitude(block []float32) float64 {
	var prev, prev2 float64
	for _, x := range block {
		prev, prev2 = float64(x)+g.coeff*prev-prev2, prev
	}
	power := prev*prev + prev2*prev2 - g.coeff*prev*prev2
	return math.Sqrt(max(power, 0)) * g.scale
}

func (g *Goertzel) BlockSize() int {
	return g.blockSize
}

func (g *Goertzel) SampleRate() float64 {
	return g.sampleRate
}

// BlockDuration is the stream time covered by one block.
func (g *Goertzel) BlockDuration() time.Duration {
	return g.offset(int64(g.blockSize))
}

// offset converts a sample count into stream time.
func (g *Goertzel) offset(samples int64) time.Duration {
	return time.Duration(float64(samples) / g.sampleRate * float64(time.Second))
}

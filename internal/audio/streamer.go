// internal/audio/streamer.go
package audio

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

// ToneStreamer renders sine * automation as a finite beep.Streamer. Sample
// n sits at time n/rate on the automation's clock.
type ToneStreamer struct {
	gain       *Automation
	sampleRate beep.SampleRate
	frequency  float64
	volume     float64

	position int
	total    int
	buf      []float64
}

// NewToneStreamer renders duration seconds of gain at the given rate.
func NewToneStreamer(gain *Automation, sampleRate beep.SampleRate, frequency, volume, duration float64) *ToneStreamer {
	return &ToneStreamer{
		gain:       gain,
		sampleRate: sampleRate,
		frequency:  frequency,
		volume:     volume,
		total:      sampleRate.N(secondsToDuration(duration)),
	}
}

// Stream implements beep.Streamer.
func (s *ToneStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	remaining := s.total - s.position
	if remaining <= 0 {
		return 0, false
	}
	n = min(len(samples), remaining)

	if cap(s.buf) < n {
		s.buf = make([]float64, n)
	}
	gains := s.buf[:n]
	rate := float64(s.sampleRate)
	s.gain.Fill(gains, float64(s.position)/rate, 1/rate)

	for i, g := range gains {
		phase := 2 * math.Pi * s.frequency * float64(s.position+i) / rate
		v := math.Sin(phase) * g * s.volume
		samples[i][0] = v
		samples[i][1] = v
	}
	s.position += n
	return n, true
}

// Err implements beep.Streamer.
func (s *ToneStreamer) Err() error {
	return nil
}

// Len implements beep.StreamSeeker.
func (s *ToneStreamer) Len() int {
	return s.total
}

// Position implements beep.StreamSeeker.
func (s *ToneStreamer) Position() int {
	return s.position
}

// Seek implements beep.StreamSeeker.
func (s *ToneStreamer) Seek(p int) error {
	if p < 0 || p > s.total {
		return fmt.Errorf("seek position %d out of range [0, %d]", p, s.total)
	}
	s.position = p
	return nil
}

// RenderWAV encodes a mono 16-bit WAV of s to w.
func RenderWAV(w io.WriteSeeker, s beep.Streamer, sampleRate beep.SampleRate) error {
	format := beep.Format{
		SampleRate:  sampleRate,
		NumChannels: 1,
		Precision:   2,
	}
	if err := wav.Encode(w, s, format); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return nil
}

// ReadMono drains s and returns its left channel as float32 samples.
func ReadMono(s beep.Streamer) []float32 {
	var out []float32
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, frame := range buf[:n] {
			out = append(out, float32(frame[0]))
		}
		if !ok {
			return out
		}
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

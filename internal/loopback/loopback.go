// internal/loopback/loopback.go

// Package loopback renders a transmission offline and decodes it again,
// checking the whole keying path without a sound card.
package loopback

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/gopxl/beep/v2"

	"github.com/ColonelBlimp/cwtrainer/internal/audio"
	"github.com/ColonelBlimp/cwtrainer/internal/cw"
	"github.com/ColonelBlimp/cwtrainer/internal/dsp"
	"github.com/ColonelBlimp/cwtrainer/internal/scheduler"
)

// tail is the silence rendered after the last element.
const tail = 0.25

// Options controls rendering and detection.
type Options struct {
	WPM           float64
	FarnsworthWPM float64 // 0 = same as WPM
	Frequency     float64
	SampleRate    int
	Ramp          float64
	Volume        float64
	Threshold     float64
}

// DefaultOptions returns options that decode cleanly at the given speeds.
func DefaultOptions(wpm, farnsworthWPM float64) Options {
	return Options{
		WPM:           wpm,
		FarnsworthWPM: farnsworthWPM,
		Frequency:     700,
		SampleRate:    8000,
		Ramp:          scheduler.DefaultRamp,
		Volume:        0.8,
		Threshold:     0.4,
	}
}

// Result is the outcome of one loopback run.
type Result struct {
	// Expected is the text as the alphabet can represent it.
	Expected string
	// Decoded is what came back out of the audio.
	Decoded string
	// Seconds is the rendered length.
	Seconds float64
}

// Match reports whether the decoded text equals the expected text.
func (r Result) Match() bool {
	return r.Expected == r.Decoded
}

// Stream lays text out on an offline clock and returns it as a finite
// streamer, along with its length in seconds.
func Stream(text string, opts Options) (*audio.ToneStreamer, float64) {
	fw := opts.FarnsworthWPM
	if fw <= 0 {
		fw = opts.WPM
	}
	env := audio.NewOffline(scheduler.Off)
	s := scheduler.New(env, cw.NewTiming(opts.WPM, fw), scheduler.WithRamp(opts.Ramp))
	tl := s.Schedule(text)

	seconds := tl.End + tail
	return audio.NewToneStreamer(env.Automation, beep.SampleRate(opts.SampleRate), opts.Frequency, opts.Volume, seconds), seconds
}

// Render returns the mono samples of text and their length in seconds.
func Render(text string, opts Options) ([]float32, float64) {
	streamer, seconds := Stream(text, opts)
	return audio.ReadMono(streamer), seconds
}

// Run renders text, decodes it and returns both sides.
func Run(text string, opts Options) (Result, error) {
	samples, seconds := Render(text, opts)

	// About eight blocks per dit keeps quantization well inside the boundaries.
	dit := cw.NewTiming(opts.WPM, opts.WPM).Dot
	blockSize := max(16, int(float64(opts.SampleRate)*dit/8))

	g, err := dsp.NewGoertzel(dsp.GoertzelConfig{
		TargetFrequency: opts.Frequency,
		SampleRate:      float64(opts.SampleRate),
		BlockSize:       blockSize,
	})
	if err != nil {
		return Result{}, fmt.Errorf("goertzel: %w", err)
	}
	det, err := dsp.NewDetector(dsp.DetectorConfig{Threshold: opts.Threshold, Hysteresis: 1}, g)
	if err != nil {
		return Result{}, fmt.Errorf("detector: %w", err)
	}
	dec, err := cw.NewDecoder(cw.DefaultDecoderConfig(opts.WPM, opts.FarnsworthWPM))
	if err != nil {
		return Result{}, fmt.Errorf("decoder: %w", err)
	}

	var out strings.Builder
	dec.SetCallback(func(o cw.DecodedOutput) {
		out.WriteRune(o.Character)
	})
	det.SetCallback(dec.HandleToneEvent)

	det.Process(samples)
	det.Flush()
	dec.Flush(time.Duration(seconds * float64(time.Second)))

	return Result{
		Expected: Expected(text),
		Decoded:  strings.Join(strings.Fields(out.String()), " "),
		Seconds:  seconds,
	}, nil
}

// Expected returns text as it should decode: upper case, unmapped characters
// dropped, prosigns replaced by the character sharing their pattern (if any).
func Expected(text string) string {
	var words []string
	for _, word := range strings.Fields(text) {
		var b strings.Builder
		if strings.HasPrefix(word, string(cw.ProsignMarker)) {
			if r, ok := cw.Decode(cw.ProsignFor(word)); ok {
				b.WriteRune(r)
			}
		} else {
			for _, r := range word {
				if _, ok := cw.Decode(cw.PatternFor(r)); ok {
					b.WriteRune(unicode.ToUpper(r))
				}
			}
		}
		if b.Len() > 0 {
			words = append(words, b.String())
		}
	}
	return strings.Join(words, " ")
}

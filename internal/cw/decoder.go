// internal/cw/decoder.go
package cw

import (
	"errors"
	"time"

	"github.com/ColonelBlimp/cwtrainer/internal/dsp"
)

var (
	// ErrInvalidWPM indicates WPM must be positive
	ErrInvalidWPM = errors.New("WPM must be positive")
	// ErrInvalidFarnsworthWPM indicates Farnsworth WPM must not exceed character WPM
	ErrInvalidFarnsworthWPM = errors.New("farnsworth WPM must not exceed character WPM")
	// ErrInvalidDitDahBoundary indicates boundary ratio must be positive
	ErrInvalidDitDahBoundary = errors.New("dit/dah boundary ratio must be positive")
	// ErrInvalidInterCharBoundary indicates boundary ratio must be positive
	ErrInvalidInterCharBoundary = errors.New("element/char boundary ratio must be positive")
	// ErrInvalidCharWordBoundary indicates boundary ratio must exceed the char boundary
	ErrInvalidCharWordBoundary = errors.New("char/word boundary ratio must exceed element/char boundary")
)

// DecoderConfig holds the classification thresholds of the decoder.
// Boundaries are expressed in dit units.
type DecoderConfig struct {
	// WPM is the character speed of the incoming code
	WPM float64
	// FarnsworthWPM is the spacing speed (0 = same as WPM)
	FarnsworthWPM float64
	// DitDahBoundary: a tone longer than dit*DitDahBoundary is a dah
	DitDahBoundary float64
	// InterCharBoundary: a silence longer than spacingDit*InterCharBoundary ends a character
	InterCharBoundary float64
	// CharWordBoundary: a silence longer than spacingDit*CharWordBoundary ends a word
	CharWordBoundary float64
}

// DefaultDecoderConfig returns midpoint thresholds for the given speeds.
func DefaultDecoderConfig(wpm, farnsworthWPM float64) DecoderConfig {
	return DecoderConfig{
		WPM:               wpm,
		FarnsworthWPM:     farnsworthWPM,
		DitDahBoundary:    2.0, // midpoint of dit(1) and dah(3)
		InterCharBoundary: 2.0, // midpoint of element(1) and char(3) space
		CharWordBoundary:  5.0, // midpoint of char(3) and word(7) space
	}
}

// DecodedOutput represents one decoded character or word break.
type DecodedOutput struct {
	// Character is the decoded character (' ' for a word space)
	Character rune
	// IsWordSpace is true if this represents a word boundary
	IsWordSpace bool
	// Offset is the stream position where the boundary was seen
	Offset time.Duration
}

// DecodedCallback is called for every decoded character or word space.
type DecodedCallback func(output DecodedOutput)

// Decoder turns tone events into characters at a known, fixed speed.
type Decoder struct {
	config DecoderConfig

	dit        float64 // seconds
	spacingDit float64 // seconds

	current Pattern
	inChar  bool

	callback DecodedCallback
}

// NewDecoder validates cfg and creates a decoder.
func NewDecoder(cfg DecoderConfig) (*Decoder, error) {
	if cfg.WPM <= 0 {
		return nil, ErrInvalidWPM
	}
	if cfg.FarnsworthWPM < 0 || cfg.FarnsworthWPM > cfg.WPM {
		return nil, ErrInvalidFarnsworthWPM
	}
	if cfg.DitDahBoundary <= 0 {
		return nil, ErrInvalidDitDahBoundary
	}
	if cfg.InterCharBoundary <= 0 {
		return nil, ErrInvalidInterCharBoundary
	}
	if cfg.CharWordBoundary <= cfg.InterCharBoundary {
		return nil, ErrInvalidCharWordBoundary
	}

	spacingWPM := cfg.WPM
	if cfg.FarnsworthWPM > 0 {
		spacingWPM = cfg.FarnsworthWPM
	}

	return &Decoder{
		config:     cfg,
		dit:        unitSeconds(cfg.WPM),
		spacingDit: unitSeconds(spacingWPM),
	}, nil
}

// SetCallback sets the callback for decoded output.
func (d *Decoder) SetCallback(cb DecodedCallback) {
	d.callback = cb
}

// HandleToneEvent processes a tone event from the detector.
func (d *Decoder) HandleToneEvent(event dsp.ToneEvent) {
	if event.ToneOn {
		d.handleSilenceEnd(event)
	} else {
		d.handleToneEnd(event)
	}
}

func (d *Decoder) handleToneEnd(event dsp.ToneEvent) {
	if !d.inChar {
		d.current = d.current[:0]
		d.inChar = true
	}
	if event.Duration.Seconds() > d.dit*d.config.DitDahBoundary {
		d.current = append(d.current, Dah)
	} else {
		d.current = append(d.current, Dit)
	}
}

func (d *Decoder) handleSilenceEnd(event dsp.ToneEvent) {
	if !d.inChar {
		return
	}

	gap := event.Duration.Seconds()
	if gap > d.spacingDit*d.config.InterCharBoundary {
		d.emitCharacter(event.Offset)
		if gap > d.spacingDit*d.config.CharWordBoundary {
			d.emit(DecodedOutput{Character: ' ', IsWordSpace: true, Offset: event.Offset})
		}
	}
}

// Flush emits the character in progress at the end of a stream.
func (d *Decoder) Flush(offset time.Duration) {
	if d.inChar {
		d.emitCharacter(offset)
	}
}

func (d *Decoder) emitCharacter(offset time.Duration) {
	if r, ok := Decode(d.current); ok {
		d.emit(DecodedOutput{Character: r, Offset: offset})
	}
	d.current = d.current[:0]
	d.inChar = false
}

func (d *Decoder) emit(out DecodedOutput) {
	if d.callback != nil {
		d.callback(out)
	}
}

// Reset clears any partially decoded character.
func (d *Decoder) Reset() {
	d.current = d.current[:0]
	d.inChar = false
}

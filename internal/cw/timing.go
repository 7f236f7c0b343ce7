// internal/cw/timing.go
package cw

// Timing holds the four keying constants, in seconds.
type Timing struct {
	Dot     float64
	Dash    float64
	CharGap float64
	WordGap float64
}

// NewTiming derives keying constants from the character speed and the
// Farnsworth spacing speed. Elements follow wpm; both gaps follow
// farnsworthWPM. Both speeds must be positive.
func NewTiming(wpm, farnsworthWPM float64) Timing {
	dot := unitSeconds(wpm)
	spacing := unitSeconds(farnsworthWPM)
	return Timing{
		Dot:     dot,
		Dash:    dot * DahDitRatio,
		CharGap: spacing * InterCharSpaceRatio,
		WordGap: spacing * WordSpaceRatio,
	}
}

// Width returns the keyed length of e.
func (t Timing) Width(e Element) float64 {
	if e == Dah {
		return t.Dash
	}
	return t.Dot
}

// unitSeconds is the dit length at wpm: 60 / (50 * wpm), i.e. 1.2 / wpm.
func unitSeconds(wpm float64) float64 {
	return SecondsPerMinute / (wpm * DitsPerWord)
}

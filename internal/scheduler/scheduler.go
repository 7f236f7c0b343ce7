// internal/scheduler/scheduler.go

// Package scheduler lays a transmission out on the audio clock. It turns text
// into gain envelope commands at absolute times and records, against the
// same virtual cursor, when each character starts and ends.
package scheduler

import (
	"strings"
	"time"
	"unicode"

	"github.com/ColonelBlimp/cwtrainer/internal/cw"
)

// Envelope levels. Exponential ramps cannot reach zero, so "off" is a small
// inaudible positive gain.
const (
	On  = 1.0
	Off = 0.0001
)

const (
	// DefaultRamp is the declick ramp on each side of an element, in seconds.
	DefaultRamp = 0.005
	// DefaultStartupDelay is the lead-in before the first element, in seconds.
	DefaultStartupDelay = 0.5
)

// Envelope is the gain parameter of a continuously running tone source.
// Times are seconds on the source's own clock.
type Envelope interface {
	// CurrentTime returns the clock's current position.
	CurrentTime() float64
	// SetValueAtTime holds value from t onwards.
	SetValueAtTime(value, t float64)
	// ExponentialRampToValueAtTime ramps from the previous event to value, arriving at t.
	ExponentialRampToValueAtTime(value, t float64)
	// CancelScheduledValues drops every command at or after t.
	CancelScheduledValues(t float64)
}

// Kind identifies a notification.
type Kind int

const (
	BeforeChar Kind = iota
	AfterChar
	AfterSend
)

func (k Kind) String() string {
	switch k {
	case BeforeChar:
		return "before-char"
	case AfterChar:
		return "after-char"
	case AfterSend:
		return "after-send"
	default:
		return "unknown"
	}
}

// Notification is an observer event bound to a cursor time.
type Notification struct {
	Kind  Kind
	Token string // character or prosign name; empty for AfterSend
	At    float64
}

// Timeline is the result of scheduling one text.
type Timeline struct {
	// Origin is the envelope clock reading when scheduling started.
	Origin float64
	// Start is the cursor time of the first element.
	Start float64
	// End is the cursor time after the last element.
	End float64
	// Notifications are in chronological order and end with AfterSend.
	Notifications []Notification
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRamp sets the declick ramp length in seconds.
func WithRamp(ramp float64) Option {
	return func(s *Scheduler) { s.ramp = ramp }
}

// WithStartupDelay sets the lead-in before the first element in seconds.
func WithStartupDelay(delay float64) Option {
	return func(s *Scheduler) { s.startupDelay = delay }
}

// Scheduler owns the virtual cursor of the transmission being laid out.
// It is not safe for concurrent use.
type Scheduler struct {
	env          Envelope
	timing       cw.Timing
	ramp         float64
	startupDelay float64

	cursor float64
	notes  []Notification
}

// New creates a scheduler driving env.
func New(env Envelope, timing cw.Timing, opts ...Option) *Scheduler {
	s := &Scheduler{
		env:          env,
		timing:       timing,
		ramp:         DefaultRamp,
		startupDelay: DefaultStartupDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTiming replaces the timing used by subsequent calls to Schedule.
func (s *Scheduler) SetTiming(t cw.Timing) {
	s.timing = t
}

// Timing returns the current timing.
func (s *Scheduler) Timing() cw.Timing {
	return s.timing
}

// Ramp returns the declick ramp length.
func (s *Scheduler) Ramp() float64 {
	return s.ramp
}

// Cursor returns the virtual cursor position.
func (s *Scheduler) Cursor() float64 {
	return s.cursor
}

// Schedule commits the whole envelope for text and returns its timeline.
// Words are separated by single spaces; a word starting with '@' is keyed
// as one prosign.
func (s *Scheduler) Schedule(text string) Timeline {
	now := s.env.CurrentTime()
	s.env.SetValueAtTime(Off, now)
	s.cursor = now + s.startupDelay
	s.notes = nil

	start := s.cursor
	words := strings.Split(text, " ")
	for i, word := range words {
		s.sendWord(word)
		if i < len(words)-1 {
			s.cursor += s.timing.WordGap
		}
	}
	s.notify(AfterSend, "")

	return Timeline{
		Origin:        now,
		Start:         start,
		End:           s.cursor,
		Notifications: s.notes,
	}
}

// Silence revokes every pending envelope command, mutes the output now and
// resets the cursor.
func (s *Scheduler) Silence() {
	now := s.env.CurrentTime()
	s.env.CancelScheduledValues(now)
	s.env.SetValueAtTime(Off, now)
	s.cursor = 0
	s.notes = nil
}

func (s *Scheduler) sendWord(word string) {
	if strings.HasPrefix(word, string(cw.ProsignMarker)) {
		name := strings.TrimPrefix(word, string(cw.ProsignMarker))
		s.sendSymbol(name, cw.ProsignFor(name))
		return
	}

	runes := []rune(word)
	for i, r := range runes {
		r = unicode.ToUpper(r)
		s.sendSymbol(string(r), cw.PatternFor(r))
		if i < len(runes)-1 {
			s.cursor += s.timing.CharGap
		}
	}
}

// sendSymbol keys one character or prosign. An empty pattern keys nothing
// but still reports the symbol.
func (s *Scheduler) sendSymbol(token string, p cw.Pattern) {
	s.notify(BeforeChar, token)
	s.sendPattern(p)
	s.notify(AfterChar, token)
}

func (s *Scheduler) sendPattern(p cw.Pattern) {
	for i, e := range p {
		t := s.cursor
		width := s.timing.Width(e)

		s.env.SetValueAtTime(Off, t)
		s.env.ExponentialRampToValueAtTime(On, t+s.ramp)
		s.env.SetValueAtTime(On, t+width)
		s.env.ExponentialRampToValueAtTime(Off, t+width+s.ramp)

		s.cursor = t + width + s.ramp
		if i < len(p)-1 {
			s.cursor += s.timing.Dot + s.ramp
		}
	}
}

func (s *Scheduler) notify(kind Kind, token string) {
	s.notes = append(s.notes, Notification{Kind: kind, Token: token, At: s.cursor})
}

// Delay maps a cursor time to a wall-clock wait, given the envelope clock
// reading now. Times in the past map to zero.
func Delay(cursorTime, now float64) time.Duration {
	d := cursorTime - now
	if d < 0 {
		return 0
	}
	return time.Duration(d * float64(time.Second))
}

// Duration returns how long text keys for at timing, from the first element
// to the end of the last, excluding the startup delay.
func Duration(text string, timing cw.Timing, ramp float64) float64 {
	s := New(discard{}, timing, WithRamp(ramp), WithStartupDelay(0))
	tl := s.Schedule(text)
	return tl.End - tl.Start
}

// discard is an Envelope that ignores every command.
type discard struct{}

func (discard) CurrentTime() float64 { return 0 }

func (discard) SetValueAtTime(float64, float64) {}

func (discard) ExponentialRampToValueAtTime(float64, float64) {}

func (discard) CancelScheduledValues(float64) {}

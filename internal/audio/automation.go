// internal/audio/automation.go

// Package audio renders the keyed sidetone: a gain automation timeline, a
// live malgo playback device and an offline beep streamer.
package audio

import (
	"math"
	"sort"
	"sync"
)

type eventKind uint8

const (
	setValue eventKind = iota
	exponentialRamp
)

type automationEvent struct {
	kind  eventKind
	value float64
	time  float64
}

// Automation is a time-ordered list of value commands with the semantics of
// a Web Audio AudioParam: a set holds its value from its time onwards, a ramp
// moves exponentially from the previous event's value and time to its own.
// It is safe for concurrent use; the audio thread reads while the control
// side writes.
type Automation struct {
	mu      sync.Mutex
	initial float64
	events  []automationEvent
}

// NewAutomation returns an automation holding initial until the first event.
func NewAutomation(initial float64) *Automation {
	return &Automation{initial: initial}
}

// SetValueAtTime holds value from t onwards.
func (a *Automation) SetValueAtTime(value, t float64) {
	a.insert(automationEvent{kind: setValue, value: value, time: t})
}

// ExponentialRampToValueAtTime ramps from the previous event to value, arriving at t.
func (a *Automation) ExponentialRampToValueAtTime(value, t float64) {
	a.insert(automationEvent{kind: exponentialRamp, value: value, time: t})
}

// CancelScheduledValues removes every event at or after t.
func (a *Automation) CancelScheduledValues(t float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := sort.Search(len(a.events), func(i int) bool { return a.events[i].time >= t })
	a.events = a.events[:i]
}

// insert keeps events sorted; equal times keep insertion order.
func (a *Automation) insert(ev automationEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := sort.Search(len(a.events), func(i int) bool { return a.events[i].time > ev.time })
	a.events = append(a.events, automationEvent{})
	copy(a.events[i+1:], a.events[i:])
	a.events[i] = ev
}

// ValueAt returns the automated value at t.
func (a *Automation) ValueAt(t float64) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.valueAt(t)
}

// Fill writes the value at start, start+step, ... into out under one lock.
func (a *Automation) Fill(out []float64, start, step float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range out {
		out[i] = a.valueAt(start + float64(i)*step)
	}
}

func (a *Automation) valueAt(t float64) float64 {
	i := sort.Search(len(a.events), func(i int) bool { return a.events[i].time > t })

	if i == 0 {
		return a.initial
	}
	prev, prevTime := a.events[i-1].value, a.events[i-1].time
	if i == len(a.events) || a.events[i].kind != exponentialRamp {
		return prev
	}

	next := a.events[i]
	// A ramp cannot cross or touch zero; hold the previous value instead.
	if prev <= 0 || next.value <= 0 {
		return prev
	}
	ratio := (t - prevTime) / (next.time - prevTime)
	return prev * math.Pow(next.value/prev, ratio)
}

// Prune drops events that can no longer affect values at or after t.
func (a *Automation) Prune(t float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	i := sort.Search(len(a.events), func(i int) bool { return a.events[i].time > t })
	if i <= 1 {
		return
	}
	a.initial = a.events[i-2].value
	a.events = append(a.events[:0], a.events[i-1:]...)
}

// Len returns the number of pending events.
func (a *Automation) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

// Offline is an automation whose clock stands still at zero. It lets a
// scheduler lay out a transmission for rendering to a file.
type Offline struct {
	*Automation
}

// NewOffline returns an Offline starting at off.
func NewOffline(off float64) *Offline {
	return &Offline{Automation: NewAutomation(off)}
}

// CurrentTime always reports zero.
func (o *Offline) CurrentTime() float64 {
	return 0
}

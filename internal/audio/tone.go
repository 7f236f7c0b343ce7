// internal/audio/tone.go
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/gen2brain/malgo"
)

var (
	ErrNotInitialized = errors.New("audio output not initialized")
	ErrAlreadyRunning = errors.New("audio output already running")
	ErrNotRunning     = errors.New("audio output not running")
)

// pruneLag keeps automation events this far behind the playhead.
const pruneLag = 1.0

// Config holds playback device configuration
type Config struct {
	DeviceIndex int     // -1 for default device
	SampleRate  uint32  // e.g., 48000
	Channels    uint32  // 1 for mono, 2 for stereo
	BufferSize  uint32  // frames per callback
	Frequency   float64 // sidetone frequency in Hz
	Volume      float64 // peak amplitude, 0-1
}

// DefaultConfig returns a 700 Hz mono sidetone on the default device.
func DefaultConfig() Config {
	return Config{
		DeviceIndex: -1,
		SampleRate:  48000,
		Channels:    1,
		BufferSize:  512,
		Frequency:   700,
		Volume:      0.5,
	}
}

// Device describes a playback device.
type Device struct {
	Index     int
	Name      string
	IsDefault bool
}

// Tone is a continuously running sine oscillator whose gain follows an
// Automation. Its clock is the number of frames rendered by the device, so
// envelope times line up with what is actually audible.
type Tone struct {
	config  Config
	ctx     *malgo.AllocatedContext
	device  *malgo.Device
	running bool
	mu      sync.RWMutex

	gain   *Automation
	frames atomic.Uint64
	phase  float64 // touched only by the audio thread
	buf    []float64
}

// NewTone creates a tone source. The gain starts at off.
func NewTone(cfg Config, off float64) *Tone {
	return &Tone{
		config: cfg,
		gain:   NewAutomation(off),
	}
}

// Init initializes the audio backend
func (t *Tone) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Debug("malgo", "message", message)
	})
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	t.ctx = ctx
	return nil
}

// ListDevices returns available playback devices
func (t *Tone) ListDevices() ([]Device, error) {
	infos, err := t.deviceInfos()
	if err != nil {
		return nil, err
	}
	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{Index: i, Name: info.Name(), IsDefault: info.IsDefault != 0}
	}
	return devices, nil
}

func (t *Tone) deviceInfos() ([]malgo.DeviceInfo, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.ctx == nil {
		return nil, ErrNotInitialized
	}
	infos, err := t.ctx.Devices(malgo.Playback)
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return infos, nil
}

// Start opens the device and begins rendering. Some hosts keep output
// suspended until this is called.
func (t *Tone) Start() error {
	t.mu.RLock()
	running, initialized := t.running, t.ctx != nil
	t.mu.RUnlock()
	if running {
		return ErrAlreadyRunning
	}
	if !initialized {
		return ErrNotInitialized
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.SampleRate = t.config.SampleRate
	deviceConfig.PeriodSizeInFrames = t.config.BufferSize
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = t.config.Channels

	if t.config.DeviceIndex >= 0 {
		infos, err := t.deviceInfos()
		if err != nil {
			return err
		}
		if t.config.DeviceIndex >= len(infos) {
			return fmt.Errorf("device index %d out of range (have %d devices)",
				t.config.DeviceIndex, len(infos))
		}
		deviceConfig.Playback.DeviceID = infos[t.config.DeviceIndex].ID.Pointer()
	}

	callbacks := malgo.DeviceCallbacks{
		Data: func(output, _ []byte, frameCount uint32) {
			t.render(output, frameCount)
		},
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	device, err := malgo.InitDevice(t.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("init device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("start device: %w", err)
	}

	t.device = device
	t.running = true
	log.Debug("audio output started", "sample_rate", t.config.SampleRate, "frequency", t.config.Frequency)
	return nil
}

// render fills one device period. Runs on the audio thread.
func (t *Tone) render(output []byte, frameCount uint32) {
	n := int(frameCount)
	if cap(t.buf) < n {
		t.buf = make([]float64, n)
	}
	gains := t.buf[:n]

	rate := float64(t.config.SampleRate)
	start := float64(t.frames.Load()) / rate
	t.gain.Fill(gains, start, 1/rate)

	channels := int(t.config.Channels)
	step := 2 * math.Pi * t.config.Frequency / rate
	for i, g := range gains {
		sample := float32(math.Sin(t.phase) * g * t.config.Volume)
		t.phase += step
		if t.phase >= 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
		for c := 0; c < channels; c++ {
			offset := (i*channels + c) * 4
			if offset+4 > len(output) {
				break
			}
			binary.LittleEndian.PutUint32(output[offset:], math.Float32bits(sample))
		}
	}

	t.frames.Add(uint64(n))
	t.gain.Prune(start - pruneLag)
}

// Stop stops the device; the clock keeps its position.
func (t *Tone) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return ErrNotRunning
	}
	if t.device != nil {
		_ = t.device.Stop()
		t.device.Uninit()
		t.device = nil
	}
	t.running = false
	return nil
}

// Close releases all audio resources
func (t *Tone) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running && t.device != nil {
		_ = t.device.Stop()
		t.device.Uninit()
		t.device = nil
		t.running = false
	}

	if t.ctx != nil {
		if err := t.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninit context: %w", err)
		}
		t.ctx.Free()
		t.ctx = nil
	}
	return nil
}

// IsRunning returns true if output is active
func (t *Tone) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}

// CurrentTime returns seconds of audio rendered so far.
func (t *Tone) CurrentTime() float64 {
	return float64(t.frames.Load()) / float64(t.config.SampleRate)
}

// SetValueAtTime schedules a gain change.
func (t *Tone) SetValueAtTime(value, at float64) {
	t.gain.SetValueAtTime(value, at)
}

// ExponentialRampToValueAtTime schedules a gain ramp.
func (t *Tone) ExponentialRampToValueAtTime(value, at float64) {
	t.gain.ExponentialRampToValueAtTime(value, at)
}

// CancelScheduledValues revokes gain commands at or after at.
func (t *Tone) CancelScheduledValues(at float64) {
	t.gain.CancelScheduledValues(at)
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper() {
	viper.Reset()
}

func isolateHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	return tmpDir
}

func writeConfig(t *testing.T, home, body string) string {
	t.Helper()
	configDir := filepath.Join(home, ".config", AppName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	path := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func validSettings() Settings {
	return Settings{
		WPM:             20,
		FarnsworthWPM:   0,
		ToneFrequency:   700,
		Volume:          0.5,
		Ramp:            0.005,
		StartupDelay:    0.5,
		SampleRate:      48000,
		BufferSize:      512,
		DeviceIndex:     -1,
		EnableLetters:   true,
		EnableNumbers:   true,
		EnableSymbols:   true,
		EnableCallsigns: true,
		EnableProsigns:  true,
		GroupCount:      10,
		GroupSize:       5,
		WordCount:       10,
	}
}

func TestInit_WithDefaults(t *testing.T) {
	resetViper()
	home := isolateHome(t)
	writeConfig(t, home, DefaultConfig)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	tests := []struct {
		key      string
		expected interface{}
	}{
		{"wpm", 20},
		{"farnsworth_wpm", 0},
		{"tone_frequency", 700},
		{"volume", 0.5},
		{"ramp", 0.005},
		{"startup_delay", 0.5},
		{"sample_rate", 48000},
		{"buffer_size", 512},
		{"device_index", -1},
		{"enable_letters", true},
		{"enable_prosigns", true},
		{"group_count", 10},
		{"group_size", 5},
		{"word_count", 10},
		{"history_db", ""},
		{"debug", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := viper.Get(tt.key)
			if got != tt.expected {
				t.Errorf("viper.Get(%q) = %v, want %v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestInit_CreatesConfigIfMissing(t *testing.T) {
	resetViper()
	home := isolateHome(t)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	configPath := filepath.Join(home, ".config", AppName, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Errorf("Init() did not create config file at %s", configPath)
	}
}

func TestInit_ReadsLocalConfigFirst(t *testing.T) {
	resetViper()
	home := isolateHome(t)
	writeConfig(t, home, "wpm: 20")

	t.Chdir(home)
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("wpm: 25"), 0644); err != nil {
		t.Fatalf("failed to write local config: %v", err)
	}

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if got := viper.GetInt("wpm"); got != 25 {
		t.Errorf("viper.GetInt(wpm) = %d, want 25 (local config)", got)
	}
}

func TestGet_ReturnsSettings(t *testing.T) {
	resetViper()
	home := isolateHome(t)
	writeConfig(t, home, DefaultConfig)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	settings, err := Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if settings.WPM != 20 {
		t.Errorf("settings.WPM = %v, want 20", settings.WPM)
	}
	if settings.ToneFrequency != 700 {
		t.Errorf("settings.ToneFrequency = %v, want 700", settings.ToneFrequency)
	}
	if !settings.EnableCallsigns {
		t.Error("settings.EnableCallsigns = false, want true")
	}
}

func TestGet_InvalidConfig(t *testing.T) {
	resetViper()
	home := isolateHome(t)
	writeConfig(t, home, "wpm: 100\nvolume: 2\n")

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if _, err := Get(); err == nil {
		t.Fatal("Get() expected error for out-of-range wpm and volume")
	}
}

func TestSettings_HistoryPath(t *testing.T) {
	home := isolateHome(t)

	s := validSettings()
	want := filepath.Join(home, ".config", AppName, HistoryFile)
	if got := s.HistoryPath(); got != want {
		t.Errorf("HistoryPath() = %q, want %q", got, want)
	}

	s.HistoryDB = "/tmp/other.db"
	if got := s.HistoryPath(); got != "/tmp/other.db" {
		t.Errorf("HistoryPath() = %q, want explicit path", got)
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Settings)
		wantErr string
	}{
		{"valid", func(s *Settings) {}, ""},
		{"wpm too low", func(s *Settings) { s.WPM = 4 }, "wpm must be"},
		{"wpm too high", func(s *Settings) { s.WPM = 61 }, "wpm must be"},
		{"farnsworth above wpm", func(s *Settings) { s.FarnsworthWPM = 25 }, "farnsworth_wpm"},
		{"farnsworth negative", func(s *Settings) { s.FarnsworthWPM = -1 }, "farnsworth_wpm"},
		{"farnsworth slower is fine", func(s *Settings) { s.FarnsworthWPM = 10 }, ""},
		{"frequency too low", func(s *Settings) { s.ToneFrequency = 50 }, "tone_frequency must be"},
		{"volume zero", func(s *Settings) { s.Volume = 0 }, "volume"},
		{"volume above one", func(s *Settings) { s.Volume = 1.5 }, "volume"},
		{"ramp zero", func(s *Settings) { s.Ramp = 0 }, "ramp"},
		{"ramp too long", func(s *Settings) { s.Ramp = 0.1 }, "ramp"},
		{"negative startup delay", func(s *Settings) { s.StartupDelay = -1 }, "startup_delay"},
		{"sample rate too low", func(s *Settings) { s.SampleRate = 4000 }, "sample_rate"},
		{"buffer not power of two", func(s *Settings) { s.BufferSize = 500 }, "power of 2"},
		{"bad device index", func(s *Settings) { s.DeviceIndex = -2 }, "device_index"},
		{"no groups", func(s *Settings) { s.GroupCount = 0 }, "group_count"},
		{"group too large", func(s *Settings) { s.GroupSize = 21 }, "group_size"},
		{"no words", func(s *Settings) { s.WordCount = 0 }, "word_count"},
		{"above nyquist", func(s *Settings) { s.SampleRate = 8000; s.ToneFrequency = 3000 }, "Nyquist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.modify(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_ValidateCollectsAll(t *testing.T) {
	s := validSettings()
	s.WPM = 100
	s.Volume = 0
	s.GroupSize = 0

	err := s.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, want := range []string{"wpm", "volume", "group_size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %q: %v", want, err)
		}
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	resetViper()
	home := isolateHome(t)
	path := writeConfig(t, home, DefaultConfig)

	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	got := make(chan *Settings, 4)
	Watch(func(s *Settings) { got <- s }, func(err error) { t.Logf("reload error: %v", err) })

	updated := strings.Replace(DefaultConfig, "wpm: 20 ", "wpm: 25 ", 1)
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-got:
			if s.WPM == 25 {
				return
			}
		case <-deadline:
			t.Fatal("Watch() did not report the updated wpm")
		}
	}
}

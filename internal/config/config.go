// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	AppName       = "cwtrainer"
	ConfigType    = "yaml"
	HistoryFile   = "history.db"
	DefaultConfig = `# CW Trainer Configuration

# Keying speed
wpm: 20                 # Character speed in words per minute
farnsworth_wpm: 0       # Spacing speed, 0 = same as wpm

# Tone
tone_frequency: 700     # Sidetone frequency in Hz
volume: 0.5             # Output amplitude (0.0-1.0]
ramp: 0.005             # Declick ramp in seconds
startup_delay: 0.5      # Silence before the first element in seconds

# Audio device settings
sample_rate: 48000      # Playback sample rate in Hz
buffer_size: 512        # Frames per device callback
device_index: -1        # -1 for default device

# Practice content
enable_letters: true
enable_numbers: true
enable_symbols: true
enable_callsigns: true
enable_prosigns: true
group_count: 10         # Groups per practice run
group_size: 5           # Characters per group
word_count: 10          # Words per practice run

# History
history_db: ""          # sqlite path, empty = history.db next to this file

# Output
debug: false            # Enable debug output
`
)

// Settings holds all application configuration
type Settings struct {
	// Keying speed
	WPM           float64 `mapstructure:"wpm"`
	FarnsworthWPM float64 `mapstructure:"farnsworth_wpm"`

	// Tone
	ToneFrequency float64 `mapstructure:"tone_frequency"`
	Volume        float64 `mapstructure:"volume"`
	Ramp          float64 `mapstructure:"ramp"`
	StartupDelay  float64 `mapstructure:"startup_delay"`

	// Audio device settings
	SampleRate  float64 `mapstructure:"sample_rate"`
	BufferSize  int     `mapstructure:"buffer_size"`
	DeviceIndex int     `mapstructure:"device_index"`

	// Practice content
	EnableLetters   bool `mapstructure:"enable_letters"`
	EnableNumbers   bool `mapstructure:"enable_numbers"`
	EnableSymbols   bool `mapstructure:"enable_symbols"`
	EnableCallsigns bool `mapstructure:"enable_callsigns"`
	EnableProsigns  bool `mapstructure:"enable_prosigns"`
	GroupCount      int  `mapstructure:"group_count"`
	GroupSize       int  `mapstructure:"group_size"`
	WordCount       int  `mapstructure:"word_count"`

	// History
	HistoryDB string `mapstructure:"history_db"`

	// Output
	Debug bool `mapstructure:"debug"`
}

// Init initializes Viper with defaults and config file.
// Config file search order: current directory, then ~/.config/cwtrainer/
func Init() error {
	viper.SetDefault("wpm", 20)
	viper.SetDefault("farnsworth_wpm", 0)
	viper.SetDefault("tone_frequency", 700)
	viper.SetDefault("volume", 0.5)
	viper.SetDefault("ramp", 0.005)
	viper.SetDefault("startup_delay", 0.5)
	viper.SetDefault("sample_rate", 48000)
	viper.SetDefault("buffer_size", 512)
	viper.SetDefault("device_index", -1)
	viper.SetDefault("enable_letters", true)
	viper.SetDefault("enable_numbers", true)
	viper.SetDefault("enable_symbols", true)
	viper.SetDefault("enable_callsigns", true)
	viper.SetDefault("enable_prosigns", true)
	viper.SetDefault("group_count", 10)
	viper.SetDefault("group_size", 5)
	viper.SetDefault("word_count", 10)
	viper.SetDefault("history_db", "")
	viper.SetDefault("debug", false)

	viper.SetConfigType(ConfigType)
	viper.AddConfigPath(".")

	configDir := Dir()
	viper.AddConfigPath(configDir)

	// Try .config.yaml first (hidden file), then config.yaml
	viper.SetConfigName(".config")
	err := viper.ReadInConfig()
	if err != nil {
		viper.SetConfigName("config")
		err = viper.ReadInConfig()
	}

	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("read config: %w", err)
		}
		if err = ensureConfigExists(configDir); err != nil {
			return err
		}
		if err = viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	return nil
}

// Dir returns the per-user configuration directory of the application.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, AppName)
}

func ensureConfigExists(configPath string) error {
	configFile := filepath.Join(configPath, "config.yaml")

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err = os.MkdirAll(configPath, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err = os.WriteFile(configFile, []byte(DefaultConfig), 0644); err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
	}
	return nil
}

// Get returns the current settings
func Get() (*Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &s, nil
}

// Watch calls fn with freshly validated settings every time the config file
// changes. Invalid edits are reported through onError and otherwise ignored.
func Watch(fn func(*Settings), onError func(error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		s, err := Get()
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		fn(s)
	})
	viper.WatchConfig()
}

// HistoryPath returns the sqlite path for practice history.
func (s *Settings) HistoryPath() string {
	if s.HistoryDB != "" {
		return s.HistoryDB
	}
	return filepath.Join(Dir(), HistoryFile)
}

// Validate checks that all settings are within acceptable ranges
func (s *Settings) Validate() error {
	var errs []error

	// Keying speed
	if s.WPM < 5 || s.WPM > 60 {
		errs = append(errs, fmt.Errorf("wpm must be between 5 and 60, got %v", s.WPM))
	}
	if s.FarnsworthWPM < 0 || s.FarnsworthWPM > s.WPM {
		errs = append(errs, fmt.Errorf("farnsworth_wpm must be between 0 and wpm (%v), got %v", s.WPM, s.FarnsworthWPM))
	}

	// Tone
	if s.ToneFrequency < 100 || s.ToneFrequency > 3000 {
		errs = append(errs, fmt.Errorf("tone_frequency must be between 100 and 3000 Hz, got %v", s.ToneFrequency))
	}
	if s.Volume <= 0 || s.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume must be in (0.0, 1.0], got %v", s.Volume))
	}
	if s.Ramp <= 0 || s.Ramp > 0.05 {
		errs = append(errs, fmt.Errorf("ramp must be in (0, 0.05] seconds, got %v", s.Ramp))
	}
	if s.StartupDelay < 0 || s.StartupDelay > 5 {
		errs = append(errs, fmt.Errorf("startup_delay must be between 0 and 5 seconds, got %v", s.StartupDelay))
	}

	// Audio device settings
	if s.SampleRate < 8000 || s.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %v", s.SampleRate))
	}
	if s.BufferSize < 64 || s.BufferSize > 8192 {
		errs = append(errs, fmt.Errorf("buffer_size must be between 64 and 8192, got %d", s.BufferSize))
	}
	if s.BufferSize&(s.BufferSize-1) != 0 {
		errs = append(errs, fmt.Errorf("buffer_size should be a power of 2, got %d", s.BufferSize))
	}
	if s.DeviceIndex < -1 {
		errs = append(errs, fmt.Errorf("device_index must be -1 or a device index, got %d", s.DeviceIndex))
	}

	// Practice content
	if s.GroupCount < 1 || s.GroupCount > 500 {
		errs = append(errs, fmt.Errorf("group_count must be between 1 and 500, got %d", s.GroupCount))
	}
	if s.GroupSize < 1 || s.GroupSize > 20 {
		errs = append(errs, fmt.Errorf("group_size must be between 1 and 20, got %d", s.GroupSize))
	}
	if s.WordCount < 1 || s.WordCount > 500 {
		errs = append(errs, fmt.Errorf("word_count must be between 1 and 500, got %d", s.WordCount))
	}

	// Nyquist check: tone frequency must be less than half the sample rate
	if s.ToneFrequency >= s.SampleRate/2 {
		errs = append(errs, fmt.Errorf("tone_frequency (%v Hz) must be less than Nyquist frequency (%v Hz)", s.ToneFrequency, s.SampleRate/2))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

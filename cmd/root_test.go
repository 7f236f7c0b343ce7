package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwtrainer/internal/config"
)

// resetForTest clears viper and every flag value left by an earlier Execute.
func resetForTest(t *testing.T) {
	t.Helper()
	viper.Reset()
	bindFlags()

	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)
}

// setupConfig points HOME at a temp dir holding body as the config file.
func setupConfig(t *testing.T, body string) string {
	t.Helper()
	resetForTest(t)

	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", "")
	configDir := filepath.Join(tmpDir, ".config", config.AppName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return tmpDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_HasExpectedFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	tests := []struct {
		name         string
		shorthand    string
		defaultValue string
	}{
		{"device", "d", "-1"},
		{"frequency", "f", "700"},
		{"wpm", "w", "20"},
		{"farnsworth", "F", "0"},
		{"debug", "D", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := flags.Lookup(tt.name)
			if flag == nil {
				t.Fatalf("flag %q not found", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("flag %q shorthand = %q, want %q", tt.name, flag.Shorthand, tt.shorthand)
			}
			if flag.DefValue != tt.defaultValue {
				t.Errorf("flag %q default = %q, want %q", tt.name, flag.DefValue, tt.defaultValue)
			}
			if flag.Usage == "" {
				t.Errorf("flag %q has no description", tt.name)
			}
		})
	}
}

func TestRootCmd_Properties(t *testing.T) {
	if rootCmd.Use != "cwtrainer" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "cwtrainer")
	}
	if rootCmd.Short == "" {
		t.Error("rootCmd.Short is empty")
	}
	if rootCmd.Long == "" {
		t.Error("rootCmd.Long is empty")
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	for _, name := range []string{"send", "practice", "render", "verify", "devices", "history"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			if err != nil || cmd == rootCmd {
				t.Fatalf("subcommand %q not registered", name)
			}
			if cmd.Short == "" {
				t.Errorf("subcommand %q has no description", name)
			}
		})
	}
}

func TestRootCmd_HelpOutput(t *testing.T) {
	setupConfig(t, config.DefaultConfig)

	output, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("Execute() with --help error = %v", err)
	}
	for _, want := range []string{"cwtrainer", "--device", "--farnsworth", "practice"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestInitConfig(t *testing.T) {
	setupConfig(t, "wpm: 25")

	initConfig()

	if got := viper.GetInt("wpm"); got != 25 {
		t.Errorf("viper.GetInt(wpm) = %d, want 25", got)
	}
}

func TestInitConfig_FlagOverridesFile(t *testing.T) {
	setupConfig(t, "wpm: 25")

	if err := rootCmd.PersistentFlags().Set("wpm", "30"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	initConfig()

	if got := viper.GetFloat64("wpm"); got != 30 {
		t.Errorf("viper.GetFloat64(wpm) = %v, want 30", got)
	}
}

func TestVerifyCmd_RoundTrip(t *testing.T) {
	setupConfig(t, config.DefaultConfig)

	output, err := execute(t, "verify", "paris", "cq")
	if err != nil {
		t.Fatalf("verify error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "decoded:  PARIS CQ") {
		t.Errorf("verify output missing decoded text:\n%s", output)
	}
}

func TestVerifyCmd_DefaultText(t *testing.T) {
	setupConfig(t, config.DefaultConfig)

	output, err := execute(t, "verify", "--wpm", "15")
	if err != nil {
		t.Fatalf("verify error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "OK") {
		t.Errorf("verify output should report OK:\n%s", output)
	}
}

func TestRenderCmd_WritesWAV(t *testing.T) {
	home := setupConfig(t, config.DefaultConfig)
	out := filepath.Join(home, "cq.wav")

	if output, err := execute(t, "render", "-o", out, "CQ", "@SK"); err != nil {
		t.Fatalf("render error = %v\n%s", err, output)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read wav: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Errorf("output is not a RIFF file")
	}
	if len(data) < 48000 {
		t.Errorf("wav size = %d bytes, want at least a second of audio", len(data))
	}
}

func TestRenderCmd_RequiresOutput(t *testing.T) {
	setupConfig(t, config.DefaultConfig)

	if _, err := execute(t, "render", "CQ"); err == nil {
		t.Error("expected error when --output is missing")
	}
}

func TestPracticeCmd_DryRun(t *testing.T) {
	setupConfig(t, config.DefaultConfig)

	output, err := execute(t, "practice", "--dry-run", "--mode", "groups", "--count", "3", "--size", "4", "--seed", "7")
	if err != nil {
		t.Fatalf("practice error = %v", err)
	}
	groups := strings.Fields(output)
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3: %q", len(groups), output)
	}
	for _, g := range groups {
		if len([]rune(g)) != 4 {
			t.Errorf("group %q length = %d, want 4", g, len([]rune(g)))
		}
	}
}

func TestPracticeCmd_UnknownMode(t *testing.T) {
	setupConfig(t, config.DefaultConfig)

	_, err := execute(t, "practice", "--dry-run", "--mode", "qso")
	if err == nil || !strings.Contains(err.Error(), "unknown practice mode") {
		t.Errorf("expected unknown mode error, got %v", err)
	}
}

func TestHistoryCmd_Empty(t *testing.T) {
	setupConfig(t, config.DefaultConfig)

	output, err := execute(t, "history")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	if !strings.Contains(output, "MODE") {
		t.Errorf("history output should contain the table header:\n%s", output)
	}
}

func TestCommands_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"verify", []string{"verify", "CQ"}},
		{"render", []string{"render", "-o", "x.wav", "CQ"}},
		{"practice", []string{"practice", "--dry-run"}},
		{"history", []string{"history"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupConfig(t, "sample_rate: 1000000")

			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error for invalid config, got nil")
			}
			if !strings.Contains(err.Error(), "config") {
				t.Errorf("expected config error, got: %v", err)
			}
		})
	}
}

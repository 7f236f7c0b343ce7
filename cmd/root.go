// cmd/root.go
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ColonelBlimp/cwtrainer/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "cwtrainer",
	Short: "CW (Morse code) trainer with a live sidetone",
	Long: `A Morse code trainer that keys text, practice groups, words and callsigns
through a click-free sidetone, reporting each character as it becomes audible.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags (override config file)
	rootCmd.PersistentFlags().IntP("device", "d", -1, "audio device index (-1 for default)")
	rootCmd.PersistentFlags().Float64P("frequency", "f", 700, "sidetone frequency in Hz")
	rootCmd.PersistentFlags().Float64P("wpm", "w", 20, "character speed in WPM")
	rootCmd.PersistentFlags().Float64P("farnsworth", "F", 0, "spacing speed in WPM (0 = same as --wpm)")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "enable debug output")

	bindFlags()

	rootCmd.AddCommand(sendCmd, practiceCmd, renderCmd, verifyCmd, devicesCmd, historyCmd)
}

// bindFlags binds the global flags to their viper keys.
func bindFlags() {
	_ = viper.BindPFlag("device_index", rootCmd.PersistentFlags().Lookup("device"))
	_ = viper.BindPFlag("tone_frequency", rootCmd.PersistentFlags().Lookup("frequency"))
	_ = viper.BindPFlag("wpm", rootCmd.PersistentFlags().Lookup("wpm"))
	_ = viper.BindPFlag("farnsworth_wpm", rootCmd.PersistentFlags().Lookup("farnsworth"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
}

// cmd/devices.go
package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ColonelBlimp/cwtrainer/internal/audio"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio playback devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tone := audio.NewTone(audio.DefaultConfig(), 0)
		if err := tone.Init(); err != nil {
			return err
		}
		defer func() { _ = tone.Close() }()

		devices, err := tone.ListDevices()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Index", "Name", "Default"})
		for _, d := range devices {
			def := ""
			if d.IsDefault {
				def = "*"
			}
			t.AppendRow(table.Row{d.Index, d.Name, def})
		}
		t.Render()
		return nil
	},
}

package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"audio-converter/domain/conversion"

	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List output formats and quality presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunFormats(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

// RunFormats prints the ffmpeg codec arguments for every format and preset
func RunFormats(output OutputWriter) error {
	w := tabwriter.NewWriter(output, 0, 0, 2, ' ', 0)

	header := []string{"FORMAT"}
	for _, q := range conversion.SupportedQualities {
		header = append(header, strings.ToUpper(q.String()))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, f := range conversion.SupportedFormats {
		row := []string{f.String()}
		for _, q := range conversion.SupportedQualities {
			row = append(row, strings.Join(conversion.CodecArgs(f, q), " "))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	return w.Flush()
}

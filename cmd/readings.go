package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// CreateReadingsCmd creates the readings command.
func CreateReadingsCmd(provider MixerProvider) *cobra.Command {
	var verbose bool
	var natsURL string

	cmd := &cobra.Command{
		Use:   "readings",
		Short: "Print volume readings for every playback device",
		Long: `Enumerates playback devices with aplay, resolves a volume control on each card ` +
			`and prints the readings as JSON keyed by card_<card>_device_<device>.`,
		Args: cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			quietLogs(verbose)

			mixer, closeMixer, err := openMixer(provider, natsURL)
			if err != nil {
				fmt.Fprintln(c.ErrOrStderr(), err)
				os.Exit(1)
			}
			out := mixer.SafeReadings(c.Context())
			closeMixer()

			if err := writeJSON(c.OutOrStdout(), out); err != nil {
				fmt.Fprintln(c.ErrOrStderr(), err)
				os.Exit(1)
			}
			if _, failed := out["error"]; failed {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&natsURL, "nats", "", "Ask a running server over NATS instead of probing locally")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log progress at the configured level")

	return cmd
}

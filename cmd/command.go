package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/smazurov/alsavolume/internal/audio"
	"github.com/spf13/cobra"
)

// commandFlags are the numeric parameters a command may take. Only flags
// set on the command line are forwarded.
var commandFlags = []string{"volume", "card", "device", "channels"}

// CreateCommandCmd creates the command command.
func CreateCommandCmd(provider MixerProvider) *cobra.Command {
	var verbose bool
	var natsURL string

	cmd := &cobra.Command{
		Use:   "command <" + strings.Join(audio.SupportedCommands, "|") + ">",
		Short: "Run one mixer command",
		Long: `Validates the parameters, resolves a mixer control and runs the command, printing ` +
			`the result as JSON. Exits 1 when the result is an error.`,
		Example: `  alsavolume command set_volume --card 0 --volume 40
  alsavolume command toggle_mute --card 1
  alsavolume command play_test --card 0 --device 3 --channels 6
  alsavolume command mute --card 0 --nats nats://127.0.0.1:4222`,
		Args: cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			quietLogs(verbose)

			params, err := commandParams(c, args[0])
			if err != nil {
				fmt.Fprintln(c.ErrOrStderr(), err)
				os.Exit(2)
			}
			mixer, closeMixer, err := openMixer(provider, natsURL)
			if err != nil {
				fmt.Fprintln(c.ErrOrStderr(), err)
				os.Exit(1)
			}
			ok := runCommand(c.Context(), mixer, c.OutOrStdout(), params)
			closeMixer()
			if !ok {
				os.Exit(1)
			}
		},
	}

	for _, name := range commandFlags {
		cmd.Flags().String(name, "", fmt.Sprintf("%s parameter (integer)", name))
	}
	cmd.Flags().StringVar(&natsURL, "nats", "", "Send the command to a running server over NATS")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log progress at the configured level")

	return cmd
}

// commandParams builds the request from the positional command name and
// the flags that were set. Values stay strings; the service coerces them.
func commandParams(c *cobra.Command, name string) (audio.Params, error) {
	params := audio.Params{"command": name}
	for _, flag := range commandFlags {
		if !c.Flags().Changed(flag) {
			continue
		}
		value, err := c.Flags().GetString(flag)
		if err != nil {
			return nil, err
		}
		params[flag] = value
	}
	return params, nil
}

// runCommand executes params and writes the result. It reports success.
func runCommand(ctx context.Context, mixer Mixer, w io.Writer, params audio.Params) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	res := mixer.Execute(ctx, params)
	if err := writeJSON(w, res); err != nil {
		return false
	}
	return res.OK()
}

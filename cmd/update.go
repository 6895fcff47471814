package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/smazurov/alsavolume/internal/logging"
	"github.com/smazurov/alsavolume/internal/updater"
	"github.com/smazurov/alsavolume/internal/version"
	"github.com/spf13/cobra"
)

// Updater is the part of the release updater the update command drives.
type Updater interface {
	Check(ctx context.Context) (*updater.UpdateInfo, error)
	Apply(ctx context.Context) (*updater.UpdateInfo, error)
}

// releaseUpdater drops the raw release from Check.
type releaseUpdater struct{ *updater.Updater }

func (r releaseUpdater) Check(ctx context.Context) (*updater.UpdateInfo, error) {
	info, _, err := r.Updater.Check(ctx)
	return info, err
}

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var (
		checkOnly  bool
		prerelease bool
		repository string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace this binary with the latest release",
		Long: `Checks GitHub for a newer release and installs it over the running executable. ` +
			`Restart the service afterwards to run the new version.`,
		Args: cobra.NoArgs,
		Run: func(c *cobra.Command, _ []string) {
			u, err := updater.New(updater.Options{
				Repository:     repository,
				Prerelease:     prerelease,
				CurrentVersion: version.Version,
				Logger:         logging.GetLogger("updater"),
			})
			if err != nil {
				fmt.Fprintln(c.ErrOrStderr(), err)
				os.Exit(1)
			}

			ctx := c.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if !runUpdate(ctx, releaseUpdater{u}, checkOnly, c.OutOrStdout(), c.ErrOrStderr()) {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only report whether an update is available")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prereleases")
	cmd.Flags().StringVar(&repository, "repository", updater.DefaultRepository, "GitHub repository slug")

	return cmd
}

// runUpdate checks or applies an update and prints the release info. It
// reports success; being up to date counts as success.
func runUpdate(ctx context.Context, u Updater, checkOnly bool, out, errOut io.Writer) bool {
	var (
		info *updater.UpdateInfo
		err  error
	)
	if checkOnly {
		info, err = u.Check(ctx)
	} else {
		info, err = u.Apply(ctx)
	}

	if errors.Is(err, updater.ErrNoUpdate) {
		err = nil
	}
	if err != nil {
		fmt.Fprintln(errOut, err)
		return false
	}
	if info != nil {
		_ = writeJSON(out, info)
	}
	return true
}

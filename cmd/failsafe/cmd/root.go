package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/byte4ever/failsafe/cmd/internal/app"
	"github.com/byte4ever/failsafe/cmd/internal/flags"
)

const VersionDev = "dev"

// Cmd holds the state shared by the failsafe commands.
type Cmd struct {
	// Version params.
	appVersion string
	commitHash string

	flagsApp   *flags.App
	flagsRetry *flags.Retry
}

// NewCmd builds the failsafe root command and its run subcommand.
func NewCmd(appVersion, commitHash string) *cobra.Command {
	c := &Cmd{
		appVersion: appVersion,
		commitHash: commitHash,
		flagsApp:   flags.NewApp(),
		flagsRetry: flags.NewRetry(),
	}

	rootCmd := &cobra.Command{
		Use:   "failsafe",
		Short: "Run commands under a retry policy",
		RunE:  c.root,
	}

	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().AddFlagSet(c.flagsApp.NewFlagSet())

	runCmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a command, retrying it on failure",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.run,
	}

	runCmd.Flags().SortFlags = false
	runCmd.Flags().AddFlagSet(c.flagsRetry.NewFlagSet())
	// Flags after the command belong to the command.
	runCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(runCmd)

	return rootCmd
}

func (c *Cmd) root(cmd *cobra.Command, _ []string) error {
	if c.flagsApp.Version {
		c.printVersion(cmd)

		return nil
	}

	return cmd.Help()
}

func (c *Cmd) run(cmd *cobra.Command, args []string) error {
	if c.flagsApp.Version {
		c.printVersion(cmd)

		return nil
	}

	logger, err := app.NewLogger(os.Stderr, c.flagsApp.GetApp())
	if err != nil {
		return err
	}

	runner, err := app.NewRunner(c.flagsRetry.GetRetry(), args, logger)
	if err != nil {
		return err
	}

	return runner.Run(cmd.Context())
}

func (c *Cmd) printVersion(cmd *cobra.Command) {
	version := c.appVersion
	if c.appVersion == VersionDev {
		version += "." + c.commitHash
	}

	fmt.Fprintf(cmd.OutOrStdout(), "version: %s\n", version)
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dfryer1193/pagebot/internal/app"
	"github.com/dfryer1193/pagebot/internal/config"
	"github.com/spf13/cobra"
)

// errOperationFailed is returned after a failure record has been printed, so the exit code reflects it.
var errOperationFailed = errors.New("operation failed")

type cli struct {
	configFile string
	verbose    bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "pagebot",
		Short: "Safe, attributable edits to published landing pages",
		Long: `pagebot edits marked text regions of landing pages stored in a git repository.
Every edit is validated, sanitized and committed only if the page has not changed since it was read.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configFile)
			if err != nil {
				return err
			}
			if c.verbose {
				cfg.LogLevel = "debug"
			}
			cfg.SetupLogger()
			c.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "Config file (default ./pagebot.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		c.newUpdateCmd(),
		c.newPreviewCmd(),
		c.newRollbackCmd(),
		c.newHistoryCmd(),
		c.newMarkersCmd(),
		c.newSeedCmd(),
		c.newServeCmd(),
	)
	return rootCmd
}

// withApp builds the app for one command and closes it afterwards.
func (c *cli) withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := app.New(cmd.Context(), c.cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// printResult writes result as indented JSON and turns a failure record into a non-zero exit.
func printResult(w io.Writer, result any, success bool) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(w, string(out))
	if !success {
		return errOperationFailed
	}
	return nil
}

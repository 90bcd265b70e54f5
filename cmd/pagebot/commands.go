package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dfryer1193/pagebot/internal/app"
	"github.com/dfryer1193/pagebot/pages/application"
	"github.com/spf13/cobra"
)

func (c *cli) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <page> <element> <content>",
		Short: "Replace the text of an editable element and commit it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				result := a.Service.UpdateElement(cmd.Context(), args[0], args[1], args[2])
				return printResult(cmd.OutOrStdout(), result, result.Success())
			})
		},
	}
}

func (c *cli) newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <page> <element> <content>",
		Short: "Show what an update would change without committing",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				result := a.Service.Preview(cmd.Context(), args[0], args[1], args[2])
				return printResult(cmd.OutOrStdout(), result, result.Success())
			})
		},
	}
}

func (c *cli) newRollbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <page> <revision>",
		Short: "Restore a page to an earlier revision as a new commit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				result := a.Service.Rollback(cmd.Context(), args[0], args[1])
				return printResult(cmd.OutOrStdout(), result, result.Success())
			})
		},
	}
}

func (c *cli) newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <page>",
		Short: "List recent commits touching a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				result := a.Service.GetHistory(cmd.Context(), args[0], limit)
				return printResult(cmd.OutOrStdout(), result, result.Success())
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", application.DefaultHistoryLimit, "Maximum number of entries")
	return cmd
}

func (c *cli) newMarkersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "markers <page>",
		Short: "Report which editable elements a page exposes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				result := a.Service.AuditMarkers(cmd.Context(), args[0])
				return printResult(cmd.OutOrStdout(), result, result.Success())
			})
		},
	}
}

func (c *cli) newSeedCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "seed <page> <file>",
		Short: "Import a page document into the local SQLite store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				if a.Local == nil {
					return errors.New("seed requires store: sqlite")
				}

				page, err := a.Service.Pages().Parse(args[0])
				if err != nil {
					return err
				}
				content, err := os.ReadFile(args[1])
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[1], err)
				}

				ref, err := a.Local.Seed(cmd.Context(), page.DocumentPath(), string(content), message)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s at %s\n", page.DocumentPath(), ref.SHA)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "import page", "Commit message")
	return cmd
}

func (c *cli) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and push webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				return a.Serve(cmd.Context())
			})
		},
	}
}

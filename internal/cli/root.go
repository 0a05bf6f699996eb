// Package cli implements dashctl, a command-line dashboard that reads and
// writes through the resilient client.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type appKey struct{}

// NewRootCmd returns the dashctl root command. factory is called once per
// invocation, before the subcommand runs.
func NewRootCmd(factory Factory) *cobra.Command {
	var opts Options

	rootCmd := &cobra.Command{
		Use:           "dashctl",
		Short:         "Social dashboard client",
		Long:          "dashctl reads and writes dashboard data through the API, falling back to the database and then to the local cache.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Output != "text" && opts.Output != "json" {
				return fmt.Errorf("output must be text or json, got %q", opts.Output)
			}
			app, err := factory(cmd.Context(), opts)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, app))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			app := appFrom(cmd)
			if app == nil {
				return nil
			}
			if app.Served != "" && opts.Output == "text" {
				fmt.Fprintf(cmd.ErrOrStderr(), "(served from %s)\n", app.Served)
			}
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.Output, "output", "text", "output format: json|text")
	rootCmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "skip the API tier")
	rootCmd.PersistentFlags().BoolVar(&opts.Direct, "direct", false, "enable the direct database tier (MYSQL_DSN)")
	rootCmd.PersistentFlags().StringVar(&opts.Email, "email", "", "sign in by email against a backend in mock mode")

	rootCmd.AddCommand(newProfilesCmd(&opts))
	rootCmd.AddCommand(newSuggestionsCmd(&opts))
	rootCmd.AddCommand(newMetricsCmd(&opts))
	rootCmd.AddCommand(newGrowthCmd(&opts))
	rootCmd.AddCommand(newSeedLocalCmd())
	rootCmd.AddCommand(newCalendarCmd(&opts))

	return rootCmd
}

func appFrom(cmd *cobra.Command) *App {
	if cmd.Context() == nil {
		return nil
	}
	app, _ := cmd.Context().Value(appKey{}).(*App)
	return app
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

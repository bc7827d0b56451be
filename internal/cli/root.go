// Package cli is the transitdash command tree.
package cli

import (
	"github.com/spf13/cobra"

	"transitdash/internal/config"
)

type App struct {
	ConfigPath string
}

func Execute() error {
	app := &App{}
	rootCmd := NewRootCmd(app)
	return rootCmd.Execute()
}

func NewRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "transitdash",
		Short:         "GTFS transit analytics dashboard",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(
		&app.ConfigPath,
		"config",
		"",
		"Path to a TOML or YAML configuration file (default $"+config.PathEnv+")",
	)

	cmd.AddCommand(NewServeCmd(app))
	cmd.AddCommand(NewTUICmd(app))
	cmd.AddCommand(NewShowCmd(app))
	cmd.AddCommand(NewViewsCmd(app))

	return cmd
}

func (app *App) loadConfig() (*config.Config, error) {
	return config.Load(app.ConfigPath)
}

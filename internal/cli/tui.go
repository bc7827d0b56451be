package cli

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"transitdash/internal/tui"
)

func NewTUICmd(app *App) *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the dashboard in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}

			f, err := tea.LogToFile(logPath, "transitdash")
			if err != nil {
				return err
			}
			defer f.Close()
			logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel}))

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			b, err := newBackend(ctx, cfg, logger, true)
			if err != nil {
				return err
			}
			defer b.Close()

			m := tui.New(ctx, b.source, logger, b.dashboardOptions()...)
			defer m.Close()

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "transitdash-tui.log", "File the terminal UI logs to")
	return cmd
}

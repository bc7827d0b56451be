package cli

import (
	"strings"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"transitdash/internal/dashboard"
)

func NewViewsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the dashboard views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl := table.New("View", "Title", "Inputs", "Lists").WithWriter(cmd.OutOrStdout())
			for _, e := range dashboard.Catalog() {
				tbl.AddRow(e.Name, e.Title, strings.Join(e.Inputs, ", "), strings.Join(e.Lists, ", "))
			}
			tbl.Print()
			return nil
		},
	}
}

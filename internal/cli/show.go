package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"transitdash/internal/dashboard"
	"transitdash/internal/present"
	"transitdash/internal/view"
)

type showOptions struct {
	filter string
	page   int
	list   string
	sel    string
	params []string
}

func NewShowCmd(app *App) *cobra.Command {
	opts := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show <view>",
		Short: "Render one dashboard view as text",
		Example: `  transitdash show stops --filter "main" --page 2
  transitdash show route_stats --param date=20240115
  transitdash show trip_planner --param start_stop_name="Main St" --param end_stop_name="Elm Ave"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request()
			if err != nil {
				return err
			}

			cfg, err := app.loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			b, err := newBackend(ctx, cfg, cfg.LoggerTo(cmd.ErrOrStderr()), false)
			if err != nil {
				return err
			}
			defer b.Close()

			ctx, cancel := context.WithTimeout(ctx, cfg.TransitAPITimeout*2)
			defer cancel()

			snap, err := dashboard.Render(ctx, b.source, args[0], req, b.dashboardOptions()...)
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.filter, "filter", "", "Filter text for the list")
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page to show")
	cmd.Flags().StringVar(&opts.list, "list", "", "Sub-list to filter, page or select from")
	cmd.Flags().StringVar(&opts.sel, "select", "", "Record id to look up")
	cmd.Flags().StringArrayVar(&opts.params, "param", nil, "View input as key=value; submits the query (repeatable)")

	return cmd
}

func (o *showOptions) request() (dashboard.Request, error) {
	if o.page < 1 {
		return dashboard.Request{}, fmt.Errorf("invalid page %d: must be at least 1", o.page)
	}
	req := dashboard.Request{
		Filter: o.filter,
		Page:   o.page,
		List:   o.list,
		Select: o.sel,
	}
	for _, p := range o.params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return req, fmt.Errorf("invalid --param %q: expected key=value", p)
		}
		if req.Params == nil {
			req.Params = make(map[string]string)
		}
		req.Params[key] = value
	}
	return req, nil
}

func printSnapshot(w io.Writer, snap dashboard.Snapshot) {
	fmt.Fprintf(w, "%s [%s]\n", snap.Title, snap.Status)
	if snap.Error != "" {
		fmt.Fprintf(w, "error: %s\n", snap.Error)
	}
	if snap.Filter != "" {
		fmt.Fprintf(w, "filter: %s\n", snap.Filter)
	}

	if len(snap.Facts) > 0 {
		fmt.Fprintln(w)
		printFacts(w, snap.Facts)
	}

	if d := snap.Detail; d != nil {
		fmt.Fprintf(w, "\nDetail %s [%s]\n", d.Key, d.Status)
		switch {
		case d.Error != "":
			fmt.Fprintf(w, "error: %s\n", d.Error)
		case !d.Found && d.Status == view.StatusReady:
			fmt.Fprintln(w, "not found")
		default:
			printFacts(w, d.Fields)
		}
	}

	if m := snap.Map; m != nil {
		fmt.Fprintf(w, "\nMap: %s (%.6f, %.6f) -> %s (%.6f, %.6f), zoom %d\n",
			m.FromLabel, m.From.Lat, m.From.Lon, m.ToLabel, m.To.Lat, m.To.Lon, m.Zoom)
	}

	for _, t := range snap.Tables {
		fmt.Fprintf(w, "\n%s (page %d of %d, %d items)\n", t.Title, t.Page.Index, t.Page.TotalPages, t.Page.TotalItems)
		printTable(w, t)
	}

	for _, s := range snap.Charts {
		fmt.Fprintf(w, "\nChart: %s\n", s.Name)
		tbl := table.New("Label", "Value").WithWriter(w)
		for _, p := range s.Points {
			tbl.AddRow(p.Label, fmt.Sprintf("%.2f", p.Value))
		}
		tbl.Print()
	}
}

func printFacts(w io.Writer, facts []present.Fact) {
	tbl := table.New("Field", "Value").WithWriter(w)
	for _, f := range facts {
		tbl.AddRow(f.Label, f.Value)
	}
	tbl.Print()
}

func printTable(w io.Writer, t present.Table) {
	headers := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c
	}
	tbl := table.New(headers...).WithWriter(w)
	for _, r := range t.Rows {
		cells := make([]interface{}, len(r.Cells))
		for i, c := range r.Cells {
			cells[i] = c
		}
		tbl.AddRow(cells...)
	}
	tbl.Print()
}

package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"monthcal/internal/layout"
	appLog "monthcal/internal/log"
	"monthcal/internal/source"
	"monthcal/internal/web"
)

type layoutFlags struct {
	month      string
	eventsFile string
	category   string
	status     string
	assignee   string
	search     string
	maxRows    int
	day        int
	asJSON     bool
}

func newLayoutCmd(g *globalFlags) *cobra.Command {
	f := &layoutFlags{}

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Lay out one month and print it",
		Long: `Load events once, lay out a month and print the result.

Examples:
  monthcal layout --month 2025-04
  monthcal layout --month 2025-04 --category Sprint --json
  monthcal layout --events ./events.yaml --month 2025-04 --day 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLayout(cmd, g, f)
		},
	}

	cmd.Flags().StringVar(&f.month, "month", "", `Month to lay out, "2006-01" (default current month)`)
	cmd.Flags().StringVar(&f.eventsFile, "events", "", "Read events only from this YAML file instead of the configured sources")
	cmd.Flags().StringVar(&f.category, "category", "", "Only events of this category")
	cmd.Flags().StringVar(&f.status, "status", "", "Only events with this status")
	cmd.Flags().StringVar(&f.assignee, "assignee", "", "Only events assigned to this person")
	cmd.Flags().StringVarP(&f.search, "query", "q", "", "Case-insensitive title search")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "Visible rows per day (default from config)")
	cmd.Flags().IntVar(&f.day, "day", 0, "Print the overflow detail of this day instead of the month")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the layout as JSON")

	return cmd
}

func runLayout(cmd *cobra.Command, g *globalFlags, f *layoutFlags) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	month := f.month
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	w, err := layout.ParseMonth(month)
	if err != nil {
		return err
	}

	maxRows := f.maxRows
	if maxRows <= 0 {
		maxRows = cfg.MaxVisibleRows
	}

	var src source.Source
	if f.eventsFile != "" {
		src = source.File{Path: f.eventsFile}
	} else if src, err = buildSource(cmd.Context(), cfg); err != nil {
		return err
	}

	events, err := src.Load(cmd.Context())
	if err != nil {
		if len(events) == 0 {
			return err
		}
		appLog.Warn("some sources failed; laying out partial event set", "err", err)
	}

	req := layout.Request{
		Year:  w.Year,
		Month: w.Month,
		Filter: layout.Filter{
			Category: f.category,
			Status:   f.status,
			Assignee: f.assignee,
			Search:   f.search,
		},
		MaxVisibleRows: maxRows,
	}

	out := cmd.OutOrStdout()

	if f.day != 0 {
		ov, err := layout.DayDetail(events, req, f.day)
		if err != nil {
			return err
		}
		printDay(out, w, ov)
		return nil
	}

	l, err := layout.Build(events, req)
	if err != nil {
		return err
	}
	if f.asJSON {
		return web.WriteLayoutJSON(out, l, 0)
	}
	printMonth(out, l)
	return nil
}

func printMonth(out io.Writer, l layout.MonthLayout) {
	fmt.Fprintf(out, "%s %d: %d events in %d rows, %d visible per day\n\n",
		l.Window.Month, l.Window.Year, l.EventCount, len(l.Rows), l.MaxVisibleRows)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tEVENTS")
	for _, row := range l.Rows {
		ids := make([]string, 0, len(row.Spans))
		for _, sp := range row.Spans {
			ids = append(ids, fmt.Sprintf("%s (%d-%d)", sp.Event.ID, sp.StartDay, sp.EndDay))
		}
		fmt.Fprintf(tw, "%d\t%s\n", row.Index, strings.Join(ids, ", "))
	}
	_ = tw.Flush()
	fmt.Fprintln(out)

	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDAY\tVISIBLE\tMORE")
	for _, cell := range l.Days {
		ids := make([]string, 0, len(cell.Segments))
		for _, seg := range cell.Segments {
			ids = append(ids, seg.Event.ID)
		}
		more := ""
		if cell.Overflow.ShowMore() {
			more = fmt.Sprintf("+%d more", cell.Overflow.Hidden)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			cell.Date.Format("2006-01-02"), cell.Date.Weekday().String()[:3], strings.Join(ids, " "), more)
	}
	_ = tw.Flush()
}

func printDay(out io.Writer, w layout.Window, ov layout.Overflow) {
	fmt.Fprintf(out, "%s: %d events, %d hidden\n",
		w.Date(ov.Day).Format("2006-01-02"), ov.Total, ov.Hidden)
	for _, ev := range ov.Events {
		fmt.Fprintf(out, "  %s\t%s\t%s\t%s\n", ev.ID, ev.Title, ev.Category, ev.Status)
	}
}

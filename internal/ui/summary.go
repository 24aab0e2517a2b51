package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/desertthunder/ytsubs/internal/models"
	"github.com/desertthunder/ytsubs/internal/services"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderReport writes the feed reader's report followed by the computed totals and
// the added and duplicated lines.
func RenderReport(w io.Writer, summary *services.ImportSummary) error {
	var b strings.Builder
	for _, line := range summary.Report {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	fmt.Fprintf(&b, "Total: %d\n", summary.Total)
	fmt.Fprintf(&b, "Duplicated: %d\n", len(summary.Duplicated))
	fmt.Fprintf(&b, "Added: %d\n", len(summary.Added))
	for _, line := range summary.Added {
		fmt.Fprintf(&b, "%s\n", line)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderSummary writes a table of sync counts.
func RenderSummary(w io.Writer, subscriptions int, summary *services.ImportSummary, elapsed time.Duration) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.SetTitle("Sync Summary")
	t.AppendHeader(table.Row{"", "Count"})
	t.AppendRows([]table.Row{
		{"Subscriptions", subscriptions},
		{"Events", summary.Total},
		{"Added", len(summary.Added)},
		{"Duplicated", len(summary.Duplicated)},
	})
	t.AppendFooter(table.Row{"Elapsed", elapsed.Round(time.Millisecond).String()})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight}})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// RenderSubscriptions writes subs as a numbered table.
func RenderSubscriptions(w io.Writer, subs []models.Subscription) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"#", "Title", "Channel ID"})
	for i, sub := range subs {
		t.AppendRow(table.Row{i + 1, sub.Title, sub.ChannelID})
	}
	t.AppendFooter(table.Row{"", "Total", len(subs)})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

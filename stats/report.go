package stats

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Render writes a result table for a set of finished runs.
func Render(w io.Writer, all []*PolicyStats) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{
		"policy", "requests", "hits", "misses", "evictions",
		"hit ratio", "window Δ", "footprint",
	})
	for _, s := range all {
		tw.AppendRow(table.Row{
			s.Name(),
			humanize.Comma(int64(s.Requests())),
			humanize.Comma(int64(s.Hits())),
			humanize.Comma(int64(s.Misses())),
			humanize.Comma(int64(s.Evictions())),
			fmt.Sprintf("%.4f", s.Ratio()),
			fmt.Sprintf("%+.4f", s.PercentAdapted()),
			humanize.IBytes(s.Footprint()),
		})
	}
	tw.Render()
}

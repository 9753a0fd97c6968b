package present

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const (
	textRowLimit = 20
	barWidth     = 30
)

// WriteText renders v for a terminal.
func WriteText(w io.Writer, v View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "Real-Time Earthquake Geospatial Analytics")
	fmt.Fprintf(tw, "%s\n", Caption(v.Controls))
	if !v.FetchedAt.IsZero() {
		fmt.Fprintf(tw, "fetched %s UTC  cycle %s\n", v.FetchedAt.UTC().Format("2006-01-02 15:04:05"), v.CycleID)
	}
	fmt.Fprintln(tw)

	switch v.Status {
	case StatusError:
		fmt.Fprintf(tw, "ERROR: %s\n", v.Error)
		return tw.Flush()
	case StatusEmpty:
		fmt.Fprintln(tw, "No earthquake data available for the selected filters.")
		fmt.Fprintln(tw)
	}

	fmt.Fprintln(tw, "Summary")
	fmt.Fprintf(tw, "  Total events\t%d\n", v.Summary.Count)
	fmt.Fprintf(tw, "  Max magnitude\t%s\n", v.Summary.MaxMagnitudeText())
	fmt.Fprintf(tw, "  Mean depth (km)\t%s\n", v.Summary.MeanDepthText())
	if v.Dropped > 0 {
		fmt.Fprintf(tw, "  Dropped records\t%d\n", v.Dropped)
	}
	if v.Status == StatusEmpty {
		return tw.Flush()
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Descriptive statistics")
	fmt.Fprintf(tw, "  \t%s\n", strings.Join(StatsHeader, "\t"))
	for _, s := range v.Stats {
		fmt.Fprintf(tw, "  %s\t%s\n", s.Column, strings.Join(s.Cells(), "\t"))
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Map: %d markers\n", len(v.Markers))
	if n := len(v.Timeline); n > 0 {
		fmt.Fprintf(tw, "Timeline: %d points from %s to %s\n", n,
			v.Timeline[0].Time.Format("2006-01-02 15:04"),
			v.Timeline[n-1].Time.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(tw)

	if len(v.Histogram) > 0 {
		fmt.Fprintln(tw, "Magnitude distribution")
		peak := 0
		for _, b := range v.Histogram {
			peak = max(peak, b.Count)
		}
		for _, b := range v.Histogram {
			bar := 0
			if peak > 0 {
				bar = b.Count * barWidth / peak
			}
			fmt.Fprintf(tw, "  %.2f-%.2f\t%s %d\n", b.Lower, b.Upper, strings.Repeat("#", bar), b.Count)
		}
		fmt.Fprintln(tw)
	}

	fmt.Fprintln(tw, "Recent events")
	fmt.Fprintln(tw, "  time\tmag\tdepth (km)\tplace")
	for i, r := range v.Rows {
		if i == textRowLimit {
			fmt.Fprintf(tw, "  ... %d more\n", len(v.Rows)-textRowLimit)
			break
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", r.TimeText(), r.MagnitudeText(), r.DepthText(), r.Place)
	}

	return tw.Flush()
}

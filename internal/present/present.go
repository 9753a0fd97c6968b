// Package present builds the dashboard view from one cycle's table.
package present

import (
	"context"
	"fmt"
	"math"

	"github.com/mr1hm/go-quake-dashboard/internal/frame"
	"github.com/mr1hm/go-quake-dashboard/internal/models"
)

// HistogramBins is the number of magnitude histogram bins.
const HistogramBins = 25

// Table is the read side of a refresh cycle's frame.
type Table interface {
	Summary(ctx context.Context) (frame.Summary, error)
	Values(ctx context.Context, col frame.Column) ([]float64, error)
	Events(ctx context.Context, order frame.Order) ([]models.EarthquakeEvent, error)
}

// Build renders the success or empty view from t.
func Build(ctx context.Context, t Table, controls models.Controls) (View, error) {
	summary, err := t.Summary(ctx)
	if err != nil {
		return View{}, err
	}
	mags, err := t.Values(ctx, frame.ColumnMagnitude)
	if err != nil {
		return View{}, err
	}
	depths, err := t.Values(ctx, frame.ColumnDepth)
	if err != nil {
		return View{}, err
	}
	inFeedOrder, err := t.Events(ctx, frame.FeedOrder)
	if err != nil {
		return View{}, err
	}
	byTime, err := t.Events(ctx, frame.TimeAscending)
	if err != nil {
		return View{}, err
	}

	v := emptyView(controls)
	v.Summary = Summary{
		Count:        summary.Count,
		MaxMagnitude: summary.MaxMagnitude,
		MeanDepth:    summary.MeanDepth,
	}

	if summary.Count == 0 {
		v.Status = StatusEmpty
		return v, nil
	}

	v.Status = StatusOK
	v.Stats = []ColumnStats{
		describe(string(frame.ColumnMagnitude), mags),
		describe(string(frame.ColumnDepth), depths),
	}
	v.Histogram = histogram(mags, HistogramBins)

	for _, e := range inFeedOrder {
		v.Markers = append(v.Markers, marker(e))
		v.Rows = append(v.Rows, row(e))
	}
	for _, e := range byTime {
		if e.HasTime() && e.Magnitude != nil {
			v.Timeline = append(v.Timeline, Point{Time: e.Time, Magnitude: *e.Magnitude})
		}
	}

	return v, nil
}

// Failed renders the error view: a message and an empty dataset, never stale rows.
func Failed(controls models.Controls, message string) View {
	v := emptyView(controls)
	v.Status = StatusError
	v.Error = message
	return v
}

func emptyView(controls models.Controls) View {
	return View{
		Controls:  controls,
		Stats:     []ColumnStats{},
		Markers:   []Marker{},
		Histogram: []Bin{},
		Timeline:  []Point{},
		Rows:      []Row{},
	}
}

// MarkerRadius grows linearly with magnitude; absent and negative magnitudes
// get the minimum radius.
func MarkerRadius(mag *float64) float64 {
	if mag == nil || *mag < 0 {
		return 2
	}
	return 2 + 2*(*mag)
}

var magnitudeColors = []struct {
	below float64
	color string
}{
	{3, "#2c7bb6"},
	{4, "#abd9e9"},
	{5, "#fdae61"},
	{6, "#f46d43"},
}

const (
	strongestColor = "#d7191c"
	unknownColor   = "#9e9e9e"
)

func MarkerColor(mag *float64) string {
	if mag == nil {
		return unknownColor
	}
	for _, step := range magnitudeColors {
		if *mag < step.below {
			return step.color
		}
	}
	return strongestColor
}

func marker(e models.EarthquakeEvent) Marker {
	return Marker{
		ID:        e.ID,
		Latitude:  e.Latitude,
		Longitude: e.Longitude,
		Radius:    MarkerRadius(e.Magnitude),
		Color:     MarkerColor(e.Magnitude),
		Place:     e.Place,
		Magnitude: e.Magnitude,
		Depth:     e.Depth,
	}
}

func row(e models.EarthquakeEvent) Row {
	r := Row{
		ID:        e.ID,
		Place:     e.Place,
		Magnitude: e.Magnitude,
		Depth:     e.Depth,
		Latitude:  e.Latitude,
		Longitude: e.Longitude,
		Tsunami:   e.Tsunami,
		Felt:      e.Felt,
	}
	if e.HasTime() {
		t := e.Time
		r.Time = &t
	}
	return r
}

// histogram buckets sorted values into n equal-width bins over [min, max].
func histogram(sorted []float64, n int) []Bin {
	if len(sorted) == 0 {
		return []Bin{}
	}

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []Bin{{Lower: lo, Upper: hi, Count: len(sorted)}}
	}

	width := (hi - lo) / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Lower = lo + float64(i)*width
		bins[i].Upper = lo + float64(i+1)*width
	}
	bins[n-1].Upper = hi

	for _, v := range sorted {
		idx := int((v - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		bins[idx].Count++
	}
	return bins
}

// describe computes count, mean, sample std and linearly interpolated
// quartiles over sorted values.
func describe(column string, sorted []float64) ColumnStats {
	s := ColumnStats{Column: column, Count: len(sorted)}
	n := len(sorted)
	if n == 0 {
		return s
	}

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	s.Mean = &mean
	s.Min = ptr(sorted[0])
	s.Q25 = ptr(quantile(sorted, 0.25))
	s.Median = ptr(quantile(sorted, 0.5))
	s.Q75 = ptr(quantile(sorted, 0.75))
	s.Max = ptr(sorted[n-1])

	if n > 1 {
		var sq float64
		for _, v := range sorted {
			sq += (v - mean) * (v - mean)
		}
		s.Std = ptr(math.Sqrt(sq / float64(n-1)))
	}
	return s
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func ptr(v float64) *float64 { return &v }

// Caption describes the controls of a view in one line.
func Caption(c models.Controls) string {
	window := "none"
	if c.WindowHours > 0 {
		window = fmt.Sprintf("last %dh", c.WindowHours)
	}
	return fmt.Sprintf("min magnitude %.1f · %d events · window %s", c.MinMagnitude, c.Limit, window)
}

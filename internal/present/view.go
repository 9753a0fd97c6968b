package present

import (
	"fmt"
	"time"

	"github.com/mr1hm/go-quake-dashboard/internal/models"
)

type Status string

const (
	StatusOK    Status = "ok"
	StatusEmpty Status = "empty"
	StatusError Status = "error"
)

const noneText = "none"

// View is everything one refresh cycle renders. It replaces the previous
// view wholesale.
type View struct {
	CycleID   string          `json:"cycle_id"`
	FetchedAt time.Time       `json:"fetched_at"`
	Controls  models.Controls `json:"controls"`
	Status    Status          `json:"status"`
	Error     string          `json:"error,omitempty"`
	Dropped   int             `json:"dropped"`
	Summary   Summary         `json:"summary"`
	Stats     []ColumnStats   `json:"stats"`
	Markers   []Marker        `json:"markers"`
	Histogram []Bin           `json:"histogram"`
	Timeline  []Point         `json:"timeline"`
	Rows      []Row           `json:"rows"`
}

type Summary struct {
	Count        int      `json:"count"`
	MaxMagnitude *float64 `json:"max_magnitude"`
	MeanDepth    *float64 `json:"mean_depth_km"`
}

func (s Summary) MaxMagnitudeText() string { return formatOptional(s.MaxMagnitude) }
func (s Summary) MeanDepthText() string    { return formatOptional(s.MeanDepth) }

// ColumnStats mirrors a describe() row. Std needs two values, everything
// else needs one; missing statistics are nil.
type ColumnStats struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   *float64 `json:"mean"`
	Std    *float64 `json:"std"`
	Min    *float64 `json:"min"`
	Q25    *float64 `json:"p25"`
	Median *float64 `json:"p50"`
	Q75    *float64 `json:"p75"`
	Max    *float64 `json:"max"`
}

// Cells returns the statistics formatted in display order.
func (c ColumnStats) Cells() []string {
	cells := []string{fmt.Sprintf("%d", c.Count)}
	for _, v := range []*float64{c.Mean, c.Std, c.Min, c.Q25, c.Median, c.Q75, c.Max} {
		cells = append(cells, formatOptional(v))
	}
	return cells
}

// StatsHeader labels the columns returned by ColumnStats.Cells.
var StatsHeader = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

type Marker struct {
	ID        string   `json:"id"`
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lon"`
	Radius    float64  `json:"radius"`
	Color     string   `json:"color"`
	Place     string   `json:"place"`
	Magnitude *float64 `json:"magnitude"`
	Depth     *float64 `json:"depth_km"`
}

// Bin is a histogram bucket covering [Lower, Upper); the last bin is closed.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type Point struct {
	Time      time.Time `json:"time"`
	Magnitude float64   `json:"magnitude"`
}

type Row struct {
	ID        string     `json:"id"`
	Time      *time.Time `json:"time"`
	Place     string     `json:"place"`
	Magnitude *float64   `json:"magnitude"`
	Depth     *float64   `json:"depth_km"`
	Latitude  float64    `json:"lat"`
	Longitude float64    `json:"lon"`
	Tsunami   bool       `json:"tsunami"`
	Felt      *int       `json:"felt"`
}

func (r Row) TimeText() string {
	if r.Time == nil {
		return noneText
	}
	return r.Time.Format("2006-01-02 15:04:05")
}

func (r Row) MagnitudeText() string { return formatOptional(r.Magnitude) }
func (r Row) DepthText() string     { return formatOptional(r.Depth) }

func (r Row) FeltText() string {
	if r.Felt == nil {
		return ""
	}
	return fmt.Sprintf("%d", *r.Felt)
}

func (v View) IsError() bool { return v.Status == StatusError }
func (v View) IsEmpty() bool { return v.Status == StatusEmpty }

func formatOptional(v *float64) string {
	if v == nil {
		return noneText
	}
	return fmt.Sprintf("%.2f", *v)
}

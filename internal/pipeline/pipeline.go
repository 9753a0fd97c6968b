// Package pipeline runs one refresh cycle: fetch, transform, load, present.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-quake-dashboard/internal/config"
	"github.com/mr1hm/go-quake-dashboard/internal/frame"
	"github.com/mr1hm/go-quake-dashboard/internal/ingestion"
	"github.com/mr1hm/go-quake-dashboard/internal/models"
	"github.com/mr1hm/go-quake-dashboard/internal/observability"
	"github.com/mr1hm/go-quake-dashboard/internal/present"
	"github.com/mr1hm/go-quake-dashboard/internal/transform"
)

type Fetcher interface {
	Fetch(ctx context.Context, q ingestion.Query) (ingestion.Feed, error)
}

type Pipeline struct {
	fetcher  Fetcher
	defaults models.Controls
	maxLimit int
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger
}

func New(fetcher Fetcher, cfg config.ControlsConfig, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		defaults: models.Controls{
			MinMagnitude: cfg.DefaultMinMagnitude,
			Limit:        cfg.DefaultLimit,
		},
		maxLimit: cfg.MaxLimit,
		clock:    clock,
		metrics:  metrics,
		logger:   logger,
	}
}

// Defaults returns the controls used when the user has not chosen any.
func (p *Pipeline) Defaults() models.Controls {
	return p.defaults
}

// Refresh runs a full cycle for controls and returns the view to render.
// Any failure yields the error view; partial data is never returned.
func (p *Pipeline) Refresh(ctx context.Context, controls models.Controls) present.View {
	start := p.clock.Now()
	controls = controls.Normalize(p.defaults, p.maxLimit)
	cycleID := uuid.NewString()
	logger := p.logger.With("cycle_id", cycleID)

	view, dropped, err := p.run(ctx, controls, start, logger)
	if err != nil {
		logger.Warn("refresh failed", "error", err, "min_magnitude", controls.MinMagnitude, "limit", controls.Limit)
		view = present.Failed(controls, ingestion.UserMessage(err))
	}

	view.CycleID = cycleID
	view.FetchedAt = start.UTC()
	view.Dropped = dropped

	p.metrics.RefreshCycles.WithLabelValues(outcome(view.Status)).Inc()
	p.metrics.RefreshDuration.Observe(p.clock.Since(start).Seconds())
	p.metrics.RowsDropped.Add(float64(dropped))
	p.metrics.EventsRendered.Set(float64(view.Summary.Count))

	if err == nil {
		logger.Info("refresh complete", "status", view.Status, "count", view.Summary.Count, "dropped", dropped)
	}
	return view
}

func (p *Pipeline) run(ctx context.Context, controls models.Controls, now time.Time, logger *slog.Logger) (present.View, int, error) {
	q := ingestion.Query{
		MinMagnitude: controls.MinMagnitude,
		Limit:        controls.Limit,
	}
	if controls.WindowHours > 0 {
		since := now.Add(-time.Duration(controls.WindowHours) * time.Hour).UTC()
		q.StartTime = &since
	}

	fetchStart := p.clock.Now()
	feed, err := p.fetcher.Fetch(ctx, q)
	p.metrics.FetchDuration.Observe(p.clock.Since(fetchStart).Seconds())
	if err != nil {
		return present.View{}, 0, fmt.Errorf("fetch: %w", err)
	}

	res := transform.Events(feed.Features)
	if res.Dropped > 0 {
		logger.Warn("dropped records with unparseable coordinates", "dropped", res.Dropped, "kept", len(res.Events))
	}

	f, err := frame.New(ctx)
	if err != nil {
		return present.View{}, res.Dropped, err
	}
	defer f.Close()

	if err := f.Load(ctx, res.Events); err != nil {
		return present.View{}, res.Dropped, err
	}

	view, err := present.Build(ctx, f, controls)
	if err != nil {
		return present.View{}, res.Dropped, fmt.Errorf("error building view: %w", err)
	}
	return view, res.Dropped, nil
}

func outcome(s present.Status) string {
	switch s {
	case present.StatusOK:
		return observability.OutcomeOK
	case present.StatusEmpty:
		return observability.OutcomeEmpty
	default:
		return observability.OutcomeError
	}
}

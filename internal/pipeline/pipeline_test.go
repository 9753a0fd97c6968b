package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"

	"github.com/mr1hm/go-quake-dashboard/internal/config"
	"github.com/mr1hm/go-quake-dashboard/internal/ingestion"
	"github.com/mr1hm/go-quake-dashboard/internal/logging"
	"github.com/mr1hm/go-quake-dashboard/internal/models"
	"github.com/mr1hm/go-quake-dashboard/internal/observability"
	"github.com/mr1hm/go-quake-dashboard/internal/present"
)

const scenarioFeed = `{
  "type": "FeatureCollection",
  "metadata": {"generated": 1718020800000, "title": "USGS Earthquakes"},
  "features": [
    {"id": "ci1", "properties": {"mag": 2.1, "place": "Ridgecrest, CA", "time": 1717980000000}, "geometry": {"coordinates": [-117.6, 35.7, 5.0]}},
    {"id": "us2", "properties": {"mag": 5.4, "place": "Near Tokyo", "time": 1717990000000}, "geometry": {"coordinates": [139.6, 35.6, 10.2]}},
    {"id": "ak3", "properties": {"mag": 3.3, "place": "Anchorage, AK", "time": 1717970000000}, "geometry": {"coordinates": [-150.1, 61.2]}}
  ]
}`

var testControlsConfig = config.ControlsConfig{
	DefaultMinMagnitude: 2.5,
	DefaultLimit:        100,
	MaxLimit:            500,
}

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	pipeline *Pipeline
	metrics  *observability.Metrics
	requests chan *http.Request
}

func newFixture(t *testing.T, status int, body string) *fixture {
	t.Helper()

	requests := make(chan *http.Request, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- r
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	metrics := observability.NewMetricsForTesting()
	client := ingestion.NewClient(srv.URL, 2*time.Second, 1000, logging.Discard())
	p := New(client, testControlsConfig, clockwork.NewFakeClockAt(now), metrics, logging.Discard())

	return &fixture{pipeline: p, metrics: metrics, requests: requests}
}

func TestRefresh_Scenario(t *testing.T) {
	fx := newFixture(t, http.StatusOK, scenarioFeed)

	v := fx.pipeline.Refresh(context.Background(), models.Controls{MinMagnitude: 2.0, Limit: 100})

	assert.Equal(t, present.StatusOK, v.Status)
	assert.Equal(t, 3, v.Summary.Count)
	assert.Equal(t, "5.40", v.Summary.MaxMagnitudeText())
	assert.Equal(t, "7.60", v.Summary.MeanDepthText())
	assert.Len(t, v.Markers, 3)
	assert.Len(t, v.Rows, 3)
	assert.NotEmpty(t, v.CycleID)
	assert.Equal(t, now, v.FetchedAt)

	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.RefreshCycles.WithLabelValues(observability.OutcomeOK)))
	assert.Equal(t, 3.0, testutil.ToFloat64(fx.metrics.EventsRendered))
}

func TestRefresh_ServiceUnavailable(t *testing.T) {
	fx := newFixture(t, http.StatusServiceUnavailable, "down for maintenance")

	v := fx.pipeline.Refresh(context.Background(), fx.pipeline.Defaults())

	assert.Equal(t, present.StatusError, v.Status)
	assert.Contains(t, v.Error, "503")
	assert.Empty(t, v.Markers)
	assert.Empty(t, v.Rows)
	assert.Zero(t, v.Summary.Count)

	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.RefreshCycles.WithLabelValues(observability.OutcomeError)))
	assert.Zero(t, testutil.ToFloat64(fx.metrics.EventsRendered))
}

func TestRefresh_MalformedFeed(t *testing.T) {
	fx := newFixture(t, http.StatusOK, "")

	v := fx.pipeline.Refresh(context.Background(), fx.pipeline.Defaults())

	assert.True(t, v.IsError())
	assert.Equal(t, "The earthquake feed returned a response that could not be read.", v.Error)
}

func TestRefresh_NonNumericLatitude(t *testing.T) {
	fx := newFixture(t, http.StatusOK, `{"features": [
		{"id": "good", "properties": {"mag": 3.1}, "geometry": {"coordinates": [10, 20, 5]}},
		{"id": "bad", "properties": {"mag": 6.0}, "geometry": {"coordinates": [10, "twenty", 5]}},
		{"id": "also-good", "properties": {"mag": 2.7}, "geometry": {"coordinates": [11, 21, 7]}}
	]}`)

	v := fx.pipeline.Refresh(context.Background(), fx.pipeline.Defaults())

	assert.Equal(t, present.StatusOK, v.Status)
	assert.Equal(t, 2, v.Summary.Count)
	assert.Equal(t, 1, v.Dropped)
	assert.Equal(t, "3.10", v.Summary.MaxMagnitudeText())
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.RowsDropped))
}

func TestRefresh_Empty(t *testing.T) {
	fx := newFixture(t, http.StatusOK, `{"features": []}`)

	v := fx.pipeline.Refresh(context.Background(), fx.pipeline.Defaults())

	assert.Equal(t, present.StatusEmpty, v.Status)
	assert.Empty(t, v.Error)
	assert.Empty(t, v.Markers)
	assert.Empty(t, v.Histogram)
	assert.Equal(t, "none", v.Summary.MaxMagnitudeText())
	assert.Equal(t, 1.0, testutil.ToFloat64(fx.metrics.RefreshCycles.WithLabelValues(observability.OutcomeEmpty)))
}

func TestRefresh_QueryFromControls(t *testing.T) {
	fx := newFixture(t, http.StatusOK, `{"features": []}`)

	v := fx.pipeline.Refresh(context.Background(), models.Controls{MinMagnitude: 4.5, Limit: 250, WindowHours: 6})

	r := <-fx.requests
	q := r.URL.Query()
	assert.Equal(t, "4.5", q.Get("minmagnitude"))
	assert.Equal(t, "250", q.Get("limit"))
	assert.Equal(t, "2024-06-10T06:00:00", q.Get("starttime"))
	assert.Equal(t, 6, v.Controls.WindowHours)
}

func TestRefresh_InvalidControlsFallBack(t *testing.T) {
	fx := newFixture(t, http.StatusOK, `{"features": []}`)

	v := fx.pipeline.Refresh(context.Background(), models.Controls{MinMagnitude: 42, Limit: 0})

	r := <-fx.requests
	assert.Equal(t, "2.5", r.URL.Query().Get("minmagnitude"))
	assert.Equal(t, "100", r.URL.Query().Get("limit"))
	assert.Equal(t, models.Controls{MinMagnitude: 2.5, Limit: 100}, v.Controls)
}

func TestRefresh_Idempotent(t *testing.T) {
	fx := newFixture(t, http.StatusOK, scenarioFeed)
	controls := models.Controls{MinMagnitude: 2.0, Limit: 100}

	first := fx.pipeline.Refresh(context.Background(), controls)
	second := fx.pipeline.Refresh(context.Background(), controls)

	assert.NotEqual(t, first.CycleID, second.CycleID)
	if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(present.View{}, "CycleID")); diff != "" {
		t.Errorf("refresh not idempotent (-first +second):\n%s", diff)
	}
}

// filteringFeed honours minmagnitude the way the real service does.
type filteringFeed struct {
	mags []float64
}

func (f filteringFeed) Fetch(_ context.Context, q ingestion.Query) (ingestion.Feed, error) {
	parts := make([]string, 0, len(f.mags))
	for i, m := range f.mags {
		if m >= q.MinMagnitude {
			parts = append(parts, fmt.Sprintf(`{"id": "e%d", "properties": {"mag": %s}, "geometry": {"coordinates": [1, 2]}}`,
				i, strconv.FormatFloat(m, 'f', -1, 64)))
		}
	}
	return ingestion.Feed{Features: gjson.Parse("[" + strings.Join(parts, ",") + "]").Array()}, nil
}

func TestRefresh_MonotonicInMinMagnitude(t *testing.T) {
	feed := filteringFeed{mags: []float64{1.2, 2.6, 3.3, 4.8, 5.1, 6.7}}
	p := New(feed, testControlsConfig, clockwork.NewFakeClockAt(now), observability.NewMetricsForTesting(), logging.Discard())

	prev := -1
	for _, m := range []float64{7, 6, 5, 4, 3, 2, 1, 0} {
		v := p.Refresh(context.Background(), models.Controls{MinMagnitude: m, Limit: 100})
		if prev >= 0 {
			assert.GreaterOrEqual(t, v.Summary.Count, prev, "min magnitude %v", m)
		}
		prev = v.Summary.Count
	}
	assert.Equal(t, 6, prev)
}

func TestRefresh_OverflowingMagnitudeIsAbsent(t *testing.T) {
	fx := newFixture(t, http.StatusOK, `{"features": [
		{"id": "a", "properties": {"mag": 2.0}, "geometry": {"coordinates": [10, 20, 5]}},
		{"id": "b", "properties": {"mag": 1e999}, "geometry": {"coordinates": [11, 21, 1e999]}}
	]}`)

	v := fx.pipeline.Refresh(context.Background(), fx.pipeline.Defaults())

	assert.Equal(t, present.StatusOK, v.Status)
	assert.Equal(t, 2, v.Summary.Count)
	assert.Equal(t, "2.00", v.Summary.MaxMagnitudeText())
	assert.Equal(t, "5.00", v.Summary.MeanDepthText())
	assert.Len(t, v.Histogram, 1)

	_, err := json.Marshal(v)
	assert.NoError(t, err)
}

func TestRefresh_NaNMinMagnitudeFallsBack(t *testing.T) {
	fx := newFixture(t, http.StatusOK, `{"features": []}`)

	v := fx.pipeline.Refresh(context.Background(), models.Controls{MinMagnitude: math.NaN(), Limit: 50})

	r := <-fx.requests
	assert.Equal(t, "2.5", r.URL.Query().Get("minmagnitude"))
	assert.Equal(t, 2.5, v.Controls.MinMagnitude)
}

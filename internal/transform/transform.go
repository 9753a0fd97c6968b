// Package transform turns raw feed features into EarthquakeEvent rows.
//
// A feature is dropped, never repaired, when its longitude or latitude is
// missing, non-numeric or out of range. Every other field degrades to
// "absent": depth and magnitude become nil, an unusable time stays zero.
package transform

import (
	"math"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mr1hm/go-quake-dashboard/internal/models"
)

// Result is the transformer output for one refresh cycle.
type Result struct {
	Events  []models.EarthquakeEvent
	Dropped int
}

// Events converts features in order. len(Result.Events) never exceeds len(features).
func Events(features []gjson.Result) Result {
	res := Result{
		Events: make([]models.EarthquakeEvent, 0, len(features)),
	}

	for _, f := range features {
		e, ok := event(f)
		if !ok {
			res.Dropped++
			continue
		}
		res.Events = append(res.Events, e)
	}

	return res
}

func event(f gjson.Result) (models.EarthquakeEvent, bool) {
	coords := f.Get("geometry.coordinates")
	lon, ok := number(coords.Get("0"))
	if !ok || lon < -180 || lon > 180 {
		return models.EarthquakeEvent{}, false
	}
	lat, ok := number(coords.Get("1"))
	if !ok || lat < -90 || lat > 90 {
		return models.EarthquakeEvent{}, false
	}

	props := f.Get("properties")
	e := models.EarthquakeEvent{
		ID:        f.Get("id").String(),
		Latitude:  lat,
		Longitude: lon,
		Place:     props.Get("place").String(),
		Tsunami:   props.Get("tsunami").Int() == 1,
	}

	if depth, ok := number(coords.Get("2")); ok {
		e.Depth = &depth
	}
	if mag, ok := number(props.Get("mag")); ok {
		e.Magnitude = &mag
	}
	if ms, ok := number(props.Get("time")); ok {
		e.Time = time.UnixMilli(int64(ms)).UTC()
	}
	if felt := props.Get("felt"); felt.Type == gjson.Number {
		n := int(felt.Int())
		e.Felt = &n
	}

	return e, true
}

// number accepts finite JSON numbers only; numeric strings, nulls and
// overflowing literals such as 1e999 are absent.
func number(r gjson.Result) (float64, bool) {
	if r.Type != gjson.Number {
		return 0, false
	}
	v := r.Float()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

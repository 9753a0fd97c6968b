package api

import (
	"time"

	"github.com/mr1hm/go-quake-dashboard/internal/present"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(rows []present.Row) FeatureCollection {
	features := make([]Feature, 0, len(rows))

	for _, r := range rows {
		coords := []float64{r.Longitude, r.Latitude}
		if r.Depth != nil {
			coords = append(coords, *r.Depth)
		}

		var occurred any
		if r.Time != nil {
			occurred = r.Time.UTC().Format(time.RFC3339)
		}

		f := Feature{
			Type: "Feature",
			ID:   r.ID,
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: coords,
			},
			Properties: map[string]any{
				"place":     r.Place,
				"magnitude": r.Magnitude,
				"depth_km":  r.Depth,
				"time":      occurred,
				"tsunami":   r.Tsunami,
				"felt":      r.Felt,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

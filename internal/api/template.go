package api

import (
	"html/template"
)

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Real-Time Earthquake Geospatial Analytics</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; display: flex; color: #222; }
  aside { width: 240px; padding: 1rem; background: #f4f5f7; min-height: 100vh; box-sizing: border-box; }
  main { flex: 1; padding: 1rem 2rem; min-width: 0; }
  label { display: block; margin-top: 1rem; font-size: .9rem; }
  input, select, button { width: 100%; margin-top: .25rem; }
  button { margin-top: 1.5rem; padding: .5rem; }
  .cards { display: flex; gap: 1rem; }
  .card { flex: 1; padding: 1rem; border: 1px solid #ddd; border-radius: 6px; }
  .card .value { font-size: 1.8rem; font-weight: 600; }
  .error { padding: 1rem; background: #fdecea; border: 1px solid #f5c2c0; border-radius: 6px; }
  .warning { padding: 1rem; background: #fff8e1; border: 1px solid #ffe08a; border-radius: 6px; }
  #map { height: 450px; margin-top: 1rem; }
  .charts { display: flex; gap: 1rem; }
  .charts > div { flex: 1; height: 350px; }
  table { border-collapse: collapse; width: 100%; font-size: .85rem; }
  th, td { border-bottom: 1px solid #eee; padding: .3rem .5rem; text-align: left; }
  .caption { color: #666; font-size: .85rem; }
</style>
</head>
<body>
<aside>
  <h3>Controls</h3>
  <form method="get" action="/">
    <label>Minimum magnitude: <output id="mag-out">{{printf "%.1f" .View.Controls.MinMagnitude}}</output>
      <input type="range" name="min_magnitude" min="0" max="8" step="0.1" value="{{.View.Controls.MinMagnitude}}"
             oninput="document.getElementById('mag-out').value = Number(this.value).toFixed(1)">
    </label>
    <label>Number of events
      <select name="limit">
        {{range .LimitChoices}}<option value="{{.}}"{{if eq . $.View.Controls.Limit}} selected{{end}}>{{.}}</option>{{end}}
      </select>
    </label>
    <label>Time window (hours, 0 for none)
      <input type="number" name="window_hours" min="0" value="{{.View.Controls.WindowHours}}">
    </label>
    <button type="submit">Refresh</button>
  </form>
</aside>
<main>
  <h1>Real-Time Earthquake Geospatial Analytics</h1>
  <p class="caption">{{.Caption}}{{if not .View.FetchedAt.IsZero}} · fetched {{.View.FetchedAt.Format "2006-01-02 15:04:05"}} UTC{{end}}</p>

  {{if .View.IsError}}
  <div class="error">{{.View.Error}}</div>
  {{else}}
  {{if .View.IsEmpty}}<div class="warning">No earthquake data available for the selected filters.</div>{{end}}

  <h2>Summary</h2>
  <div class="cards">
    <div class="card"><div>Total events</div><div class="value">{{.View.Summary.Count}}</div></div>
    <div class="card"><div>Max magnitude</div><div class="value">{{.View.Summary.MaxMagnitudeText}}</div></div>
    <div class="card"><div>Mean depth (km)</div><div class="value">{{.View.Summary.MeanDepthText}}</div></div>
  </div>
  {{if .View.Dropped}}<p class="caption">{{.View.Dropped}} records without usable coordinates were left out.</p>{{end}}

  {{if not .View.IsEmpty}}
  <h2>Descriptive statistics</h2>
  <table>
    <tr><th></th>{{range .StatsHeader}}<th>{{.}}</th>{{end}}</tr>
    {{range .View.Stats}}<tr><th>{{.Column}}</th>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>{{end}}
  </table>

  <h2>Earthquake map</h2>
  <div id="map"></div>

  <div class="charts">
    <div id="histogram"></div>
    <div id="timeline"></div>
  </div>

  <details>
    <summary>Raw data</summary>
    <table>
      <tr><th>time (UTC)</th><th>place</th><th>magnitude</th><th>depth (km)</th><th>lat</th><th>lon</th><th>tsunami</th><th>felt</th></tr>
      {{range .View.Rows}}<tr><td>{{.TimeText}}</td><td>{{.Place}}</td><td>{{.MagnitudeText}}</td><td>{{.DepthText}}</td><td>{{.Latitude}}</td><td>{{.Longitude}}</td><td>{{if .Tsunami}}yes{{end}}</td><td>{{.FeltText}}</td></tr>{{end}}
    </table>
  </details>

  <script>
    const markers = {{.View.Markers}};
    const bins = {{.View.Histogram}};
    const timeline = {{.View.Timeline}};

    const map = L.map("map").setView([20, 0], 2);
    L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
      attribution: "&copy; OpenStreetMap contributors"
    }).addTo(map);

    const fmt = v => v === null ? "none" : v.toFixed(2);
    for (const m of markers) {
      const popup = document.createElement("div");
      for (const line of ["Location: " + m.place, "Magnitude: " + fmt(m.magnitude), "Depth (km): " + fmt(m.depth_km)]) {
        const p = document.createElement("div");
        p.textContent = line;
        popup.appendChild(p);
      }
      L.circleMarker([m.lat, m.lon], {
        radius: m.radius, color: m.color, fillColor: m.color, fillOpacity: 0.7, weight: 1
      }).bindPopup(popup).addTo(map);
    }

    Plotly.newPlot("histogram", [{
      type: "bar",
      x: bins.map(b => (b.lower + b.upper) / 2),
      y: bins.map(b => b.count),
      width: bins.map(b => Math.max(b.upper - b.lower, 0.05))
    }], { title: "Magnitude distribution", xaxis: { title: "magnitude" }, yaxis: { title: "count" } });

    Plotly.newPlot("timeline", [{
      type: "scatter",
      mode: "lines+markers",
      x: timeline.map(p => p.time),
      y: timeline.map(p => p.magnitude)
    }], { title: "Earthquake magnitude over time", xaxis: { title: "time" }, yaxis: { title: "magnitude" } });
  </script>
  {{end}}
  {{end}}
</main>
</body>
</html>
`

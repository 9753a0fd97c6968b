// Package frame holds the tabular structure of one refresh cycle: an
// in-memory SQLite table that is loaded once, queried by the presenter and
// closed when the cycle ends. Nothing outlives the cycle.
package frame

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-quake-dashboard/internal/models"
)

type Order int

const (
	FeedOrder     Order = iota // as returned by the feed
	TimeAscending              // oldest first, unknown times last
)

type Column string

const (
	ColumnMagnitude Column = "magnitude"
	ColumnDepth     Column = "depth_km"
)

// Summary aggregates ignore absent values, so MaxMagnitude and MeanDepth
// are nil when no row has a known value.
type Summary struct {
	Count        int
	MaxMagnitude *float64
	MeanDepth    *float64
}

type Frame struct {
	db *sql.DB
}

func New(ctx context.Context) (*Frame, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("error opening frame: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while pinging frame: %w", err)
	}

	f := &Frame{db: db}
	if err := f.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error while creating frame schema: %w", err)
	}

	return f, nil
}

func (f *Frame) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE events (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			time_ms INTEGER,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			depth_km REAL,
			magnitude REAL,
			place TEXT NOT NULL,
			tsunami INTEGER NOT NULL,
			felt INTEGER
		);

		CREATE INDEX idx_events_time ON events(time_ms);
	`

	_, err := f.db.ExecContext(ctx, schema)
	return err
}

// Load inserts events in order. It is meant to be called once per frame.
func (f *Frame) Load(ctx context.Context, events []models.EarthquakeEvent) error {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning load: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (seq, id, time_ms, latitude, longitude, depth_km, magnitude, place, tsunami, felt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range events {
		var timeMS any
		if e.HasTime() {
			timeMS = e.Time.UnixMilli()
		}
		var felt any
		if e.Felt != nil {
			felt = *e.Felt
		}

		_, err := stmt.ExecContext(ctx,
			i, e.ID, timeMS, e.Latitude, e.Longitude,
			nullableFloat(e.Depth), nullableFloat(e.Magnitude),
			e.Place, e.Tsunami, felt,
		)
		if err != nil {
			return fmt.Errorf("error inserting event %q: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

func (f *Frame) Summary(ctx context.Context) (Summary, error) {
	var (
		s         Summary
		maxMag    sql.NullFloat64
		meanDepth sql.NullFloat64
	)

	row := f.db.QueryRowContext(ctx, `SELECT COUNT(*), MAX(magnitude), AVG(depth_km) FROM events`)
	if err := row.Scan(&s.Count, &maxMag, &meanDepth); err != nil {
		return Summary{}, fmt.Errorf("error summarising frame: %w", err)
	}

	s.MaxMagnitude = floatPtr(maxMag)
	s.MeanDepth = floatPtr(meanDepth)
	return s, nil
}

// Values returns the known values of a column in ascending order.
func (f *Frame) Values(ctx context.Context, col Column) ([]float64, error) {
	var query string
	switch col {
	case ColumnMagnitude:
		query = `SELECT magnitude FROM events WHERE magnitude IS NOT NULL ORDER BY magnitude`
	case ColumnDepth:
		query = `SELECT depth_km FROM events WHERE depth_km IS NOT NULL ORDER BY depth_km`
	default:
		return nil, fmt.Errorf("unknown column: %s", col)
	}

	rows, err := f.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", col, err)
	}
	defer rows.Close()

	values := []float64{}
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", col, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (f *Frame) Events(ctx context.Context, order Order) ([]models.EarthquakeEvent, error) {
	query := `SELECT id, time_ms, latitude, longitude, depth_km, magnitude, place, tsunami, felt FROM events`
	switch order {
	case TimeAscending:
		query += ` ORDER BY time_ms IS NULL, time_ms, seq`
	default:
		query += ` ORDER BY seq`
	}

	rows, err := f.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying events: %w", err)
	}
	defer rows.Close()

	events := []models.EarthquakeEvent{}
	for rows.Next() {
		var (
			e         models.EarthquakeEvent
			timeMS    sql.NullInt64
			depth     sql.NullFloat64
			magnitude sql.NullFloat64
			felt      sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &timeMS, &e.Latitude, &e.Longitude, &depth, &magnitude, &e.Place, &e.Tsunami, &felt); err != nil {
			return nil, fmt.Errorf("error scanning event: %w", err)
		}

		if timeMS.Valid {
			e.Time = time.UnixMilli(timeMS.Int64).UTC()
		}
		e.Depth = floatPtr(depth)
		e.Magnitude = floatPtr(magnitude)
		if felt.Valid {
			n := int(felt.Int64)
			e.Felt = &n
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (f *Frame) Close() error {
	return f.db.Close()
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

package store

import (
	"embed"
	"fmt"
	"strings"

	"github.com/i474232898/precipitation-tracker/internal/weather"
)

//go:embed schema/*.sql
var schemaFS embed.FS

func schema(dialect string) (string, error) {
	b, err := schemaFS.ReadFile("schema/" + dialect + ".sql")
	if err != nil {
		return "", fmt.Errorf("read %s schema: %w", dialect, err)
	}
	return string(b), nil
}

var columns = []string{
	"station_id", "ts", "station_name", "latitude", "longitude",
	"temperature_c", "snow_depth_m", "precip_1h_mm", "precip_3h_mm",
	"wind_speed_kmh", "visibility_m", "conditions", "precip_type", "observation_time",
}

// queries holds the statements for one SQL dialect. placeholder renders the
// n-th (1-based) bind parameter.
type queries struct {
	upsert      string
	scanAll     string
	scanStation string
}

func buildQueries(placeholder func(n int) string) queries {
	cols := strings.Join(columns, ", ")

	binds := make([]string, len(columns))
	for i := range binds {
		binds[i] = placeholder(i + 1)
	}

	updates := make([]string, 0, len(columns)-2)
	for _, c := range columns[2:] {
		updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
	}

	p := placeholder
	return queries{
		upsert: fmt.Sprintf(
			"INSERT INTO observations (%s) VALUES (%s) ON CONFLICT (station_id, ts) DO UPDATE SET %s",
			cols, strings.Join(binds, ", "), strings.Join(updates, ", "),
		),
		// keyset pagination on the primary key
		scanAll: fmt.Sprintf(
			"SELECT %s FROM observations WHERE station_id > %s OR (station_id = %s AND ts > %s) ORDER BY station_id, ts LIMIT %s",
			cols, p(1), p(2), p(3), p(4),
		),
		scanStation: fmt.Sprintf(
			"SELECT %s FROM observations WHERE station_id = %s AND ts > %s ORDER BY ts LIMIT %s",
			cols, p(1), p(2), p(3),
		),
	}
}

func upsertArgs(rec weather.ObservationRecord) []any {
	return []any{
		rec.StationID, rec.Timestamp, rec.StationName, rec.Latitude, rec.Longitude,
		rec.TemperatureC, rec.SnowDepthM, rec.Precip1hMM, rec.Precip3hMM,
		rec.WindSpeedKmh, rec.VisibilityM, nullIfEmpty(rec.Conditions), nullIfEmpty(string(rec.PrecipType)), rec.ObservationTime,
	}
}

// rowScanner is satisfied by *sql.Rows and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (weather.ObservationRecord, error) {
	var (
		rec        weather.ObservationRecord
		conditions *string
		precipType *string
	)
	err := row.Scan(
		&rec.StationID, &rec.Timestamp, &rec.StationName, &rec.Latitude, &rec.Longitude,
		&rec.TemperatureC, &rec.SnowDepthM, &rec.Precip1hMM, &rec.Precip3hMM,
		&rec.WindSpeedKmh, &rec.VisibilityM, &conditions, &precipType, &rec.ObservationTime,
	)
	if err != nil {
		return weather.ObservationRecord{}, err
	}
	if conditions != nil {
		rec.Conditions = *conditions
	}
	if precipType != nil {
		rec.PrecipType = weather.PrecipType(*precipType)
	}
	return rec, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

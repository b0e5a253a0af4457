package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/precipitation-tracker/internal/weather"
)

var sqliteQueries = buildQueries(func(int) string { return "?" })

// SQLiteStore persists records in a single SQLite table.
type SQLiteStore struct {
	db       *sql.DB
	pageSize int
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string, pageSize int) (*SQLiteStore, error) {
	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	s, err := NewSQLiteStore(ctx, db, pageSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an open database handle and applies the schema.
func NewSQLiteStore(ctx context.Context, db *sql.DB, pageSize int) (*SQLiteStore, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	// SQLite serializes writers; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	ddl, err := schema("sqlite")
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, pageSize: pageSize}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, rec weather.ObservationRecord) error {
	if _, err := s.db.ExecContext(ctx, sqliteQueries.upsert, upsertArgs(rec)...); err != nil {
		return fmt.Errorf("upsert %s@%d: %w", rec.StationID, rec.Timestamp, err)
	}
	return nil
}

func (s *SQLiteStore) Scan(ctx context.Context, fn weather.PageFunc) error {
	var (
		lastStation string
		lastTS      int64 = math.MinInt64
	)
	for {
		page, err := s.queryPage(ctx, sqliteQueries.scanAll, lastStation, lastStation, lastTS, s.pageSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		last := page[len(page)-1]
		lastStation, lastTS = last.StationID, last.Timestamp

		if err := fn(page); err != nil {
			return err
		}
		if len(page) < s.pageSize {
			return nil
		}
	}
}

func (s *SQLiteStore) ScanStation(ctx context.Context, stationID string, fn weather.PageFunc) error {
	var lastTS int64 = math.MinInt64
	for {
		page, err := s.queryPage(ctx, sqliteQueries.scanStation, stationID, lastTS, s.pageSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		lastTS = page[len(page)-1].Timestamp

		if err := fn(page); err != nil {
			return err
		}
		if len(page) < s.pageSize {
			return nil
		}
	}
}

// queryPage reads a full page and closes the rows before returning, so the
// callback never runs while the single connection is busy.
func (s *SQLiteStore) queryPage(ctx context.Context, query string, args ...any) ([]weather.ObservationRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan observations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close observation rows", "error", err)
		}
	}()

	page := make([]weather.ObservationRecord, 0, s.pageSize)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan observation row: %w", err)
		}
		page = append(page, rec)
	}
	return page, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func sqliteDSN(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}

	dir := filepath.Dir(strings.TrimPrefix(path, "file:"))
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	params := []string{
		"_busy_timeout=5000",
		"_journal_mode=WAL",
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}
	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}

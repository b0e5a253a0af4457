package store

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/i474232898/precipitation-tracker/internal/weather"
)

var postgresQueries = buildQueries(func(n int) string { return "$" + strconv.Itoa(n) })

// PostgresStore persists records in PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool     *pgxpool.Pool
	pageSize int
}

// OpenPostgres connects to databaseURL and applies the schema.
func OpenPostgres(ctx context.Context, databaseURL string, pageSize int) (*PostgresStore, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	ddl, err := schema("postgres")
	if err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, ddl); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &PostgresStore{pool: pool, pageSize: pageSize}, nil
}

func (s *PostgresStore) Put(ctx context.Context, rec weather.ObservationRecord) error {
	if _, err := s.pool.Exec(ctx, postgresQueries.upsert, upsertArgs(rec)...); err != nil {
		return fmt.Errorf("upsert %s@%d: %w", rec.StationID, rec.Timestamp, err)
	}
	return nil
}

func (s *PostgresStore) Scan(ctx context.Context, fn weather.PageFunc) error {
	var (
		lastStation string
		lastTS      int64 = math.MinInt64
	)
	for {
		page, err := s.queryPage(ctx, postgresQueries.scanAll, lastStation, lastStation, lastTS, s.pageSize)
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

func (s *PostgresStore) ScanStation(ctx context.Context, stationID string, fn weather.PageFunc) error {
	var lastTS int64 = math.MinInt64
	for {
		page, err := s.queryPage(ctx, postgresQueries.scanStation, stationID, lastTS, s.pageSize)
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

func (s *PostgresStore) queryPage(ctx context.Context, query string, args ...any) ([]weather.ObservationRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan observations: %w", err)
	}
	defer rows.Close()

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

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

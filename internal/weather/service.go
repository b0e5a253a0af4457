package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrCollectionRunning is returned by TryCollect while another cycle runs.
var ErrCollectionRunning = errors.New("collection cycle already running")

// Service runs collection cycles and answers read queries. At most one cycle
// runs at a time.
type Service struct {
	store    Store
	provider Provider
	stations Registry
	workers  int
	now      func() time.Time

	cycle sync.Mutex
}

// Option customizes a Service.
type Option func(*Service)

// WithWorkers bounds how many stations are fetched concurrently. Values
// below one collect sequentially.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// WithClock overrides the clock used for cycle timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new Service.
func NewService(store Store, provider Provider, stations Registry, opts ...Option) *Service {
	s := &Service{
		store:    store,
		provider: provider,
		stations: stations,
		workers:  1,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// Stations returns the registry the service collects.
func (s *Service) Stations() Registry {
	return s.stations
}

// Collect runs one cycle over every registered station, waiting for a
// running cycle to finish first. All records of the cycle share one
// timestamp. Station failures are recorded in the summary and never abort
// the cycle.
func (s *Service) Collect(ctx context.Context) CycleSummary {
	s.cycle.Lock()
	defer s.cycle.Unlock()
	return s.collect(ctx)
}

// TryCollect is Collect without waiting: it returns ErrCollectionRunning if
// a cycle is already in progress.
func (s *Service) TryCollect(ctx context.Context) (CycleSummary, error) {
	if !s.cycle.TryLock() {
		return CycleSummary{}, ErrCollectionRunning
	}
	defer s.cycle.Unlock()
	return s.collect(ctx), nil
}

func (s *Service) collect(ctx context.Context) CycleSummary {
	summary := CycleSummary{
		CycleID:   uuid.NewString(),
		Timestamp: s.now().Unix(),
	}

	log := slog.With("cycle_id", summary.CycleID, "timestamp", summary.Timestamp)
	log.Info("starting collection", "stations", s.stations.Len(), "workers", s.workers)

	stations := s.stations.All()
	results := make([]StationStatus, len(stations))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, meta := range stations {
		i, meta := i, meta
		g.Go(func() error {
			results[i] = s.collectStation(ctx, log, meta, summary.Timestamp)
			return nil
		})
	}
	_ = g.Wait()

	summary.Results = results
	summary.Summary.Total = len(results)
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			summary.Summary.Success++
		case StatusNoData:
			summary.Summary.NoData++
		case StatusError:
			summary.Summary.Errors++
		}
	}

	log.Info("completed collection",
		"success", summary.Summary.Success,
		"no_data", summary.Summary.NoData,
		"errors", summary.Summary.Errors,
	)
	return summary
}

func (s *Service) collectStation(ctx context.Context, log *slog.Logger, meta StationMeta, cycleTS int64) (status StationStatus) {
	status.Station = meta.ID

	defer func() {
		if r := recover(); r != nil {
			log.Error("station collection panicked", "station", meta.ID, "panic", r)
			status.Status = StatusError
			status.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	obs, err := s.provider.Fetch(ctx, meta.ID)
	if err != nil {
		log.Warn("fetch failed", "station", meta.ID, "provider", s.provider.Name(), "err", err)
		status.Status = StatusNoData
		status.Error = err.Error()
		return status
	}

	record := BuildRecord(meta, obs, Classify(obs), cycleTS)

	if err := s.store.Put(ctx, record); err != nil {
		log.Error("store write failed", "station", meta.ID, "err", err)
		status.Status = StatusError
		status.Error = err.Error()
		return status
	}

	log.Debug("stored observation", "station", meta.ID, "precip_type", record.PrecipType)
	status.Status = StatusSuccess
	return status
}

// Latest returns the newest record of every station present in the store.
func (s *Service) Latest(ctx context.Context) ([]ObservationRecord, error) {
	idx := NewLatestIndex()
	err := s.store.Scan(ctx, func(page []ObservationRecord) error {
		idx.Add(page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return idx.Records(), nil
}

// History returns up to HistoryLimit records of one station, newest first.
func (s *Service) History(ctx context.Context, stationID string) ([]ObservationRecord, error) {
	var records []ObservationRecord
	err := s.store.ScanStation(ctx, stationID, func(page []ObservationRecord) error {
		records = append(records, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan records for %s: %w", stationID, err)
	}
	return RecentHistory(stationID, records, HistoryLimit), nil
}

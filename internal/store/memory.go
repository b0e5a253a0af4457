package store

import (
	"context"
	"sync"

	"github.com/i474232898/precipitation-tracker/internal/weather"
)

// DefaultPageSize is the number of records handed to a scan callback at once.
const DefaultPageSize = 100

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: station id, value: records by cycle timestamp
	data map[string]map[int64]weather.ObservationRecord

	pageSize int
}

// NewMemoryStore creates an empty MemoryStore. A pageSize <= 0 uses DefaultPageSize.
func NewMemoryStore(pageSize int) *MemoryStore {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &MemoryStore{
		data:     make(map[string]map[int64]weather.ObservationRecord),
		pageSize: pageSize,
	}
}

// Put stores rec under (station_id, timestamp), replacing any record with the same key.
func (s *MemoryStore) Put(ctx context.Context, rec weather.ObservationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byTS, ok := s.data[rec.StationID]
	if !ok {
		byTS = make(map[int64]weather.ObservationRecord)
		s.data[rec.StationID] = byTS
	}
	byTS[rec.Timestamp] = rec.Clone()
	return nil
}

// Scan pages through every record in no particular order.
func (s *MemoryStore) Scan(ctx context.Context, fn weather.PageFunc) error {
	s.mu.RLock()
	var all []weather.ObservationRecord
	for _, byTS := range s.data {
		for _, rec := range byTS {
			all = append(all, rec.Clone())
		}
	}
	s.mu.RUnlock()

	return s.paginate(ctx, all, fn)
}

// ScanStation pages through the records of one station in no particular order.
func (s *MemoryStore) ScanStation(ctx context.Context, stationID string, fn weather.PageFunc) error {
	s.mu.RLock()
	byTS := s.data[stationID]
	all := make([]weather.ObservationRecord, 0, len(byTS))
	for _, rec := range byTS {
		all = append(all, rec.Clone())
	}
	s.mu.RUnlock()

	return s.paginate(ctx, all, fn)
}

func (s *MemoryStore) paginate(ctx context.Context, records []weather.ObservationRecord, fn weather.PageFunc) error {
	for start := 0; start < len(records); start += s.pageSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+s.pageSize, len(records))
		if err := fn(records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// Close implements io.Closer; there is nothing to release.
func (s *MemoryStore) Close() error {
	return nil
}

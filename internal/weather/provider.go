package weather

import "context"

// Provider fetches the latest observation of one station from an upstream
// source. Implementations must not retry; any error means "no data" for the
// current cycle.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, stationID string) (RawObservation, error)
}

// PageFunc receives one page of a scan. Returning an error stops the scan.
type PageFunc func(page []ObservationRecord) error

// Store is the time-series store records are written to and scanned from.
// Scans are unindexed and pages arrive in no particular order.
type Store interface {
	Put(ctx context.Context, rec ObservationRecord) error
	Scan(ctx context.Context, fn PageFunc) error
	ScanStation(ctx context.Context, stationID string, fn PageFunc) error
}

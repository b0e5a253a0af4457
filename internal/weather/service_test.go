package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeProvider struct {
	fail map[string]bool
	obs  RawObservation
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Fetch(_ context.Context, stationID string) (RawObservation, error) {
	if p.fail[stationID] {
		return RawObservation{}, fmt.Errorf("upstream unavailable for %s", stationID)
	}
	return p.obs, nil
}

type fakeStore struct {
	mu       sync.Mutex
	fail     map[string]bool
	records  []ObservationRecord
	scanErr  error
	pageSize int
}

func (s *fakeStore) Put(_ context.Context, rec ObservationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[rec.StationID] {
		return errors.New("store rejected write")
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeStore) Scan(_ context.Context, fn PageFunc) error {
	if s.scanErr != nil {
		return s.scanErr
	}
	size := s.pageSize
	if size <= 0 {
		size = len(s.records) + 1
	}
	for start := 0; start < len(s.records); start += size {
		end := min(start+size, len(s.records))
		if err := fn(s.records[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStore) ScanStation(ctx context.Context, stationID string, fn PageFunc) error {
	return s.Scan(ctx, func(page []ObservationRecord) error {
		var out []ObservationRecord
		for _, r := range page {
			if r.StationID == stationID {
				out = append(out, r)
			}
		}
		return fn(out)
	})
}

func testRegistry(t *testing.T, n int) Registry {
	t.Helper()
	stations := make([]StationMeta, n)
	for i := range stations {
		stations[i] = StationMeta{ID: fmt.Sprintf("K%03d", i), Name: fmt.Sprintf("Station %d", i)}
	}
	r, err := NewRegistry(stations...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func fixedClock(ts int64) func() time.Time {
	return func() time.Time { return time.Unix(ts, 0) }
}

func TestCollectCountsOutcomes(t *testing.T) {
	reg := testRegistry(t, 10)
	provider := &fakeProvider{
		fail: map[string]bool{"K000": true, "K003": true, "K007": true},
		obs:  RawObservation{Conditions: "Light Snow", TemperatureC: f(-1)},
	}
	store := &fakeStore{fail: map[string]bool{"K001": true, "K009": true}}

	for _, workers := range []int{1, 4} {
		store.records = nil
		svc := NewService(store, provider, reg, WithClock(fixedClock(1700000000)), WithWorkers(workers))

		summary := svc.Collect(context.Background())

		if summary.Summary.Total != 10 || summary.Summary.Success != 5 || summary.Summary.NoData != 3 || summary.Summary.Errors != 2 {
			t.Fatalf("workers=%d: unexpected summary %+v", workers, summary.Summary)
		}
		if summary.CycleID == "" {
			t.Fatalf("expected a cycle id")
		}
		for i, r := range summary.Results {
			if want := fmt.Sprintf("K%03d", i); r.Station != want {
				t.Fatalf("result %d is %s, want %s", i, r.Station, want)
			}
		}
		if got := summary.Results[1]; got.Status != StatusError || got.Error == "" {
			t.Fatalf("write failure not reported: %+v", got)
		}
		if got := summary.Results[0]; got.Status != StatusNoData {
			t.Fatalf("fetch failure not reported as no_data: %+v", got)
		}
		for _, r := range store.records {
			if r.Timestamp != 1700000000 {
				t.Fatalf("record %s has timestamp %d, want shared cycle timestamp", r.StationID, r.Timestamp)
			}
			if r.PrecipType != PrecipSnow {
				t.Fatalf("record %s precip_type = %q", r.StationID, r.PrecipType)
			}
		}
	}
}

func TestCollectAllStationsFail(t *testing.T) {
	reg := testRegistry(t, 4)
	fail := map[string]bool{}
	for _, s := range reg.All() {
		fail[s.ID] = true
	}

	svc := NewService(&fakeStore{}, &fakeProvider{fail: fail}, reg)
	summary := svc.Collect(context.Background())

	if summary.Summary.Success != 0 || summary.Summary.NoData != 4 {
		t.Fatalf("unexpected summary %+v", summary.Summary)
	}
}

func TestCollectEmptyRegistry(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakeProvider{}, Registry{})
	summary := svc.Collect(context.Background())

	if summary.Summary.Total != 0 || len(summary.Results) != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestLatestScansAllPages(t *testing.T) {
	store := &fakeStore{pageSize: 2}
	for i := int64(0); i < 5; i++ {
		store.records = append(store.records, rec("KORD", i, ""), rec("KMKE", 10-i, ""))
	}

	svc := NewService(store, &fakeProvider{}, DefaultRegistry())
	got, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].StationID != "KMKE" || got[0].Timestamp != 10 {
		t.Fatalf("first = (%s, %d), want (KMKE, 10)", got[0].StationID, got[0].Timestamp)
	}
	if got[1].StationID != "KORD" || got[1].Timestamp != 4 {
		t.Fatalf("second = (%s, %d), want (KORD, 4)", got[1].StationID, got[1].Timestamp)
	}
}

func TestLatestEmptyStore(t *testing.T) {
	svc := NewService(&fakeStore{}, &fakeProvider{}, DefaultRegistry())
	got, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestLatestPropagatesScanError(t *testing.T) {
	boom := errors.New("scan failed")
	svc := NewService(&fakeStore{scanErr: boom}, &fakeProvider{}, DefaultRegistry())

	if _, err := svc.Latest(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped scan error, got %v", err)
	}
}

func TestHistory(t *testing.T) {
	store := &fakeStore{pageSize: 7}
	for i := int64(0); i < 80; i++ {
		store.records = append(store.records, rec("KGRR", i*600, ""), rec("KAZO", i*600, ""))
	}

	svc := NewService(store, &fakeProvider{}, DefaultRegistry())
	got, err := svc.History(context.Background(), "KGRR")
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	if len(got) != HistoryLimit {
		t.Fatalf("expected %d records, got %d", HistoryLimit, len(got))
	}
	if got[0].Timestamp != 79*600 || got[len(got)-1].Timestamp != 30*600 {
		t.Fatalf("unexpected window [%d .. %d]", got[0].Timestamp, got[len(got)-1].Timestamp)
	}
}

// blockingProvider holds every fetch until release is closed.
type blockingProvider struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingProvider() *blockingProvider {
	return &blockingProvider{started: make(chan struct{}), release: make(chan struct{})}
}

func (p *blockingProvider) Name() string { return "blocking" }

func (p *blockingProvider) Fetch(ctx context.Context, _ string) (RawObservation, error) {
	p.once.Do(func() { close(p.started) })
	select {
	case <-p.release:
		return RawObservation{Conditions: "Rain"}, nil
	case <-ctx.Done():
		return RawObservation{}, ctx.Err()
	}
}

func TestCollectCyclesDoNotOverlap(t *testing.T) {
	provider := newBlockingProvider()
	store := &fakeStore{}
	svc := NewService(store, provider, testRegistry(t, 2))

	done := make(chan CycleSummary)
	go func() { done <- svc.Collect(context.Background()) }()
	<-provider.started

	if _, err := svc.TryCollect(context.Background()); !errors.Is(err, ErrCollectionRunning) {
		t.Fatalf("expected ErrCollectionRunning while a cycle runs, got %v", err)
	}

	close(provider.release)
	if first := <-done; first.Summary.Success != 2 {
		t.Fatalf("unexpected first cycle %+v", first.Summary)
	}

	second, err := svc.TryCollect(context.Background())
	if err != nil {
		t.Fatalf("TryCollect after the cycle finished: %v", err)
	}
	if second.Summary.Success != 2 || len(store.records) != 4 {
		t.Fatalf("unexpected second cycle %+v with %d records", second.Summary, len(store.records))
	}
}

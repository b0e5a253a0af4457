package weather

import "sort"

// HistoryLimit bounds the number of records returned for one station.
const HistoryLimit = 50

// LatestIndex reduces a stream of records to the newest one per station.
// Records may arrive in any order and across any number of pages.
type LatestIndex struct {
	pos     map[string]int
	records []ObservationRecord
}

func NewLatestIndex() *LatestIndex {
	return &LatestIndex{pos: make(map[string]int)}
}

// Add folds records into the index. A record replaces the current one for its
// station only when its timestamp is strictly greater, so ties keep the first seen.
func (l *LatestIndex) Add(records ...ObservationRecord) {
	for _, rec := range records {
		i, ok := l.pos[rec.StationID]
		if !ok {
			l.pos[rec.StationID] = len(l.records)
			l.records = append(l.records, rec)
			continue
		}
		if rec.Timestamp > l.records[i].Timestamp {
			l.records[i] = rec
		}
	}
}

func (l *LatestIndex) Len() int {
	return len(l.records)
}

// Records returns the newest record per station ordered by timestamp
// descending. Stations with equal timestamps keep first-seen order.
func (l *LatestIndex) Records() []ObservationRecord {
	out := make([]ObservationRecord, len(l.records))
	copy(out, l.records)
	sortNewestFirst(out)
	return out
}

// LatestPerStation is a one-shot LatestIndex over an in-memory slice.
func LatestPerStation(records []ObservationRecord) []ObservationRecord {
	idx := NewLatestIndex()
	idx.Add(records...)
	return idx.Records()
}

// RecentHistory returns up to limit records of stationID, newest first.
// Records of other stations are ignored.
func RecentHistory(stationID string, records []ObservationRecord, limit int) []ObservationRecord {
	out := make([]ObservationRecord, 0, len(records))
	for _, rec := range records {
		if rec.StationID == stationID {
			out = append(out, rec)
		}
	}

	sortNewestFirst(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortNewestFirst(records []ObservationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
}

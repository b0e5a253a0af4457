package weather

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownStation   = errors.New("unknown station")
	ErrDuplicateStation = errors.New("duplicate station")
)

// StationMeta describes a fixed observation station.
type StationMeta struct {
	ID        string  `json:"station_id"`
	Name      string  `json:"station_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Registry is an immutable, ordered set of stations built once at start-up.
type Registry struct {
	stations []StationMeta
	index    map[string]int
}

// NewRegistry builds a registry preserving the given order.
func NewRegistry(stations ...StationMeta) (Registry, error) {
	r := Registry{
		stations: make([]StationMeta, 0, len(stations)),
		index:    make(map[string]int, len(stations)),
	}
	for _, s := range stations {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return Registry{}, fmt.Errorf("station %q: empty id", s.Name)
		}
		if _, ok := r.index[id]; ok {
			return Registry{}, fmt.Errorf("%w: %s", ErrDuplicateStation, id)
		}
		s.ID = id
		r.index[id] = len(r.stations)
		r.stations = append(r.stations, s)
	}
	return r, nil
}

// All returns a copy of the stations in registry order.
func (r Registry) All() []StationMeta {
	out := make([]StationMeta, len(r.stations))
	copy(out, r.stations)
	return out
}

func (r Registry) Len() int {
	return len(r.stations)
}

// Get looks up a station by id.
func (r Registry) Get(id string) (StationMeta, bool) {
	i, ok := r.index[id]
	if !ok {
		return StationMeta{}, false
	}
	return r.stations[i], true
}

// Subset returns a new registry restricted to ids, in the order given.
func (r Registry) Subset(ids ...string) (Registry, error) {
	picked := make([]StationMeta, 0, len(ids))
	for _, id := range ids {
		s, ok := r.Get(strings.ToUpper(strings.TrimSpace(id)))
		if !ok {
			return Registry{}, fmt.Errorf("%w: %s", ErrUnknownStation, id)
		}
		picked = append(picked, s)
	}
	return NewRegistry(picked...)
}

// Stations around Lake Michigan, chosen to capture lake-effect precipitation.
var defaultStations = []StationMeta{
	// Chicago metro
	{ID: "KORD", Name: "Chicago O'Hare", Latitude: 41.9742, Longitude: -87.9073},
	{ID: "KMDW", Name: "Chicago Midway", Latitude: 41.7868, Longitude: -87.7522},
	{ID: "KLOT", Name: "Romeoville/Lewis", Latitude: 41.6072, Longitude: -88.0959},
	{ID: "KUGN", Name: "Waukegan", Latitude: 42.4222, Longitude: -87.8678},
	{ID: "KDPA", Name: "DuPage/Naperville", Latitude: 41.9078, Longitude: -88.2486},

	// Indiana
	{ID: "KGYY", Name: "Gary/Chicago", Latitude: 41.6163, Longitude: -87.4128},
	{ID: "KSBN", Name: "South Bend", Latitude: 41.7087, Longitude: -86.3173},
	{ID: "KMGC", Name: "Michigan City", Latitude: 41.7033, Longitude: -86.8211},

	// Michigan
	{ID: "KBEH", Name: "Benton Harbor", Latitude: 42.1286, Longitude: -86.4285},
	{ID: "KAZO", Name: "Kalamazoo", Latitude: 42.2350, Longitude: -85.5521},
	{ID: "KGRR", Name: "Grand Rapids", Latitude: 42.8808, Longitude: -85.5228},

	// Wisconsin
	{ID: "KMKE", Name: "Milwaukee", Latitude: 42.9472, Longitude: -87.8965},
	{ID: "KGRB", Name: "Green Bay", Latitude: 44.4851, Longitude: -88.1296},
}

// DefaultRegistry returns the built-in station set.
func DefaultRegistry() Registry {
	r, err := NewRegistry(defaultStations...)
	if err != nil {
		panic(err) // static table, cannot fail
	}
	return r
}

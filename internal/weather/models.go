package weather

// PrecipType is the precipitation classification derived from one observation.
type PrecipType string

const (
	PrecipSnow  PrecipType = "snow"
	PrecipRain  PrecipType = "rain"
	PrecipSleet PrecipType = "sleet"
	PrecipNone  PrecipType = "none"
)

// UnknownConditions is used when the provider sends no text description.
const UnknownConditions = "Unknown"

// PresentWeather is one phenomenon from the provider's presentWeather list.
type PresentWeather struct {
	Intensity string `json:"intensity,omitempty"`
	Modifier  string `json:"modifier,omitempty"`
	Weather   string `json:"weather,omitempty"`
	RawString string `json:"rawString,omitempty"`
}

// RawObservation is a normalized but unclassified reading for one station.
// A nil numeric field means the sensor did not report; zero is a real value.
type RawObservation struct {
	TemperatureC   *float64
	SnowDepthM     *float64
	Precip1hMM     *float64
	Precip3hMM     *float64
	WindSpeedKmh   *float64
	VisibilityM    *float64
	Conditions     string
	PresentWeather []PresentWeather

	// ObservedAt is the provider's own observation timestamp, not the cycle time.
	ObservedAt *string
}

// ObservationRecord is the persisted unit, keyed by (StationID, Timestamp).
// Optional fields are omitted from the encoded record when absent.
type ObservationRecord struct {
	StationID   string  `json:"station_id"`
	Timestamp   int64   `json:"timestamp"` // cycle time, epoch seconds
	StationName string  `json:"station_name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	TemperatureC *float64 `json:"temperature_c,omitempty"`
	SnowDepthM   *float64 `json:"snow_depth_m,omitempty"`
	Precip1hMM   *float64 `json:"precip_1h_mm,omitempty"`
	Precip3hMM   *float64 `json:"precip_3h_mm,omitempty"`
	WindSpeedKmh *float64 `json:"wind_speed_kmh,omitempty"`
	VisibilityM  *float64 `json:"visibility_m,omitempty"`

	Conditions      string     `json:"conditions,omitempty"`
	PrecipType      PrecipType `json:"precip_type,omitempty"`
	ObservationTime *string    `json:"observation_time,omitempty"`
}

// Status values reported per station for a collection cycle.
const (
	StatusSuccess = "success"
	StatusNoData  = "no_data"
	StatusError   = "error"
)

// StationStatus is the outcome of one station within a cycle.
type StationStatus struct {
	Station string `json:"station"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// ResultsSummary counts station outcomes for a cycle.
type ResultsSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	NoData  int `json:"no_data"`
	Errors  int `json:"errors"`
}

// CycleSummary is returned by every collection cycle.
type CycleSummary struct {
	CycleID   string          `json:"cycle_id"`
	Timestamp int64           `json:"timestamp"`
	Summary   ResultsSummary  `json:"results_summary"`
	Results   []StationStatus `json:"results"`
}

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/i474232898/precipitation-tracker/internal/weather"
)

const (
	DefaultNWSBaseURL   = "https://api.weather.gov"
	DefaultNWSUserAgent = "PynewbPrecipitationTracker/1.0"
	DefaultNWSTimeout   = 10 * time.Second
)

var tracer = otel.Tracer("nws-observations-client")

// NWSConfig configures the National Weather Service provider.
type NWSConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Breaker   BreakerConfig
}

// NWSProvider fetches the latest observation of a station from api.weather.gov.
type NWSProvider struct {
	name      string
	baseURL   string
	userAgent string
	timeout   time.Duration
	client    *http.Client
	breakers  *breakerSet
}

func NewNWSProvider(client *http.Client, cfg NWSConfig) *NWSProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNWSBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultNWSUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultNWSTimeout
	}

	return &NWSProvider{
		name:      "nws",
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		client:    client,
		breakers:  newBreakerSet("nws", cfg.Breaker),
	}
}

func (p *NWSProvider) Name() string {
	return p.name
}

// Fetch performs exactly one request for the station. Absent properties are
// returned as nil, never as zero.
func (p *NWSProvider) Fetch(ctx context.Context, stationID string) (obs weather.RawObservation, err error) {
	ctx, span := tracer.Start(ctx, "fetch-latest-observation",
		trace.WithAttributes(attribute.String("station", stationID)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	u := fmt.Sprintf("%s/stations/%s/observations/latest", p.baseURL, url.PathEscape(stationID))
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return weather.RawObservation{}, fmt.Errorf("build request for %s: %w", stationID, err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := doRequest(ctx, p.client, p.breakers.get(stationID), req)
	if err != nil {
		return weather.RawObservation{}, fmt.Errorf("fetch %s: %w", stationID, err)
	}
	defer resp.Body.Close()

	var payload observationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.RawObservation{}, fmt.Errorf("decode %s observation: %w", stationID, err)
	}

	return payload.toRawObservation(), nil
}

// quantity is the NWS QuantitativeValue. Value is null when not reported.
type quantity struct {
	UnitCode string   `json:"unitCode"`
	Value    *float64 `json:"value"`
}

type observationResponse struct {
	Properties struct {
		Timestamp               *string                  `json:"timestamp"`
		TextDescription         *string                  `json:"textDescription"`
		Temperature             *quantity                `json:"temperature"`
		SnowDepth               *quantity                `json:"snowDepth"`
		PrecipitationLastHour   *quantity                `json:"precipitationLastHour"`
		PrecipitationLast3Hours *quantity                `json:"precipitationLast3Hours"`
		WindSpeed               *quantity                `json:"windSpeed"`
		Visibility              *quantity                `json:"visibility"`
		PresentWeather          []weather.PresentWeather `json:"presentWeather"`
	} `json:"properties"`
}

func (r observationResponse) toRawObservation() weather.RawObservation {
	props := r.Properties

	conditions := weather.UnknownConditions
	if props.TextDescription != nil && strings.TrimSpace(*props.TextDescription) != "" {
		conditions = *props.TextDescription
	}

	presentWeather := props.PresentWeather
	if presentWeather == nil {
		presentWeather = []weather.PresentWeather{}
	}

	var observedAt *string
	if props.Timestamp != nil && *props.Timestamp != "" {
		observedAt = props.Timestamp
	}

	return weather.RawObservation{
		TemperatureC:   props.Temperature.in(unitCelsius),
		SnowDepthM:     props.SnowDepth.in(unitMetre),
		Precip1hMM:     props.PrecipitationLastHour.in(unitMillimetre),
		Precip3hMM:     props.PrecipitationLast3Hours.in(unitMillimetre),
		WindSpeedKmh:   props.WindSpeed.in(unitKmh),
		VisibilityM:    props.Visibility.in(unitMetre),
		Conditions:     conditions,
		PresentWeather: presentWeather,
		ObservedAt:     observedAt,
	}
}

const (
	unitCelsius    = "wmoUnit:degC"
	unitMetre      = "wmoUnit:m"
	unitMillimetre = "wmoUnit:mm"
	unitKmh        = "wmoUnit:km_h-1"
)

// conversions maps (from, to) unit codes to a converter.
var conversions = map[[2]string]func(float64) float64{
	{"wmoUnit:degF", unitCelsius}: func(v float64) float64 { return (v - 32) * 5 / 9 },
	{"wmoUnit:K", unitCelsius}:    func(v float64) float64 { return v - 273.15 },
	{"wmoUnit:mm", unitMetre}:     func(v float64) float64 { return v / 1000 },
	{"wmoUnit:cm", unitMetre}:     func(v float64) float64 { return v / 100 },
	{"wmoUnit:km", unitMetre}:     func(v float64) float64 { return v * 1000 },
	{"wmoUnit:m", unitMillimetre}: func(v float64) float64 { return v * 1000 },
	{"wmoUnit:m_s-1", unitKmh}:    func(v float64) float64 { return v * 3.6 },
	{"wmoUnit:kn", unitKmh}:       func(v float64) float64 { return v * 1.852 },
}

// in returns the value expressed in unit. Values with a missing or unknown
// unit code are passed through unchanged.
func (q *quantity) in(unit string) *float64 {
	if q == nil || q.Value == nil {
		return nil
	}
	v := *q.Value
	if conv, ok := conversions[[2]string{q.UnitCode, unit}]; ok {
		v = conv(v)
	}
	return &v
}

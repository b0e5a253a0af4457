package weather

import "github.com/i474232898/precipitation-tracker/internal/common"

// Classify derives the precipitation type of an observation.
//
// The conditions text wins when it names a precipitation type. Otherwise a
// positive one-hour amount is snow at or below freezing and rain above it.
// A positive amount with no temperature reported is classified as rain.
func Classify(obs RawObservation) PrecipType {
	return ClassifyReading(obs.Conditions, obs.PresentWeather, obs.TemperatureC, obs.Precip1hMM)
}

// ClassifyReading is the positional form of Classify. The present-weather
// list is accepted for completeness but does not take part in the decision.
func ClassifyReading(conditions string, _ []PresentWeather, tempC, precip1h *float64) PrecipType {
	switch {
	case common.HasAnyFold(conditions, "snow"):
		return PrecipSnow
	case common.HasAnyFold(conditions, "rain"):
		return PrecipRain
	case common.HasAnyFold(conditions, "sleet", "ice"):
		return PrecipSleet
	case common.HasAnyFold(conditions, "drizzle"):
		return PrecipRain
	}

	if precip1h != nil && *precip1h > 0 {
		if tempC != nil && *tempC <= 0 {
			return PrecipSnow
		}
		return PrecipRain
	}

	return PrecipNone
}

package weather

// BuildRecord merges station metadata, an observation and its classification
// into the record persisted for one cycle. Absent readings stay nil so they
// are dropped when the record is encoded.
func BuildRecord(meta StationMeta, obs RawObservation, precip PrecipType, cycleTS int64) ObservationRecord {
	conditions := obs.Conditions
	if conditions == "" {
		conditions = UnknownConditions
	}

	return ObservationRecord{
		StationID:   meta.ID,
		Timestamp:   cycleTS,
		StationName: meta.Name,
		Latitude:    meta.Latitude,
		Longitude:   meta.Longitude,

		TemperatureC: copyFloat(obs.TemperatureC),
		SnowDepthM:   copyFloat(obs.SnowDepthM),
		Precip1hMM:   copyFloat(obs.Precip1hMM),
		Precip3hMM:   copyFloat(obs.Precip3hMM),
		WindSpeedKmh: copyFloat(obs.WindSpeedKmh),
		VisibilityM:  copyFloat(obs.VisibilityM),

		Conditions:      conditions,
		PrecipType:      precip,
		ObservationTime: copyString(obs.ObservedAt),
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Clone returns a deep copy so stored records cannot be changed through
// pointers held by callers.
func (r ObservationRecord) Clone() ObservationRecord {
	c := r
	c.TemperatureC = copyFloat(r.TemperatureC)
	c.SnowDepthM = copyFloat(r.SnowDepthM)
	c.Precip1hMM = copyFloat(r.Precip1hMM)
	c.Precip3hMM = copyFloat(r.Precip3hMM)
	c.WindSpeedKmh = copyFloat(r.WindSpeedKmh)
	c.VisibilityM = copyFloat(r.VisibilityM)
	c.ObservationTime = copyString(r.ObservationTime)
	return c
}

package activity

import "fmt"

// Statistic is the normalized summary of one activity. Distance and
// duration are always set; everything else is nullable because not
// every source activity reports every field.
type Statistic struct {
	TotalKm          float64  `json:"total_km"`
	TotalTimeSeconds float64  `json:"total_time_seconds"`
	AvgSpeed         *float64 `json:"avg_speed"`
	MaxSpeed         *float64 `json:"max_speed"`
	Ascent           *float64 `json:"ascent"`
	Descent          *float64 `json:"descent"`
	MinAltitude      *float64 `json:"min_altitude"`
	MaxAltitude      *float64 `json:"max_altitude"`
	Calories         *int     `json:"calories"`
	AvgCadence       *float64 `json:"avg_cadence"`
	AvgHeart         *float64 `json:"avg_heart"`
	MaxHeart         *float64 `json:"max_heart"`
	AvgTemperature   *float64 `json:"avg_temperature"`
}

// Garmin reports speeds in m/s, both on the live API and in the stored
// snapshots (a snapshot is the API record written verbatim). The km/h
// conversion happens here and nowhere else.
const msToKmh = 3.6

// Extract normalizes a raw summary into a Statistic. Distance, duration
// and both speeds are required; any optional field that fails coercion
// is left nil instead of failing the whole record.
func Extract(s Summary) (Statistic, error) {
	distance, ok := s.Float("distance")
	if !ok {
		return Statistic{}, fmt.Errorf("extract statistic: distance missing or not numeric")
	}

	// Old records have movingDuration missing or zero.
	duration, ok := s.Float("movingDuration")
	if !ok || duration == 0 {
		duration, ok = s.Float("duration")
		if !ok {
			return Statistic{}, fmt.Errorf("extract statistic: duration missing or not numeric")
		}
	}

	avgSpeed, ok := s.Float("averageSpeed")
	if !ok {
		return Statistic{}, fmt.Errorf("extract statistic: averageSpeed missing or not numeric")
	}
	maxSpeed, ok := s.Float("maxSpeed")
	if !ok {
		return Statistic{}, fmt.Errorf("extract statistic: maxSpeed missing or not numeric")
	}

	avgKmh := avgSpeed * msToKmh
	maxKmh := maxSpeed * msToKmh

	return Statistic{
		TotalKm:          distance / 1000,
		TotalTimeSeconds: duration,
		AvgSpeed:         &avgKmh,
		MaxSpeed:         &maxKmh,
		Ascent:           s.OptFloat("elevationGain"),
		Descent:          s.OptFloat("elevationLoss"),
		MinAltitude:      s.OptFloat("minElevation"),
		MaxAltitude:      s.OptFloat("maxElevation"),
		Calories:         s.OptInt("calories"),
		AvgCadence:       s.OptFloat("averageBikingCadenceInRevPerMinute"),
		AvgHeart:         s.OptFloat("averageHR"),
		MaxHeart:         s.OptFloat("maxHR"),
		AvgTemperature:   nil, // Garmin has no source field for it
	}, nil
}

package domain

import "time"

// WeatherSample holds the measurements for one valid time at one location.
// A nil field means the value is absent for that time.
type WeatherSample struct {
	Time             time.Time `json:"time"`
	Temperature      *float64  `json:"temperature,omitempty"`
	Precipitation    *float64  `json:"precipitation,omitempty"`
	WindSpeed        *float64  `json:"wind_speed,omitempty"`
	WindDirection    *float64  `json:"wind_direction,omitempty"`
	WindGust         *float64  `json:"wind_gust,omitempty"`
	RelativeHumidity *float64  `json:"relative_humidity,omitempty"`
	DewPoint         *float64  `json:"dew_point,omitempty"`
	Pressure         *float64  `json:"pressure,omitempty"`
	CloudCover       *float64  `json:"cloud_cover,omitempty"`
	SunshineDuration *float64  `json:"sunshine_duration,omitempty"`
	WeatherCode      *float64  `json:"weather_code,omitempty"`
}

func (s *WeatherSample) field(m Measurement) **float64 {
	switch m {
	case Temperature:
		return &s.Temperature
	case Precipitation:
		return &s.Precipitation
	case WindSpeed:
		return &s.WindSpeed
	case WindDirection:
		return &s.WindDirection
	case WindGust:
		return &s.WindGust
	case RelativeHumidity:
		return &s.RelativeHumidity
	case DewPoint:
		return &s.DewPoint
	case Pressure:
		return &s.Pressure
	case CloudCover:
		return &s.CloudCover
	case SunshineDuration:
		return &s.SunshineDuration
	case WeatherCode:
		return &s.WeatherCode
	default:
		return nil
	}
}

// Set stores r under m. A missing reading clears the field.
func (s *WeatherSample) Set(m Measurement, r Reading) {
	if f := s.field(m); f != nil {
		*f = r.Ptr()
	}
}

// Get returns the value stored under m.
func (s WeatherSample) Get(m Measurement) (float64, bool) {
	f := s.field(m)
	if f == nil || *f == nil {
		return 0, false
	}
	return **f, true
}

// Count returns the number of measurements present.
func (s WeatherSample) Count() int {
	n := 0
	for _, m := range Measurements() {
		if _, ok := s.Get(m); ok {
			n++
		}
	}
	return n
}

package domain

import (
	"fmt"
	"strings"
)

// Measurement names a field of WeatherSample.
type Measurement int

const (
	MeasurementUnknown Measurement = iota
	Temperature
	Precipitation
	WindSpeed
	WindDirection
	WindGust
	RelativeHumidity
	DewPoint
	Pressure
	CloudCover
	SunshineDuration
	WeatherCode
)

var measurementNames = map[Measurement]string{
	Temperature:      "temperature",
	Precipitation:    "precipitation",
	WindSpeed:        "wind_speed",
	WindDirection:    "wind_direction",
	WindGust:         "wind_gust",
	RelativeHumidity: "relative_humidity",
	DewPoint:         "dew_point",
	Pressure:         "pressure",
	CloudCover:       "cloud_cover",
	SunshineDuration: "sunshine_duration",
	WeatherCode:      "weather_code",
}

// Measurements lists every known measurement in field order.
func Measurements() []Measurement {
	return []Measurement{
		Temperature, Precipitation, WindSpeed, WindDirection, WindGust,
		RelativeHumidity, DewPoint, Pressure, CloudCover, SunshineDuration, WeatherCode,
	}
}

// String returns the wire name, e.g. "wind_speed".
func (m Measurement) String() string {
	if name, ok := measurementNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMeasurement accepts the wire name in any case, with '-' or '_'.
func ParseMeasurement(s string) (Measurement, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for m, name := range measurementNames {
		if name == key {
			return m, nil
		}
	}
	return MeasurementUnknown, fmt.Errorf("unknown measurement %q", s)
}

// MarshalText implements encoding.TextMarshaler so measurements read and
// write as their wire names in JSON and YAML.
func (m Measurement) MarshalText() ([]byte, error) {
	if m == MeasurementUnknown {
		return nil, fmt.Errorf("cannot marshal unknown measurement")
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Measurement) UnmarshalText(b []byte) error {
	parsed, err := ParseMeasurement(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

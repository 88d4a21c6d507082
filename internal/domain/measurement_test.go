package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseMeasurement(t *testing.T) {
	for _, m := range Measurements() {
		got, err := ParseMeasurement(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMeasurement(%q) = %v, %v", m.String(), got, err)
		}
	}
	if got, err := ParseMeasurement(" Wind-Speed "); err != nil || got != WindSpeed {
		t.Errorf("ParseMeasurement(Wind-Speed) = %v, %v", got, err)
	}
	if _, err := ParseMeasurement("visibility"); err == nil {
		t.Error("ParseMeasurement(visibility): expected error")
	}
}

func TestWeatherSample_SetGet(t *testing.T) {
	var s WeatherSample
	s.Set(Temperature, Reading{Value: 13, Valid: true})
	s.Set(Pressure, Missing())

	if v, ok := s.Get(Temperature); !ok || v != 13 {
		t.Errorf("Get(temperature) = %v, %v", v, ok)
	}
	if _, ok := s.Get(Pressure); ok {
		t.Error("Get(pressure) should be absent")
	}
	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}

	// Every measurement maps to its own field.
	for i, m := range Measurements() {
		s.Set(m, Reading{Value: float64(i), Valid: true})
	}
	for i, m := range Measurements() {
		if v, _ := s.Get(m); v != float64(i) {
			t.Errorf("Get(%v) = %v, want %d", m, v, i)
		}
	}
}

func TestWeatherSample_JSONOmitsAbsent(t *testing.T) {
	s := WeatherSample{Time: time.Date(1970, 1, 1, 1, 0, 0, 0, time.UTC)}
	s.Set(Temperature, Reading{Value: 17, Valid: true})

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got := string(b)
	if got != `{"time":"1970-01-01T01:00:00Z","temperature":17}` {
		t.Errorf("Marshal() = %s", got)
	}
	if strings.Contains(got, "null") {
		t.Errorf("absent fields must be omitted: %s", got)
	}
}

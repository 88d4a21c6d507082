package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrUndecodableTimeUnit is returned for a units attribute that is not
	// "<seconds|minutes|hours|days> since <timestamp>".
	ErrUndecodableTimeUnit = errors.New("undecodable time unit")
	// ErrUndecodableTimeValue is returned for NaN, infinite or out of range
	// time values.
	ErrUndecodableTimeValue = errors.New("undecodable time value")
)

// TimeBase is the unit of a numeric time axis.
type TimeBase int

const (
	Seconds TimeBase = iota
	Minutes
	Hours
	Days
)

// Seconds returns the length of one unit in seconds.
func (b TimeBase) Seconds() float64 {
	switch b {
	case Minutes:
		return 60
	case Hours:
		return 3600
	case Days:
		return 86400
	default:
		return 1
	}
}

func (b TimeBase) String() string {
	switch b {
	case Minutes:
		return "minutes"
	case Hours:
		return "hours"
	case Days:
		return "days"
	default:
		return "seconds"
	}
}

var timeBases = map[string]TimeBase{
	"seconds": Seconds,
	"minutes": Minutes,
	"hours":   Hours,
	"days":    Days,
}

// Accepted reference timestamp layouts. Layouts without an offset are read
// as UTC.
var referenceLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// TimeUnit is a decoded "<base> since <reference>" units attribute.
type TimeUnit struct {
	Base      TimeBase
	Reference time.Time
}

func (u TimeUnit) String() string {
	return fmt.Sprintf("%s since %s", u.Base, u.Reference.Format(time.RFC3339Nano))
}

// ParseTimeUnit parses a CF-style time units string such as
// "seconds since 1970-01-01T00:00:00+00:00". The unit word is case-sensitive.
func ParseTimeUnit(units string) (TimeUnit, error) {
	word, ref, ok := strings.Cut(strings.TrimSpace(units), " since ")
	if !ok {
		return TimeUnit{}, fmt.Errorf("%q: %w", units, ErrUndecodableTimeUnit)
	}
	base, ok := timeBases[strings.TrimSpace(word)]
	if !ok {
		return TimeUnit{}, fmt.Errorf("%q: unknown unit %q: %w", units, word, ErrUndecodableTimeUnit)
	}
	ref = strings.TrimSpace(ref)
	// " UTC" is a common suffix in older files.
	ref = strings.TrimSuffix(ref, " UTC")
	for _, layout := range referenceLayouts {
		t, err := time.Parse(layout, ref)
		if err == nil {
			return TimeUnit{Base: base, Reference: t.UTC()}, nil
		}
	}
	return TimeUnit{}, fmt.Errorf("%q: bad reference %q: %w", units, ref, ErrUndecodableTimeUnit)
}

// Decode converts an axis value to an absolute UTC instant. The offset is
// computed in whole seconds plus nanoseconds so values centuries away from
// the reference do not overflow time.Duration.
func (u TimeUnit) Decode(v float64) (time.Time, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, fmt.Errorf("%v: %w", v, ErrUndecodableTimeValue)
	}
	offset := v * u.Base.Seconds()
	whole, frac := math.Modf(offset)
	if math.Abs(whole) > math.MaxInt64/2 {
		return time.Time{}, fmt.Errorf("%v %s: %w", v, u.Base, ErrUndecodableTimeValue)
	}
	secs := u.Reference.Unix() + int64(whole)
	nanos := int64(u.Reference.Nanosecond()) + int64(math.Round(frac*1e9))
	t := time.Unix(secs, nanos).UTC()
	// RFC 3339 cannot represent anything outside four-digit years.
	if t.Year() < 0 || t.Year() > 9999 {
		return time.Time{}, fmt.Errorf("%v %s: year %d: %w", v, u.Base, t.Year(), ErrUndecodableTimeValue)
	}
	return t, nil
}

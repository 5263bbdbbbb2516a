// v1
// internal/series/series.go
package series

import (
	"encoding/json"
	"math"
	"time"
)

// Sample is one timestamped measurement. A NaN value marks a gap that must
// never be counted as a violation downstream.
type Sample struct {
	Ts    time.Time `json:"ts"`
	Value float64   `json:"value"`
}

// Series is a timestamp-ordered sequence of samples for a single parameter
// in a single room.
type Series []Sample

// WeekdayMode selects which days of the week stay in scope.
type WeekdayMode string

const (
	AllDays      WeekdayMode = "all"
	WeekdaysOnly WeekdayMode = "weekdays_only"
	WeekendsOnly WeekdayMode = "weekends_only"
)

// FilterSpec is the temporal scope of one compliance test. Empty collections
// mean "no restriction on that axis".
type FilterSpec struct {
	Hours           []int        `json:"hours,omitempty"`        // 0-23
	Weekdays        WeekdayMode  `json:"weekdays,omitempty"`     // default AllDays
	PeriodMonths    []time.Month `json:"periodMonths,omitempty"` // 1-12
	ExcludeHolidays bool         `json:"excludeHolidays,omitempty"`
}

// Filter returns the subsequence whose timestamps satisfy every active
// predicate. A nil calendar disables the holiday predicate even when
// ExcludeHolidays is set. An empty result is a valid "no data in scope"
// outcome, not an error.
func (s Series) Filter(spec FilterSpec, hol *HolidayCalendar) Series {
	hours := toHourSet(spec.Hours)
	months := toMonthSet(spec.PeriodMonths)

	var out Series
	for _, p := range s {
		if hours != nil && !hours[p.Ts.Hour()] {
			continue
		}
		if !weekdayInScope(spec.Weekdays, p.Ts.Weekday()) {
			continue
		}
		if months != nil && !months[p.Ts.Month()] {
			continue
		}
		if spec.ExcludeHolidays && hol != nil && hol.IsHoliday(p.Ts) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func weekdayInScope(mode WeekdayMode, d time.Weekday) bool {
	weekend := d == time.Saturday || d == time.Sunday
	switch mode {
	case WeekdaysOnly:
		return !weekend
	case WeekendsOnly:
		return weekend
	default:
		return true
	}
}

func toHourSet(hours []int) map[int]bool {
	if len(hours) == 0 {
		return nil
	}
	m := make(map[int]bool, len(hours))
	for _, h := range hours {
		if h >= 0 && h <= 23 {
			m[h] = true
		}
	}
	return m
}

func toMonthSet(months []time.Month) map[time.Month]bool {
	if len(months) == 0 {
		return nil
	}
	m := make(map[time.Month]bool, len(months))
	for _, mo := range months {
		if mo >= time.January && mo <= time.December {
			m[mo] = true
		}
	}
	return m
}

// Missing reports whether the sample carries no usable value.
func (p Sample) Missing() bool { return math.IsNaN(p.Value) }

// UnmarshalJSON accepts a null or absent value as a gap, since JSON cannot
// carry NaN.
func (p *Sample) UnmarshalJSON(b []byte) error {
	var w struct {
		Ts    time.Time `json:"ts"`
		Value *float64  `json:"value"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	p.Ts = w.Ts
	if w.Value == nil {
		p.Value = math.NaN()
	} else {
		p.Value = *w.Value
	}
	return nil
}

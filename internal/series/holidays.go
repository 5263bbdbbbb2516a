// v1
// internal/series/holidays.go
package series

import (
	"fmt"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/dk"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/us"
)

// DateRange is an inclusive custom holiday interval supplied by the caller,
// e.g. a site shutdown week.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// dateOnly drops the clock while keeping the timestamp's own calendar date,
// so zoned timestamps near midnight stay on their local day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r DateRange) contains(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(dateOnly(r.Start)) && !d.After(dateOnly(r.End))
}

// HolidayCalendar answers whether a timestamp's date is a public holiday in
// the configured country or falls inside a custom range.
type HolidayCalendar struct {
	cal    *cal.Calendar
	custom []DateRange
}

var countryHolidays = map[string][]*cal.Holiday{
	"DE": de.Holidays,
	"DK": dk.Holidays,
	"FR": fr.Holidays,
	"GB": gb.Holidays,
	"NL": nl.Holidays,
	"US": us.Holidays,
}

// NewHolidayCalendar builds a calendar for an ISO country code plus custom
// ranges. An empty country code yields a custom-ranges-only calendar.
// Unknown codes are a configuration error.
func NewHolidayCalendar(country string, custom []DateRange) (*HolidayCalendar, error) {
	hc := &HolidayCalendar{custom: custom}
	code := strings.ToUpper(strings.TrimSpace(country))
	if code == "" {
		return hc, nil
	}
	hols, ok := countryHolidays[code]
	if !ok {
		return nil, fmt.Errorf("unsupported holiday country %q", country)
	}
	c := &cal.Calendar{}
	c.AddHoliday(hols...)
	hc.cal = c
	return hc, nil
}

// IsHoliday reports whether the timestamp's date is excluded. Both the actual
// and the observed date of a public holiday count.
func (hc *HolidayCalendar) IsHoliday(t time.Time) bool {
	if hc == nil {
		return false
	}
	if hc.cal != nil {
		actual, observed, _ := hc.cal.IsHoliday(t)
		if actual || observed {
			return true
		}
	}
	for _, r := range hc.custom {
		if r.contains(t) {
			return true
		}
	}
	return false
}

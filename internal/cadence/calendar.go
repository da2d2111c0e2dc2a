package cadence

import "time"

// Calendar decides which days count for business-day arithmetic. The default
// treats weekends as the only non-business days; a holiday-aware calendar can
// be plugged in without touching the interval math.
type Calendar interface {
	// IsBusinessDay reports whether t falls on a working day
	IsBusinessDay(t time.Time) bool
}

type weekendCalendar struct{}

// NewWeekendCalendar returns the default calendar: Monday through Friday are
// business days, no holidays.
func NewWeekendCalendar() Calendar {
	return weekendCalendar{}
}

func (weekendCalendar) IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// holidayCalendar layers a fixed holiday list over another calendar
type holidayCalendar struct {
	base     Calendar
	holidays map[string]struct{}
}

// NewHolidayCalendar wraps base with a set of holiday dates that are never
// business days.
func NewHolidayCalendar(base Calendar, holidays []time.Time) Calendar {
	set := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		set[h.Format("2006-01-02")] = struct{}{}
	}
	return &holidayCalendar{base: base, holidays: set}
}

func (c *holidayCalendar) IsBusinessDay(t time.Time) bool {
	if _, ok := c.holidays[t.Format("2006-01-02")]; ok {
		return false
	}
	return c.base.IsBusinessDay(t)
}

// AddBusinessDays returns the date the given number of business days after
// start, per the calendar.
func AddBusinessDays(cal Calendar, start time.Time, days int) time.Time {
	result := start
	for added := 0; added < days; {
		result = result.AddDate(0, 0, 1)
		if cal.IsBusinessDay(result) {
			added++
		}
	}
	return result
}

package analytics

import "time"

// DayLayout is the civil-date format used on the wire
const DayLayout = "2006-01-02"

// DateRange is an inclusive span of civil days in a fixed location. Start and
// End are the first instants of their days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange keeps the civil date of each end, anchors it at the start of
// that day in loc, and swaps the ends when given in reverse.
func NewDateRange(start, end time.Time, loc *time.Location) DateRange {
	if loc == nil {
		loc = time.UTC
	}
	s := startOfDay(start.Year(), start.Month(), start.Day(), loc)
	e := startOfDay(end.Year(), end.Month(), end.Day(), loc)
	if e.Before(s) {
		s, e = e, s
	}
	return DateRange{Start: s, End: e}
}

// Days returns the number of calendar days in the range
func (r DateRange) Days() int {
	return int(civilUTC(r.End).Sub(civilUTC(r.Start))/(24*time.Hour)) + 1
}

// Each returns the first instant of every day in ascending order. Days are
// stepped on the civil calendar so DST shifts never repeat or skip a date.
func (r DateRange) Each() []time.Time {
	n := r.Days()
	first := civilUTC(r.Start)
	loc := r.Start.Location()
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		c := first.AddDate(0, 0, i)
		days = append(days, startOfDay(c.Year(), c.Month(), c.Day(), loc))
	}
	return days
}

// Window returns the first and last instant covered by the range
func (r DateRange) Window() (time.Time, time.Time) {
	_, last := DayBounds(r.End)
	return r.Start, last
}

// DayBounds returns the first and last instant (microsecond precision) of
// the civil day containing t, in t's location
func DayBounds(t time.Time) (time.Time, time.Time) {
	loc := t.Location()
	start := startOfDay(t.Year(), t.Month(), t.Day(), loc)
	next := civilUTC(start).AddDate(0, 0, 1)
	return start, startOfDay(next.Year(), next.Month(), next.Day(), loc).Add(-time.Microsecond)
}

// startOfDay returns the first instant of the civil date in loc. When
// midnight is skipped by a DST jump the day starts at the transition.
func startOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if t.Day() != d {
		// normalized into the previous day; the zone ends at the jump
		_, end := t.ZoneBounds()
		if !end.IsZero() {
			return end
		}
	}
	return t
}

// civilUTC maps the civil date of t onto a UTC midnight
func civilUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

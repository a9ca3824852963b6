package utils

import (
	"time"

	"macro-observer/src/logger"

	"github.com/scmhub/calendar"
)

// -----------------------------------------------------------------------------
// ReleaseScheduler decides when a background refresh is worth running.
// Statistical agencies and the Fed publish on US business days; polling the
// provider on weekends and federal holidays only burns API quota. MIC codes
// are ISO 10383; xnys tracks the US holiday schedule closely enough for
// release timing.
// -----------------------------------------------------------------------------

type ReleaseScheduler struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewReleaseScheduler(l *logger.Logger) *ReleaseScheduler {
	cal := calendar.GetCalendar("xnys")
	if cal == nil {
		l.Warning("Failed to load xnys calendar, falling back to Mon-Fri.")
		loc, _ := time.LoadLocation("America/New_York")
		if loc == nil {
			loc = time.UTC
		}
		return &ReleaseScheduler{Fallback: true, Timezone: loc, Logger: l}
	}
	return &ReleaseScheduler{Calendar: cal, Timezone: cal.Loc, Logger: l}
}

// -----------------------------------------------------------------------------

// IsReleaseDay reports whether new data can plausibly appear on this date.
func (rs *ReleaseScheduler) IsReleaseDay(date time.Time) bool {
	if rs.Timezone != nil {
		date = date.In(rs.Timezone)
	}

	if rs.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return rs.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// ShouldRefresh gates the periodic refresh loop. The first refresh of a
// business day after a quiet stretch is always allowed so the table catches
// up on Monday morning.
func (rs *ReleaseScheduler) ShouldRefresh(now, lastRefresh time.Time) bool {
	if rs.IsReleaseDay(now) {
		return true
	}
	// Off-day: refresh only if the last cycle predates the most recent
	// release day entirely, i.e. we have never seen that day's data. A
	// refresh that ran at any point during that day already covers it.
	prev := rs.previousReleaseDay(now)
	return lastRefresh.Before(startOfDay(prev))
}

// -----------------------------------------------------------------------------

func (rs *ReleaseScheduler) previousReleaseDay(from time.Time) time.Time {
	day := from.AddDate(0, 0, -1)
	for i := 0; i < 14; i++ {
		if rs.IsReleaseDay(day) {
			return day
		}
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// -----------------------------------------------------------------------------

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

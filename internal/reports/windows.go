package reports

import (
	"time"

	"github.com/delizzia/pos-backend/pkg/clock"
	"github.com/delizzia/pos-backend/pkg/enums"
)

// Window is an inclusive report period with its default bucket size.
type Window struct {
	Start       time.Time
	End         time.Time
	Granularity enums.BucketGranularity
}

// DailyWindow covers the calendar day of date in loc, bucketed by hour.
func DailyWindow(date time.Time, loc *time.Location) Window {
	start := startOfDay(date, loc)
	return Window{Start: start, End: endOf(start.AddDate(0, 0, 1)), Granularity: enums.BucketGranularityHour}
}

// WeeklyWindow covers seven days from the day of start, bucketed by day.
func WeeklyWindow(start time.Time, loc *time.Location) Window {
	from := startOfDay(start, loc)
	return Window{Start: from, End: endOf(from.AddDate(0, 0, 7)), Granularity: enums.BucketGranularityDay}
}

// MonthlyWindow covers a calendar month in loc, bucketed by week.
func MonthlyWindow(year int, month time.Month, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Window{Start: from, End: endOf(from.AddDate(0, 1, 0)), Granularity: enums.BucketGranularityWeek}
}

// DefaultWindow is today in loc.
func DefaultWindow(c clock.Clock, loc *time.Location) Window {
	return DailyWindow(clock.OrReal(c).Now(), loc)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func endOf(next time.Time) time.Time {
	return next.Add(-time.Nanosecond)
}

package core

import (
	"fmt"
	"strings"
	"time"
)

// Period is a named window for summary queries.
type Period string

const (
	Last7Days   Period = "last-7-days"
	Last30Days  Period = "last-30-days"
	MonthToDate Period = "month-to-date"
	YearToDate  Period = "year-to-date"
	AllTime     Period = "all-time"
)

// Periods lists every supported token in display order.
func Periods() []Period {
	return []Period{Last7Days, Last30Days, MonthToDate, YearToDate, AllTime}
}

func (p Period) String() string { return string(p) }

// Label returns a human readable name.
func (p Period) Label() string {
	switch p {
	case Last7Days:
		return "Last 7 days"
	case Last30Days:
		return "Last 30 days"
	case MonthToDate:
		return "Month-to-Date"
	case YearToDate:
		return "Year-to-Date"
	case AllTime:
		return "All time"
	default:
		return string(p)
	}
}

// ParsePeriod accepts the canonical tokens plus a few short aliases.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "last-7-days", "7d", "week":
		return Last7Days, nil
	case "last-30-days", "30d", "":
		return Last30Days, nil
	case "month-to-date", "mtd", "month":
		return MonthToDate, nil
	case "year-to-date", "ytd", "year":
		return YearToDate, nil
	case "all-time", "all":
		return AllTime, nil
	default:
		return Last30Days, fmt.Errorf("unknown period %s", s)
	}
}

// Range is an inclusive [From, To] instant range.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// Days counts the calendar days covered by the range, at least 1.
func (r Range) Days() int {
	n := DaysBetween(r.From, r.To) + 1
	if n < 1 {
		return 1
	}
	return n
}

// Range resolves the period against now. The end is always the end of now's day;
// all-time starts at the Unix epoch.
func (p Period) Range(now time.Time) Range {
	end := EndOfDay(now)
	today := StartOfDay(now)
	var start time.Time
	switch p {
	case Last7Days:
		start = today.AddDate(0, 0, -6)
	case Last30Days:
		start = today.AddDate(0, 0, -29)
	case MonthToDate:
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	case YearToDate:
		start = time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
	default:
		start = time.Unix(0, 0).In(today.Location())
	}
	return Range{From: start, To: end}
}

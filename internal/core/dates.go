package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	dayKeyLayout    = "2006-01-02"
	localDateLayout = "2006/01/02"
	listNameLayout  = "Mon 2 Jan 2006"
)

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DayKey is the date-only key used for list ids and time series buckets.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}

// ToLocalDate formats a day for display.
func ToLocalDate(t time.Time) string {
	return t.Format(localDateLayout)
}

// ListName is the display label a new list gets for its day.
func ListName(t time.Time) string {
	return "Shopping " + t.Format(listNameLayout)
}

// ParseLocalDate accepts date-only keys, display dates and RFC 3339 timestamps.
// Date-only inputs are interpreted in the local time zone.
func ParseLocalDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty date", ErrInvalidDate)
	}
	for _, layout := range []string{dayKeyLayout, localDateLayout, "2006.01.02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// DaysBetween counts whole calendar days from a to b (negative when b is earlier).
// Wall-clock time and DST shifts are ignored.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// Date returns the calendar day the list represents. CreatedAt wins; the id is
// the fallback for hand-edited data.
func (s ShoppingList) Date() (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s.CreatedAt); err == nil {
		return StartOfDay(t), true
	}
	if t, err := time.ParseInLocation(dayKeyLayout, s.ID, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// NewShoppingList builds an empty list for the day containing date.
func NewShoppingList(date time.Time) ShoppingList {
	day := StartOfDay(date)
	return ShoppingList{
		ID:        DayKey(day),
		Name:      ListName(day),
		CreatedAt: day.Format(time.RFC3339),
		Items:     []ShoppingItem{},
	}
}

package schedule

import (
	"fmt"
	"time"
)

// WeekDay is a day of the week with a stable Monday-first ordinal (1–7).
// The ordinal is what gets persisted, so it must never change.
type WeekDay int

const (
	Monday WeekDay = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = map[WeekDay]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

func (d WeekDay) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("WeekDay(%d)", int(d))
}

// Valid reports whether d is one of the seven defined days.
func (d WeekDay) Valid() bool {
	return d >= Monday && d <= Sunday
}

// FromTime maps a timestamp to its WeekDay. This is the only place the
// stdlib convention (Sunday=0) meets the Monday-first ordinals; every other
// weekday comparison must go through here.
func FromTime(t time.Time) WeekDay {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return Sunday
	}
	return Monday
}

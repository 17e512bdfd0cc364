package schedule

import "time"

const dayLayout = "2006-01-02"

// StartOfDay truncates a timestamp to midnight in its own location. Day-keyed
// lookups must use this as the canonical form.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayKey formats a timestamp as the YYYY-MM-DD key records are stored under.
func DayKey(t time.Time) string {
	return t.Format(dayLayout)
}

// ParseDay parses a YYYY-MM-DD day key.
func ParseDay(key string) (time.Time, error) {
	return time.Parse(dayLayout, key)
}

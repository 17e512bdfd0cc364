package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Schedule is the set of weekdays a tracker recurs on. An empty schedule
// means the tracker is an irregular event and is due every day.
type Schedule []WeekDay

// IsEmpty reports whether the schedule has no days, i.e. the tracker is an
// irregular event rather than a weekly habit.
func (s Schedule) IsEmpty() bool {
	return len(s) == 0
}

// Contains reports whether the schedule includes the given day.
func (s Schedule) Contains(d WeekDay) bool {
	for _, day := range s {
		if day == d {
			return true
		}
	}
	return false
}

// Normalize returns the schedule sorted by ordinal with duplicates and
// invalid days removed.
func (s Schedule) Normalize() Schedule {
	seen := make(map[WeekDay]bool, len(s))
	var out Schedule
	for _, d := range s {
		if !d.Valid() || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports whether two schedules describe the same day set.
func (s Schedule) Equal(other Schedule) bool {
	a, b := s.Normalize(), other.Normalize()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Encode serializes the schedule as comma-joined ordinals, e.g. "1,3,5".
// The output is normalized so encoding is order-independent.
func (s Schedule) Encode() string {
	norm := s.Normalize()
	if len(norm) == 0 {
		return ""
	}
	parts := make([]string, len(norm))
	for i, d := range norm {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

// Decode parses a comma-joined ordinal list back into a Schedule.
// Decode(s.Encode()) always reproduces an equal set.
func Decode(encoded string) (Schedule, error) {
	if encoded == "" {
		return nil, nil
	}
	var s Schedule
	for _, part := range strings.Split(encoded, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid weekday ordinal %q", part)
		}
		d := WeekDay(n)
		if !d.Valid() {
			return nil, fmt.Errorf("weekday ordinal out of range: %d", n)
		}
		s = append(s, d)
	}
	return s.Normalize(), nil
}

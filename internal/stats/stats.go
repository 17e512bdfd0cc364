// Package stats computes the aggregate numbers for the statistics screen.
// Everything is recomputed from the record and tracker snapshots on each
// call; there is no incremental state to get out of sync.
package stats

import (
	"sort"

	"github.com/google/uuid"

	"github.com/avolkova/tracker/internal/model"
	"github.com/avolkova/tracker/internal/schedule"
)

type Statistics struct {
	BestStreak          int     `json:"best_streak"`
	PerfectDays         int     `json:"perfect_days"`
	TotalCompletions    int     `json:"total_completions"`
	AveragePerActiveDay float64 `json:"average_per_active_day"`
}

// Compute aggregates the full record set against the full tracker list.
// Duplicate (tracker, day) records collapse before counting days, but every
// record still contributes to the total.
func Compute(records []model.TrackerRecord, trackers []model.Tracker) Statistics {
	byDay := make(map[string]map[uuid.UUID]bool)
	for _, r := range records {
		if byDay[r.Day] == nil {
			byDay[r.Day] = make(map[uuid.UUID]bool)
		}
		byDay[r.Day][r.TrackerID] = true
	}

	return Statistics{
		BestStreak:          bestStreak(byDay),
		PerfectDays:         perfectDays(byDay, trackers),
		TotalCompletions:    len(records),
		AveragePerActiveDay: average(len(records), len(byDay)),
	}
}

// bestStreak walks the distinct completion days in order and finds the
// longest run of consecutive calendar days. 0 with no records, 1 when
// records exist but never on adjacent days.
func bestStreak(byDay map[string]map[uuid.UUID]bool) int {
	if len(byDay) == 0 {
		return 0
	}

	keys := make([]string, 0, len(byDay))
	for day := range byDay {
		keys = append(keys, day)
	}
	sort.Strings(keys)

	best, current := 1, 1
	for i := 1; i < len(keys); i++ {
		prev, err := schedule.ParseDay(keys[i-1])
		if err != nil {
			continue
		}
		cur, err := schedule.ParseDay(keys[i])
		if err != nil {
			continue
		}
		if schedule.SameDay(prev.AddDate(0, 0, 1), cur) {
			current++
			if current > best {
				best = current
			}
		} else {
			current = 1
		}
	}
	return best
}

// perfectDays counts distinct completion days on which every due tracker was
// completed. A day whose due-set is empty is never perfect, stray
// completions or not.
func perfectDays(byDay map[string]map[uuid.UUID]bool, trackers []model.Tracker) int {
	if len(trackers) == 0 {
		return 0
	}

	count := 0
	for day, completed := range byDay {
		t, err := schedule.ParseDay(day)
		if err != nil {
			continue
		}
		weekday := schedule.FromTime(t)

		due := 0
		allDone := true
		for _, tr := range trackers {
			if !tr.Schedule.IsEmpty() && !tr.Schedule.Contains(weekday) {
				continue
			}
			due++
			if !completed[tr.ID] {
				allDone = false
				break
			}
		}
		if due > 0 && allDone {
			count++
		}
	}
	return count
}

func average(total, activeDays int) float64 {
	if activeDays == 0 {
		return 0
	}
	return float64(total) / float64(activeDays)
}

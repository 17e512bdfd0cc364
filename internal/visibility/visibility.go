// Package visibility decides which categories and trackers the list screen
// shows for a given day, search text, and status filter. It is a pure
// function over snapshots; nothing here touches storage.
package visibility

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avolkova/tracker/internal/model"
	"github.com/avolkova/tracker/internal/schedule"
)

// Completions is the ledger view the status filter needs.
type Completions interface {
	IsCompleted(trackerID uuid.UUID, day time.Time) bool
}

// Visible filters the category tree down to what should be rendered for
// refDate. Trackers must match the day's schedule (an empty schedule matches
// every day) and, if searchText is non-empty, contain it case-insensitively.
// A completed/not_completed filter then consults the ledger for refDate;
// all and today pass everything through. Categories left without trackers
// are dropped. Input order is preserved.
func Visible(all []model.TrackerCategory, refDate time.Time, searchText string, filter model.Filter, completions Completions) []model.TrackerCategory {
	day := schedule.FromTime(refDate)
	search := strings.ToLower(strings.TrimSpace(searchText))

	var out []model.TrackerCategory
	for _, cat := range all {
		var kept []model.Tracker
		for _, tr := range cat.Trackers {
			if !matchesDay(tr, day) {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(tr.Name), search) {
				continue
			}
			if !matchesFilter(tr, refDate, filter, completions) {
				continue
			}
			kept = append(kept, tr)
		}
		if len(kept) == 0 {
			continue
		}
		filtered := cat
		filtered.Trackers = kept
		out = append(out, filtered)
	}
	return out
}

// AnyDue reports whether any tracker at all is due on refDate, ignoring
// search and status filters. The UI uses this to decide whether the filter
// control is worth showing.
func AnyDue(all []model.TrackerCategory, refDate time.Time) bool {
	day := schedule.FromTime(refDate)
	for _, cat := range all {
		for _, tr := range cat.Trackers {
			if matchesDay(tr, day) {
				return true
			}
		}
	}
	return false
}

func matchesDay(tr model.Tracker, day schedule.WeekDay) bool {
	// Irregular events have no weekly recurrence and are due every day.
	return tr.Schedule.IsEmpty() || tr.Schedule.Contains(day)
}

func matchesFilter(tr model.Tracker, refDate time.Time, filter model.Filter, completions Completions) bool {
	switch filter {
	case model.FilterCompleted:
		return completions != nil && completions.IsCompleted(tr.ID, refDate)
	case model.FilterNotCompleted:
		return completions == nil || !completions.IsCompleted(tr.ID, refDate)
	default:
		// "", all, and today leave the schedule/search result as is.
		return true
	}
}

// Package ledger holds the in-memory set of completion records and the
// toggle semantics the UI layer drives. It is a snapshot structure: build it
// from the store's records, query it, throw it away on the next change
// notification.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/avolkova/tracker/internal/model"
	"github.com/avolkova/tracker/internal/schedule"
)

// ErrFutureDate is returned when toggling a completion for a day strictly
// after today.
var ErrFutureDate = errors.New("cannot complete a tracker for a future day")

type recordKey struct {
	trackerID uuid.UUID
	day       string
}

// Ledger is a set of completion records uniqued by (tracker, calendar day).
// It is owned by a single goroutine; snapshots are rebuilt on demand.
type Ledger struct {
	records map[recordKey]struct{}
	now     func() time.Time
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{
		records: make(map[recordKey]struct{}),
		now:     time.Now,
	}
}

// FromRecords builds a ledger from a record snapshot. Duplicate records
// collapse silently.
func FromRecords(records []model.TrackerRecord) *Ledger {
	l := New()
	for _, r := range records {
		l.records[recordKey{trackerID: r.TrackerID, day: r.Day}] = struct{}{}
	}
	return l
}

// SetClock overrides the time source used for future-day checks.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

func (l *Ledger) key(trackerID uuid.UUID, day time.Time) recordKey {
	return recordKey{trackerID: trackerID, day: schedule.DayKey(schedule.StartOfDay(day))}
}

// Toggle flips the completion state for (trackerID, day) and reports the new
// state. Days after today are rejected with ErrFutureDate and the ledger is
// left unchanged. Calling twice with the same arguments restores the
// original state.
func (l *Ledger) Toggle(trackerID uuid.UUID, day time.Time) (nowCompleted bool, err error) {
	// Compare day keys, not instants: day may carry a different location than
	// the clock (parsed dates are UTC, the clock is local), and YYYY-MM-DD
	// keys order lexically.
	if schedule.DayKey(day) > schedule.DayKey(l.now()) {
		return false, ErrFutureDate
	}

	k := l.key(trackerID, day)
	if _, ok := l.records[k]; ok {
		delete(l.records, k)
		return false, nil
	}
	l.records[k] = struct{}{}
	return true, nil
}

// IsCompleted reports whether the tracker has a record on the given day.
func (l *Ledger) IsCompleted(trackerID uuid.UUID, day time.Time) bool {
	_, ok := l.records[l.key(trackerID, day)]
	return ok
}

// CompletionCount counts the tracker's records across all days. Unknown ids
// simply count zero.
func (l *Ledger) CompletionCount(trackerID uuid.UUID) int {
	n := 0
	for k := range l.records {
		if k.trackerID == trackerID {
			n++
		}
	}
	return n
}

// DeleteAll removes every record for the tracker. Used when the tracker
// itself is deleted.
func (l *Ledger) DeleteAll(trackerID uuid.UUID) {
	for k := range l.records {
		if k.trackerID == trackerID {
			delete(l.records, k)
		}
	}
}

// Len returns the total number of records.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns the ledger contents as a record slice, in no particular
// order.
func (l *Ledger) Records() []model.TrackerRecord {
	out := make([]model.TrackerRecord, 0, len(l.records))
	for k := range l.records {
		out = append(out, model.TrackerRecord{TrackerID: k.trackerID, Day: k.day})
	}
	return out
}

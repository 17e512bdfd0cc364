package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avolkova/tracker/internal/model"
	"github.com/avolkova/tracker/internal/schedule"
)

type RecordStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db, now: time.Now}
}

// SetClock overrides the time source used for future-day checks.
func (s *RecordStore) SetClock(now func() time.Time) {
	s.now = now
}

// futureDay compares day keys, not instants: day may carry a different
// location than the clock (parsed dates are UTC, the clock is local), and
// YYYY-MM-DD keys order lexically.
func (s *RecordStore) futureDay(day time.Time) bool {
	return schedule.DayKey(day) > schedule.DayKey(s.now())
}

func (s *RecordStore) List() ([]model.TrackerRecord, error) {
	return s.list(`SELECT tracker_id, day FROM records ORDER BY day ASC, tracker_id ASC`)
}

func (s *RecordStore) ListByTracker(trackerID uuid.UUID) ([]model.TrackerRecord, error) {
	return s.list(
		`SELECT tracker_id, day FROM records WHERE tracker_id = ? ORDER BY day ASC`,
		trackerID.String(),
	)
}

func (s *RecordStore) list(query string, args ...any) ([]model.TrackerRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []model.TrackerRecord
	for rows.Next() {
		var r model.TrackerRecord
		var id string
		if err := rows.Scan(&id, &r.Day); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.TrackerID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse record tracker id: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Add creates a completion record for (trackerID, day). Adding one that
// already exists is not an error; the returned bool reports whether a row
// was actually inserted, so callers can spot double submits.
func (s *RecordStore) Add(trackerID uuid.UUID, day time.Time) (inserted bool, err error) {
	if s.futureDay(day) {
		return false, ErrFutureDay
	}

	result, err := s.db.Exec(
		`INSERT OR IGNORE INTO records (tracker_id, day) VALUES (?, ?)`,
		trackerID.String(), schedule.DayKey(day),
	)
	if err != nil {
		return false, fmt.Errorf("insert record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Delete removes the record for (trackerID, day). Missing records fail with
// ErrNotFound.
func (s *RecordStore) Delete(trackerID uuid.UUID, day time.Time) error {
	result, err := s.db.Exec(
		`DELETE FROM records WHERE tracker_id = ? AND day = ?`,
		trackerID.String(), schedule.DayKey(day),
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Toggle flips the completion state for (trackerID, day) and reports the
// new state. Future days are rejected with ErrFutureDay and nothing changes.
// The delete/insert pair runs in one transaction so concurrent toggles for
// the same record serialize instead of racing into a duplicate insert.
func (s *RecordStore) Toggle(trackerID uuid.UUID, day time.Time) (nowCompleted bool, err error) {
	if s.futureDay(day) {
		return false, ErrFutureDay
	}

	key := schedule.DayKey(day)
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin toggle: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`DELETE FROM records WHERE tracker_id = ? AND day = ?`, trackerID.String(), key)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		if _, err := tx.Exec(`INSERT INTO records (tracker_id, day) VALUES (?, ?)`, trackerID.String(), key); err != nil {
			return false, fmt.Errorf("insert record: %w", err)
		}
		nowCompleted = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit toggle: %w", err)
	}
	return nowCompleted, nil
}

// IsCompleted reports whether the tracker has a record on the given day.
func (s *RecordStore) IsCompleted(trackerID uuid.UUID, day time.Time) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM records WHERE tracker_id = ? AND day = ?`,
		trackerID.String(), schedule.DayKey(day),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check record: %w", err)
	}
	return n > 0, nil
}

// CountByTracker counts the tracker's records across all days.
func (s *RecordStore) CountByTracker(trackerID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM records WHERE tracker_id = ?`,
		trackerID.String(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkova/tracker/internal/model"
	"github.com/avolkova/tracker/internal/schedule"
)

type TrackerStore struct {
	db *sql.DB
}

func NewTrackerStore(db *sql.DB) *TrackerStore {
	return &TrackerStore{db: db}
}

// PinnedTitle is the fallback section for trackers whose category was
// deleted or never set.
const PinnedTitle = "Pinned"

func scanTracker(scanner interface{ Scan(...any) error }) (*model.Tracker, error) {
	var t model.Tracker
	var id, scheduleStr, colorHex string
	var categoryID sql.NullInt64

	err := scanner.Scan(
		&id, &t.Name, &t.Emoji, &colorHex, &scheduleStr,
		&categoryID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse tracker id: %w", err)
	}
	t.Schedule, err = schedule.Decode(scheduleStr)
	if err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	t.Color, err = model.ParseHex(colorHex)
	if err != nil {
		return nil, fmt.Errorf("decode color: %w", err)
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	return &t, nil
}

const trackerCols = `id, name, emoji, color, schedule, category_id, created_at, updated_at`

func nullCategory(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (s *TrackerStore) Create(t model.Tracker) (*model.Tracker, error) {
	_, err := s.db.Exec(
		`INSERT INTO trackers (id, name, emoji, color, schedule, category_id) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.Name, t.Emoji, t.Color.Hex(), t.Schedule.Encode(), nullCategory(t.CategoryID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert tracker: %w", err)
	}
	return s.GetByID(t.ID)
}

func (s *TrackerStore) GetByID(id uuid.UUID) (*model.Tracker, error) {
	row := s.db.QueryRow(`SELECT `+trackerCols+` FROM trackers WHERE id = ?`, id.String())
	t, err := scanTracker(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tracker: %w", err)
	}
	return t, nil
}

func (s *TrackerStore) List() ([]model.Tracker, error) {
	return s.list(`SELECT ` + trackerCols + ` FROM trackers ORDER BY created_at ASC, id ASC`)
}

func (s *TrackerStore) ListByCategory(categoryID int64) ([]model.Tracker, error) {
	return s.list(
		`SELECT `+trackerCols+` FROM trackers WHERE category_id = ? ORDER BY created_at ASC, id ASC`,
		categoryID,
	)
}

func (s *TrackerStore) list(query string, args ...any) ([]model.Tracker, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trackers: %w", err)
	}
	defer rows.Close()

	var trackers []model.Tracker
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tracker: %w", err)
		}
		trackers = append(trackers, *t)
	}
	return trackers, rows.Err()
}

// Update replaces the tracker's mutable fields wholesale (edit is a full
// replacement, not a patch). Missing ids fail with ErrNotFound.
func (s *TrackerStore) Update(t model.Tracker) (*model.Tracker, error) {
	result, err := s.db.Exec(
		`UPDATE trackers SET name = ?, emoji = ?, color = ?, schedule = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		t.Name, t.Emoji, t.Color.Hex(), t.Schedule.Encode(), nullCategory(t.CategoryID), t.ID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("update tracker: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(t.ID)
}

// Delete removes the tracker; its completion records go with it
// (ON DELETE CASCADE).
func (s *TrackerStore) Delete(id uuid.UUID) error {
	result, err := s.db.Exec(`DELETE FROM trackers WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete tracker: %w", err)
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

// ListCategorized assembles the category/tracker tree the visibility filter
// consumes: categories alphabetical, trackers in creation order, and any
// tracker without a category grouped under a pinned section at the top.
func (s *TrackerStore) ListCategorized() ([]model.TrackerCategory, error) {
	catRows, err := s.db.Query(`SELECT ` + categoryCols + ` FROM categories ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer catRows.Close()

	var categories []model.TrackerCategory
	for catRows.Next() {
		c, err := scanCategory(catRows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	trackers, err := s.List()
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]model.Tracker)
	var pinned []model.Tracker
	for _, t := range trackers {
		if t.CategoryID == nil {
			pinned = append(pinned, t)
			continue
		}
		byCategory[*t.CategoryID] = append(byCategory[*t.CategoryID], t)
	}

	var out []model.TrackerCategory
	if len(pinned) > 0 {
		out = append(out, model.TrackerCategory{Title: PinnedTitle, Trackers: pinned})
	}
	for _, c := range categories {
		c.Trackers = byCategory[c.ID]
		out = append(out, c)
	}
	return out, nil
}

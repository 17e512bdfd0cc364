package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avolkova/tracker/internal/schedule"
)

var (
	ErrEmptyName  = errors.New("tracker name is empty")
	ErrEmptyTitle = errors.New("category title is empty")
)

// Tracker is a habit (non-empty schedule) or an irregular one-off event
// (empty schedule, due every day).
type Tracker struct {
	ID         uuid.UUID         `json:"id"`
	Name       string            `json:"name"`
	Emoji      string            `json:"emoji"`
	Color      Color             `json:"color"`
	Schedule   schedule.Schedule `json:"schedule"`
	CategoryID *int64            `json:"category_id"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// IsHabit reports whether the tracker recurs weekly.
func (t Tracker) IsHabit() bool {
	return !t.Schedule.IsEmpty()
}

// NewTracker validates input and builds a Tracker with a fresh id. The name
// is trimmed and must be non-empty; the schedule is normalized.
func NewTracker(name, emoji string, color Color, sched schedule.Schedule, categoryID *int64) (Tracker, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tracker{}, ErrEmptyName
	}
	return Tracker{
		ID:         uuid.New(),
		Name:       name,
		Emoji:      emoji,
		Color:      color,
		Schedule:   sched.Normalize(),
		CategoryID: categoryID,
	}, nil
}

type TrackerCategory struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Trackers  []Tracker `json:"trackers"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackerRecord states that a tracker was completed on a calendar day.
// Identity is the (TrackerID, Day) pair; Day is a YYYY-MM-DD key.
type TrackerRecord struct {
	TrackerID uuid.UUID `json:"tracker_id"`
	Day       string    `json:"day"`
}

// Filter is a display-only refinement applied on top of the schedule and
// search filters. It never affects persisted data.
type Filter string

const (
	FilterAll          Filter = "all"
	FilterToday        Filter = "today"
	FilterCompleted    Filter = "completed"
	FilterNotCompleted Filter = "not_completed"
)

// ParseFilter maps a query-string value to a Filter. An empty value means
// no filter; anything unrecognized is an error.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case FilterAll, FilterToday, FilterCompleted, FilterNotCompleted:
		return Filter(s), nil
	}
	return "", errors.New("unknown filter: " + s)
}

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/avolkova/tracker/internal/model"
)

type CategoryStore struct {
	db *sql.DB
}

func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func scanCategory(scanner interface{ Scan(...any) error }) (*model.TrackerCategory, error) {
	var c model.TrackerCategory
	err := scanner.Scan(&c.ID, &c.Title, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const categoryCols = `id, title, created_at`

// Create inserts a category with the given title, or returns the existing
// one when the title is already taken. Titles are unique; creating "X" twice
// must not produce two categories.
func (s *CategoryStore) Create(title string) (*model.TrackerCategory, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, model.ErrEmptyTitle
	}

	existing, err := s.GetByTitle(title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	result, err := s.db.Exec(`INSERT INTO categories (title) VALUES (?)`, title)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *CategoryStore) GetByID(id int64) (*model.TrackerCategory, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) GetByTitle(title string) (*model.TrackerCategory, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE title = ?`, title)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category by title: %w", err)
	}
	return c, nil
}

func (s *CategoryStore) List() ([]model.TrackerCategory, error) {
	rows, err := s.db.Query(`SELECT ` + categoryCols + ` FROM categories ORDER BY title ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.TrackerCategory
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

// Update renames a category. Missing ids fail with ErrNotFound.
func (s *CategoryStore) Update(id int64, title string) (*model.TrackerCategory, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, model.ErrEmptyTitle
	}

	result, err := s.db.Exec(`UPDATE categories SET title = ? WHERE id = ?`, title, id)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(id)
}

// Delete removes a category. Trackers referencing it keep existing with a
// null category (ON DELETE SET NULL); their records are untouched.
func (s *CategoryStore) Delete(id int64) error {
	result, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
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

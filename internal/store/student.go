package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tutorfeed/internal/feedback"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Student is a stored student row. ID is internal and must never leak
// into generated report text; Name is the display identity.
type Student struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Grade     string    `db:"grade"`
	CreatedAt time.Time `db:"created_at"`
}

// Info converts the row to the report-facing identity.
func (s Student) Info() feedback.Student {
	return feedback.Student{Name: s.Name, Grade: s.Grade}
}

// StudentRepo manages student rows.
type StudentRepo struct {
	db *sqlx.DB
}

// Create inserts a student. When id is empty a fresh UUID is assigned.
// Returns the stored id.
func (r *StudentRepo) Create(ctx context.Context, id, name, grade string) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO students (id, name, grade) VALUES (?, ?, ?)`,
		id, name, grade)
	if err != nil {
		return "", fmt.Errorf("insert student: %w", err)
	}
	return id, nil
}

// Get returns the student with the given id, or ErrNotFound.
func (r *StudentRepo) Get(ctx context.Context, id string) (*Student, error) {
	var s Student
	err := r.db.GetContext(ctx, &s, `SELECT * FROM students WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return &s, nil
}

// FindByName returns the student with the exact display name, or
// ErrNotFound. Names are not unique; the earliest-registered match wins.
func (r *StudentRepo) FindByName(ctx context.Context, name string) (*Student, error) {
	var s Student
	err := r.db.GetContext(ctx, &s,
		`SELECT * FROM students WHERE name = ? ORDER BY created_at, id LIMIT 1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find student by name: %w", err)
	}
	return &s, nil
}

// List returns all students ordered by name.
func (r *StudentRepo) List(ctx context.Context) ([]Student, error) {
	var out []Student
	if err := r.db.SelectContext(ctx, &out, `SELECT * FROM students ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return out, nil
}

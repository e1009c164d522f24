package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tutorfeed/internal/feedback"
)

// FeedbackRow is a stored generated report tied to one session.
type FeedbackRow struct {
	ID          string    `db:"id"`
	SessionID   int64     `db:"session_id"`
	Improvement string    `db:"improvement"`
	Attitude    string    `db:"attitude"`
	Overall     string    `db:"overall"`
	Raw         string    `db:"raw"`
	Degraded    bool      `db:"degraded"`
	CreatedAt   time.Time `db:"created_at"`
}

// FeedbackRepo manages generated reports.
type FeedbackRepo struct {
	db *sqlx.DB
}

// Save stores the parsed sections together with the raw model output.
// Degraded results are stored as-is so nothing the model produced is
// lost. Returns the new report id.
func (r *FeedbackRepo) Save(ctx context.Context, sessionID int64, raw string, sections feedback.Sections) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feedbacks (id, session_id, improvement, attitude, overall, raw, degraded)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, sessionID, sections.Improvement, sections.Attitude, sections.Overall, raw, sections.Degraded)
	if err != nil {
		return "", fmt.Errorf("insert feedback: %w", err)
	}
	return id, nil
}

// ListByStudent returns the student's reports, newest first.
func (r *FeedbackRepo) ListByStudent(ctx context.Context, studentID string) ([]FeedbackRow, error) {
	var out []FeedbackRow
	err := r.db.SelectContext(ctx, &out,
		`SELECT f.* FROM feedbacks f
		 JOIN sessions s ON s.id = f.session_id
		 WHERE s.student_id = ?
		 ORDER BY f.created_at DESC, f.id DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list feedbacks: %w", err)
	}
	return out, nil
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"tutorfeed/internal/feedback"
)

// SessionRow is a stored session record.
type SessionRow struct {
	ID            int64     `db:"id"`
	StudentID     string    `db:"student_id"`
	Date          time.Time `db:"date"`
	Attitude      int       `db:"attitude"`
	Understanding int       `db:"understanding"`
	Homework      int       `db:"homework"`
	QA            int       `db:"qa"`
	Progress      string    `db:"progress"`
	Memo          string    `db:"memo"`
	CreatedAt     time.Time `db:"created_at"`
}

// Session converts the row to the domain value.
func (r SessionRow) Session() feedback.Session {
	return feedback.Session{
		Date:          r.Date,
		Attitude:      r.Attitude,
		Understanding: r.Understanding,
		Homework:      r.Homework,
		QA:            r.QA,
		Progress:      r.Progress,
		Memo:          r.Memo,
	}
}

// SessionRepo manages session records. Records are append-only: the
// pipeline never mutates a stored session.
type SessionRepo struct {
	db *sqlx.DB
}

// Append stores a new session for the student and returns its id.
func (r *SessionRepo) Append(ctx context.Context, studentID string, s feedback.Session) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (student_id, date, attitude, understanding, homework, qa, progress, memo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		studentID, s.Date, s.Attitude, s.Understanding, s.Homework, s.QA, s.Progress, s.Memo)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("session id: %w", err)
	}
	return id, nil
}

// History returns the student's sessions oldest first. Date ties are
// broken by insertion order (row id), keeping the ordering stable — the
// trend calculator depends on this.
func (r *SessionRepo) History(ctx context.Context, studentID string) ([]feedback.Session, error) {
	rows, err := r.HistoryRows(ctx, studentID)
	if err != nil {
		return nil, err
	}
	out := make([]feedback.Session, len(rows))
	for i, row := range rows {
		out[i] = row.Session()
	}
	return out, nil
}

// HistoryRows is History with storage ids, for display surfaces.
func (r *SessionRepo) HistoryRows(ctx context.Context, studentID string) ([]SessionRow, error) {
	var out []SessionRow
	err := r.db.SelectContext(ctx, &out,
		`SELECT * FROM sessions WHERE student_id = ? ORDER BY date ASC, id ASC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return out, nil
}

// Count returns how many sessions the student has.
func (r *SessionRepo) Count(ctx context.Context, studentID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM sessions WHERE student_id = ?`, studentID)
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

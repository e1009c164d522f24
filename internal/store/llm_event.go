package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"tutorfeed/internal/llm"
)

// LLMEvent is a stored record of one generation backend call.
type LLMEvent struct {
	ID           int64     `db:"id"`
	Timestamp    time.Time `db:"timestamp"`
	Provider     string    `db:"provider"`
	Model        string    `db:"model"`
	Purpose      string    `db:"purpose"`
	InputTokens  int       `db:"input_tokens"`
	OutputTokens int       `db:"output_tokens"`
	LatencyMs    int64     `db:"latency_ms"`
	Success      bool      `db:"success"`
	ErrorMessage string    `db:"error_message"`
	RequestBody  string    `db:"request_body"`
	ResponseBody string    `db:"response_body"`
}

// LLMEventRepo records backend calls. It implements llm.EventSink.
type LLMEventRepo struct {
	db *sqlx.DB
}

var _ llm.EventSink = (*LLMEventRepo)(nil)

// AppendLLMEvent stores one request event.
func (r *LLMEventRepo) AppendLLMEvent(ctx context.Context, data llm.EventData) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO llm_events (provider, model, purpose, input_tokens, output_tokens,
		                         latency_ms, success, error_message, request_body, response_body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
		data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if err != nil {
		return fmt.Errorf("insert llm event: %w", err)
	}
	return nil
}

// List returns the most recent events, newest first. limit <= 0 means all.
func (r *LLMEventRepo) List(ctx context.Context, limit int) ([]LLMEvent, error) {
	q := `SELECT * FROM llm_events ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	var out []LLMEvent
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, fmt.Errorf("list llm events: %w", err)
	}
	return out, nil
}

// Get returns one event by id, or ErrNotFound.
func (r *LLMEventRepo) Get(ctx context.Context, id int64) (*LLMEvent, error) {
	var e LLMEvent
	err := r.db.GetContext(ctx, &e, `SELECT * FROM llm_events WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get llm event: %w", err)
	}
	return &e, nil
}

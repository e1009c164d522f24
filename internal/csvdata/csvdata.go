// Package csvdata imports legacy spreadsheet exports into the store.
//
// The expected file is a comma-separated export with a header row. The
// columns date, student_id, student_name, grade, attitude_score,
// understanding_score, homework_score and qa_score are required;
// subject, progress_text and class_memo are optional. Column order does
// not matter.
package csvdata

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"tutorfeed/internal/feedback"
	"tutorfeed/internal/store"
)

// Record is one parsed row.
type Record struct {
	StudentID   string
	StudentName string
	Grade       string
	Subject     string
	Session     feedback.Session
}

// RowError reports a row that could not be parsed. Line is 1-based and
// counts the header.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Result summarizes an import run.
type Result struct {
	StudentsCreated  int
	SessionsImported int
	Skipped          []RowError
}

var requiredColumns = []string{
	"date", "student_id", "student_name", "grade",
	"attitude_score", "understanding_score", "homework_score", "qa_score",
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "2006.01.02"}

// Parse reads the export and returns the rows that parsed cleanly plus
// a RowError for every row it had to skip. A malformed row never aborts
// the run; only a missing required column or an unreadable stream does.
func Parse(r io.Reader) ([]Record, []RowError, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("missing required column %q", name)
		}
	}

	var (
		records []Record
		skipped []RowError
		line    = 1
	)
	for {
		line++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Reason: err.Error()})
			continue
		}

		rec, err := parseRow(cols, row)
		if err != nil {
			skipped = append(skipped, RowError{Line: line, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func parseRow(cols map[string]int, row []string) (Record, error) {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return Record{}, err
	}

	name := field("student_name")
	if name == "" {
		return Record{}, fmt.Errorf("empty student_name")
	}

	attitude, err := parseScore("attitude_score", field("attitude_score"), false)
	if err != nil {
		return Record{}, err
	}
	understanding, err := parseScore("understanding_score", field("understanding_score"), false)
	if err != nil {
		return Record{}, err
	}
	homework, err := parseScore("homework_score", field("homework_score"), true)
	if err != nil {
		return Record{}, err
	}
	qa, err := parseScore("qa_score", field("qa_score"), false)
	if err != nil {
		return Record{}, err
	}

	return Record{
		StudentID:   field("student_id"),
		StudentName: name,
		Grade:       field("grade"),
		Subject:     field("subject"),
		Session: feedback.Session{
			Date:          date,
			Attitude:      attitude,
			Understanding: understanding,
			Homework:      homework,
			QA:            qa,
			Progress:      field("progress_text"),
			Memo:          field("class_memo"),
		},
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// parseScore validates a 1-5 score. Homework additionally accepts the
// no-assignment sentinel.
func parseScore(name, s string, allowSentinel bool) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number: %q", name, s)
	}
	if allowSentinel && v == feedback.ScoreNotApplicable {
		return v, nil
	}
	if v < 1 || v > 5 {
		return 0, fmt.Errorf("%s: %d is outside 1-5", name, v)
	}
	return v, nil
}

// ImportFile parses the file at path and writes its rows into st.
// Students are matched by the export's student_id when present,
// falling back to the display name. Rows are inserted in file order so
// same-date sessions keep their relative order.
func ImportFile(ctx context.Context, st *store.Store, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Import(ctx, st, f)
}

// Import is ImportFile over an already-open stream.
func Import(ctx context.Context, st *store.Store, r io.Reader) (*Result, error) {
	records, skipped, err := Parse(r)
	if err != nil {
		return nil, err
	}

	res := &Result{Skipped: skipped}
	students := st.Students()
	sessions := st.Sessions()

	// Export row id (or name) -> store id, so one student's rows land
	// under one row even when grade fields drift between exports.
	ids := make(map[string]string)

	for _, rec := range records {
		key := rec.StudentID
		if key == "" {
			key = "name:" + rec.StudentName
		}

		storeID, ok := ids[key]
		if !ok {
			existing, err := students.FindByName(ctx, rec.StudentName)
			switch {
			case err == nil:
				storeID = existing.ID
			case errors.Is(err, store.ErrNotFound):
				storeID, err = students.Create(ctx, "", rec.StudentName, rec.Grade)
				if err != nil {
					return nil, fmt.Errorf("create student %q: %w", rec.StudentName, err)
				}
				res.StudentsCreated++
			default:
				return nil, fmt.Errorf("look up student %q: %w", rec.StudentName, err)
			}
			ids[key] = storeID
		}

		if _, err := sessions.Append(ctx, storeID, rec.Session); err != nil {
			return nil, fmt.Errorf("import session for %q: %w", rec.StudentName, err)
		}
		res.SessionsImported++
	}
	return res, nil
}

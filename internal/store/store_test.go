package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutorfeed/internal/feedback"
	"tutorfeed/internal/llm"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file:" + t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSession(day int, attitude int) feedback.Session {
	return feedback.Session{
		Date:          time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
		Attitude:      attitude,
		Understanding: 3,
		Homework:      4,
		QA:            3,
		Progress:      "Linear equations",
		Memo:          "",
	}
}

func TestStudentCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Students().Create(ctx, "", "Jimin Park", "Middle 2")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	got, err := s.Students().Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Jimin Park" || got.Grade != "Middle 2" {
		t.Errorf("got %q/%q, want Jimin Park/Middle 2", got.Name, got.Grade)
	}

	if _, err := s.Students().Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStudentFindByName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Students().Create(ctx, "", "Minseo Kim", "Middle 1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Students().Create(ctx, "", "Minseo Kim", "Middle 3"); err != nil {
		t.Fatalf("create duplicate name: %v", err)
	}

	got, err := s.Students().FindByName(ctx, "Minseo Kim")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != first {
		t.Errorf("expected earliest-registered match %s, got %s", first, got.ID)
	}

	if _, err := s.Students().FindByName(ctx, "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionHistoryOrdering(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Students().Create(ctx, "", "Jimin Park", "Middle 2")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}

	// Insert out of date order.
	for _, day := range []int{10, 3, 7} {
		if _, err := s.Sessions().Append(ctx, id, testSession(day, 3)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	history, err := s.Sessions().History(ctx, id)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(history))
	}
	for i, wantDay := range []int{3, 7, 10} {
		if got := history[i].Date.Day(); got != wantDay {
			t.Errorf("history[%d]: day = %d, want %d", i, got, wantDay)
		}
	}
}

func TestSessionHistorySameDateKeepsInsertionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Students().Create(ctx, "", "Jimin Park", "Middle 2")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}

	// Two sessions on the same date: insertion order must survive so
	// the trend comparison picks the later recording as current.
	if _, err := s.Sessions().Append(ctx, id, testSession(5, 2)); err != nil {
		t.Fatalf("append first: %v", err)
	}
	if _, err := s.Sessions().Append(ctx, id, testSession(5, 4)); err != nil {
		t.Fatalf("append second: %v", err)
	}

	history, err := s.Sessions().History(ctx, id)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(history))
	}
	if history[0].Attitude != 2 || history[1].Attitude != 4 {
		t.Errorf("insertion order lost: got attitudes %d, %d", history[0].Attitude, history[1].Attitude)
	}
}

func TestSessionCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Students().Create(ctx, "", "Jimin Park", "Middle 2")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}

	n, err := s.Sessions().Count(ctx, id)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 sessions, got %d", n)
	}

	if _, err := s.Sessions().Append(ctx, id, testSession(1, 3)); err != nil {
		t.Fatalf("append: %v", err)
	}
	n, err = s.Sessions().Count(ctx, id)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 session, got %d", n)
	}
}

func TestFeedbackSaveAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	studentID, err := s.Students().Create(ctx, "", "Jimin Park", "Middle 2")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	sessionID, err := s.Sessions().Append(ctx, studentID, testSession(1, 3))
	if err != nil {
		t.Fatalf("append session: %v", err)
	}

	sections := feedback.Sections{
		Improvement: "Word problems need more practice.",
		Attitude:    "Jimin stayed focused through the whole lesson.",
		Overall:     "A steady week with clear progress on equations.",
	}
	id, err := s.Feedbacks().Save(ctx, sessionID, "raw text", sections)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}

	list, err := s.Feedbacks().ListByStudent(ctx, studentID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 feedback, got %d", len(list))
	}
	got := list[0]
	if got.Improvement != sections.Improvement || got.Attitude != sections.Attitude || got.Overall != sections.Overall {
		t.Errorf("sections not round-tripped: %+v", got)
	}
	if got.Raw != "raw text" {
		t.Errorf("raw = %q, want %q", got.Raw, "raw text")
	}
	if got.Degraded {
		t.Error("expected degraded = false")
	}
}

func TestFeedbackSaveDegraded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	studentID, err := s.Students().Create(ctx, "", "Jimin Park", "Middle 2")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	sessionID, err := s.Sessions().Append(ctx, studentID, testSession(1, 3))
	if err != nil {
		t.Fatalf("append session: %v", err)
	}

	sections := feedback.ParseSections("no delimiters here")
	if !sections.Degraded {
		t.Fatal("expected a degraded parse")
	}
	if _, err := s.Feedbacks().Save(ctx, sessionID, "no delimiters here", sections); err != nil {
		t.Fatalf("save: %v", err)
	}

	list, err := s.Feedbacks().ListByStudent(ctx, studentID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].Degraded {
		t.Fatalf("expected one degraded feedback, got %+v", list)
	}
	if list[0].Overall != "no delimiters here" {
		t.Errorf("degraded overall should carry the raw text, got %q", list[0].Overall)
	}
}

func TestLLMEventAppendAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	repo := s.LLMEvents()
	var sink llm.EventSink = repo // compile-time usage of the interface

	for i := 0; i < 3; i++ {
		err := sink.AppendLLMEvent(ctx, llm.EventData{
			Provider:     "upstage",
			Model:        "solar-pro2",
			Purpose:      "feedback",
			InputTokens:  100 + i,
			OutputTokens: 200,
			LatencyMs:    1500,
			Success:      true,
		})
		if err != nil {
			t.Fatalf("append event %d: %v", i, err)
		}
	}

	events, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events with limit, got %d", len(events))
	}
	if events[0].ID < events[1].ID {
		t.Error("expected newest first")
	}
	if events[0].InputTokens != 102 {
		t.Errorf("newest event input tokens = %d, want 102", events[0].InputTokens)
	}

	got, err := repo.Get(ctx, events[0].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Provider != "upstage" || got.Model != "solar-pro2" || got.Purpose != "feedback" {
		t.Errorf("event not round-tripped: %+v", got)
	}

	if _, err := repo.Get(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

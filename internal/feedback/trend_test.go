package feedback

import (
	"errors"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

func session(date time.Time, attitude, understanding, homework, qa int) Session {
	return Session{
		Date:          date,
		Attitude:      attitude,
		Understanding: understanding,
		Homework:      homework,
		QA:            qa,
		Progress:      "fractions",
	}
}

func TestComputeTrend_Directions(t *testing.T) {
	tests := []struct {
		name       string
		prev, cur  int
		wantChange int
		wantDir    Direction
	}{
		{"up", 3, 4, 1, DirectionUp},
		{"down", 5, 2, -3, DirectionDown},
		{"same", 3, 3, 0, DirectionSame},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := []Session{
				session(day(1), tt.prev, tt.prev, tt.prev, tt.prev),
				session(day(2), tt.cur, tt.cur, tt.cur, tt.cur),
			}
			result, err := ComputeTrend(history)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Each metric is computed independently.
			for _, m := range Metrics {
				mt := result.Metrics[m]
				if mt.Err != nil {
					t.Fatalf("%s: unexpected metric error: %v", m, mt.Err)
				}
				if mt.Current != tt.cur || mt.Previous != tt.prev {
					t.Errorf("%s: current/previous = %d/%d, want %d/%d", m, mt.Current, mt.Previous, tt.cur, tt.prev)
				}
				if mt.Change != tt.wantChange {
					t.Errorf("%s: change = %d, want %d", m, mt.Change, tt.wantChange)
				}
				if mt.Direction != tt.wantDir {
					t.Errorf("%s: direction = %q, want %q", m, mt.Direction, tt.wantDir)
				}
			}
		})
	}
}

func TestComputeTrend_UsesLastTwoSessions(t *testing.T) {
	history := []Session{
		session(day(1), 2, 2, 2, 2),
		session(day(2), 3, 3, 3, 3),
		session(day(3), 4, 4, 4, 4),
	}
	result, err := ComputeTrend(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mt := result.Metrics[MetricAttitude]
	if mt.Current != 4 || mt.Previous != 3 || mt.Change != 1 || mt.Direction != DirectionUp {
		t.Errorf("attitude trend = %+v, want current=4 previous=3 change=1 up", mt)
	}
}

func TestComputeTrend_InsufficientHistory(t *testing.T) {
	for _, history := range [][]Session{nil, {session(day(1), 3, 3, 3, 3)}} {
		_, err := ComputeTrend(history)
		if !errors.Is(err, ErrInsufficientHistory) {
			t.Errorf("len %d: err = %v, want ErrInsufficientHistory", len(history), err)
		}
	}
}

func TestComputeTrend_HomeworkSentinelIsolated(t *testing.T) {
	history := []Session{
		session(day(1), 2, 3, ScoreNotApplicable, 3),
		session(day(2), 4, 4, 5, 4),
	}
	result, err := ComputeTrend(history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hw := result.Metrics[MetricHomework]
	if !errors.Is(hw.Err, ErrScoreNotComparable) {
		t.Errorf("homework err = %v, want ErrScoreNotComparable", hw.Err)
	}

	// The failed metric must not abort the others.
	att := result.Metrics[MetricAttitude]
	if att.Err != nil || att.Change != 2 || att.Direction != DirectionUp {
		t.Errorf("attitude trend = %+v, want change=2 up", att)
	}
}

func TestDirectionSymbols(t *testing.T) {
	tests := []struct {
		dir  Direction
		want string
	}{
		{DirectionUp, "▲"},
		{DirectionDown, "▼"},
		{DirectionSame, "●"},
	}
	for _, tt := range tests {
		if got := tt.dir.Symbol(); got != tt.want {
			t.Errorf("Symbol(%q) = %q, want %q", tt.dir, got, tt.want)
		}
	}
}

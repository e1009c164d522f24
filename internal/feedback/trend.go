package feedback

import "errors"

// ErrInsufficientHistory is returned when fewer than two sessions are
// available. It is a recognized condition, not a failure: callers fall
// back to first-class framing.
var ErrInsufficientHistory = errors.New("at least two sessions are required for a trend comparison")

// ErrScoreNotComparable marks a metric whose values cannot be compared,
// typically because one side is the no-assignment sentinel or out of range.
var ErrScoreNotComparable = errors.New("score not comparable")

// MetricTrend compares one metric between the two most recent sessions.
// When Err is set the numeric fields carry the raw values but Change and
// Direction are meaningless; other metrics are unaffected.
type MetricTrend struct {
	Current   int
	Previous  int
	Change    int
	Direction Direction
	Err       error
}

// TrendResult holds the per-metric comparison of the two most recent
// sessions in a student's history.
type TrendResult struct {
	Current  Session
	Previous Session
	Metrics  map[Metric]MetricTrend
}

// ComputeTrend compares the last two sessions of history, which must be
// ordered oldest to newest. It is a pure function of its input.
func ComputeTrend(history []Session) (*TrendResult, error) {
	if len(history) < 2 {
		return nil, ErrInsufficientHistory
	}

	current := history[len(history)-1]
	previous := history[len(history)-2]

	result := &TrendResult{
		Current:  current,
		Previous: previous,
		Metrics:  make(map[Metric]MetricTrend, len(Metrics)),
	}

	for _, m := range Metrics {
		cur := current.Score(m)
		prev := previous.Score(m)

		if !comparableScore(cur) || !comparableScore(prev) {
			result.Metrics[m] = MetricTrend{Current: cur, Previous: prev, Err: ErrScoreNotComparable}
			continue
		}

		change := cur - prev
		direction := DirectionSame
		switch {
		case change > 0:
			direction = DirectionUp
		case change < 0:
			direction = DirectionDown
		}

		result.Metrics[m] = MetricTrend{
			Current:   cur,
			Previous:  prev,
			Change:    change,
			Direction: direction,
		}
	}

	return result, nil
}

func comparableScore(v int) bool {
	return v >= 1 && v <= 5
}

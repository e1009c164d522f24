package feedback

import "time"

// ScoreNotApplicable is the homework score recorded when no assignment
// existed for the session.
const ScoreNotApplicable = 99

// Student identifies a student for report purposes. Name is the real
// display name and is the only identifier that may ever appear in
// generated text.
type Student struct {
	Name  string
	Grade string
}

// Session is one recorded tutoring meeting. Scores are 1-5, except
// Homework which may be ScoreNotApplicable. Within one student's history
// sessions are ordered by date, ties broken by insertion order.
type Session struct {
	Date          time.Time
	Attitude      int
	Understanding int
	Homework      int
	QA            int
	Progress      string
	Memo          string
}

// Metric identifies one of the four evaluation scores.
type Metric string

const (
	MetricAttitude      Metric = "attitude"
	MetricUnderstanding Metric = "understanding"
	MetricHomework      Metric = "homework"
	MetricQA            Metric = "qa"
)

// Metrics lists the four metrics in display order.
var Metrics = []Metric{MetricAttitude, MetricUnderstanding, MetricHomework, MetricQA}

// Label returns the human-readable metric name used in prompts and tables.
func (m Metric) Label() string {
	switch m {
	case MetricAttitude:
		return "Class attitude"
	case MetricUnderstanding:
		return "Understanding"
	case MetricHomework:
		return "Homework"
	case MetricQA:
		return "Q&A interaction"
	}
	return string(m)
}

// Score returns the session's value for the given metric.
func (s Session) Score(m Metric) int {
	switch m {
	case MetricAttitude:
		return s.Attitude
	case MetricUnderstanding:
		return s.Understanding
	case MetricHomework:
		return s.Homework
	case MetricQA:
		return s.QA
	}
	return 0
}

// Direction is the trend of a metric between the two most recent sessions.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionSame Direction = "same"
)

// Symbol returns the display symbol for the direction.
func (d Direction) Symbol() string {
	switch d {
	case DirectionUp:
		return "▲"
	case DirectionDown:
		return "▼"
	default:
		return "●"
	}
}

package feedback

import (
	"fmt"
	"strings"
)

// SectionDelimiter separates the three sections in the generated report.
// The composer instructs the model to emit it and the parser splits on it;
// both sides must use this exact token.
const SectionDelimiter = "###---###"

// noMemoPlaceholder stands in for an empty class memo so the prompt never
// carries a blank section.
const noMemoPlaceholder = "No notable issues noted."

// historyWindow is how many prior sessions are rendered into the prompt,
// oldest first, excluding the current session.
const historyWindow = 3

// Prompt is the system/user message pair sent to the generation backend.
type Prompt struct {
	System string
	User   string
}

const systemPromptBase = `You are an experienced private math tutor writing a progress report for a student's parents.`

const systemPromptRules = `
This report is delivered directly to the parents, so:
- It must consist of exactly three sections, in this fixed order: class improvement, class attitude, overall comment.
- Use a formal, polite register appropriate for addressing a parent.
- Explain clearly; the reader has no teaching background.
- Balance the student's strengths with concrete, practical advice.
- Plain text only: no markdown bold, lists, numbering, or headings.
- Write the three section bodies separated by the delimiter line ` + SectionDelimiter + ` and do not use that token anywhere else.`

// Compose builds the system/user message pair. When isNew is true the
// prompt asks for first-impression feedback from the current session only;
// otherwise it includes the recent history and a trend narrative. Pure
// string assembly, no I/O.
func Compose(student Student, current Session, past []Session, isNew bool) Prompt {
	var system strings.Builder
	system.WriteString(systemPromptBase)
	if isNew {
		system.WriteString(" This is the student's very first class: write professional, warm feedback from the first-class evaluation alone.")
	} else {
		system.WriteString(" Draw on today's class evaluation and the student's recent class history.")
	}
	system.WriteString(systemPromptRules)

	var user strings.Builder
	user.WriteString("[Student]\n")
	fmt.Fprintf(&user, "- Name: %s\n", student.Name)
	fmt.Fprintf(&user, "- Grade: %s\n", student.Grade)

	if isNew {
		writeNewStudentBody(&user, student, current)
	} else {
		writeReturningBody(&user, student, current, past)
	}

	return Prompt{System: system.String(), User: user.String()}
}

func writeNewStudentBody(b *strings.Builder, student Student, current Session) {
	b.WriteString("\n[First class evaluation]\n")
	writeScores(b, current)

	fmt.Fprintf(b, "\n[First class material]\n%s\n", current.Progress)
	fmt.Fprintf(b, "\n[First class notes]\n%s\n", memoOrPlaceholder(current.Memo))

	b.WriteString(`
Write the feedback as exactly three sections:

1. Class improvement: weak points and how to address them (3-5 sentences).
2. Class attitude: participation and learning posture (3-5 sentences).
3. Overall comment: an overall assessment of today's class and the direction going forward (3-5 sentences).
`)
	writeSharedRules(b, student)
}

func writeReturningBody(b *strings.Builder, student Student, current Session, past []Session) {
	b.WriteString("\n[Today's evaluation]\n")
	writeScores(b, current)

	fmt.Fprintf(b, "\n[Today's material]\n%s\n", current.Progress)
	fmt.Fprintf(b, "\n[Today's notes]\n%s\n", memoOrPlaceholder(current.Memo))

	b.WriteString("\n[Recent class history, oldest first]\n")
	for _, s := range recentWindow(past) {
		fmt.Fprintf(b, "- %s: attitude %s, understanding %s, homework %s, Q&A %s\n",
			s.Date.Format("2006-01-02"),
			scoreText(s.Attitude), scoreText(s.Understanding),
			scoreText(s.Homework), scoreText(s.QA))
		fmt.Fprintf(b, "  Material: %s\n", s.Progress)
		fmt.Fprintf(b, "  Notes: %s\n", memoOrPlaceholder(s.Memo))
	}

	b.WriteString(`
Write the feedback as exactly three sections:

1. Class improvement: weak points and how to address them (3-5 sentences).
2. Class attitude: participation and learning posture (3-5 sentences).
3. Overall comment: first assess how the student did today, then compare with the recent history and describe the learning trend, naming concrete changes. Join the two parts with natural transition sentences. Never use wording like "part 1" or "part 2", and never separate the parts with sub-headings, numbering, bullets, or line breaks.
`)
	writeSharedRules(b, student)
}

func writeSharedRules(b *strings.Builder, student Student) {
	fmt.Fprintf(b, `
Rules:
- All three sections are required, each as flowing prose.
- Never mention the numeric scores; describe the student's behavior and attitude instead.
- Always refer to the student as %s; never use an internal ID such as S1001.
- Write so the parents get a complete picture of the student's learning.
- Separate the three section bodies with a line containing only %s.
`, student.Name, SectionDelimiter)
}

func writeScores(b *strings.Builder, s Session) {
	for _, m := range Metrics {
		fmt.Fprintf(b, "- %s: %s\n", m.Label(), scoreText(s.Score(m)))
	}
}

// recentWindow returns up to the last historyWindow sessions, oldest first.
func recentWindow(past []Session) []Session {
	if len(past) > historyWindow {
		return past[len(past)-historyWindow:]
	}
	return past
}

func scoreText(v int) string {
	if v == ScoreNotApplicable {
		return "no assignment"
	}
	return fmt.Sprintf("%d/5", v)
}

func memoOrPlaceholder(memo string) string {
	if strings.TrimSpace(memo) == "" {
		return noMemoPlaceholder
	}
	return memo
}

package feedback

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Diagnostic placeholders for the degraded result. The tutor sees them
// verbatim and can correct the record by hand.
const (
	DegradedImprovement = "Could not parse the AI response into sections."
	DegradedAttitude    = "Check that the response follows the expected format."
)

// leadingTitle matches a bold-markup section title at the very start of a
// segment, e.g. "**Class attitude:** ". Models sometimes emit one despite
// the no-markdown instruction.
var leadingTitle = regexp.MustCompile(`^\*\*[^*\n]{1,80}\*\*[:：]?[ \t]*\n?`)

// Sections is the parsed three-section report. Degraded marks the fallback
// produced when the delimiter contract was not satisfied; in that case
// Overall carries the entire raw text so nothing is lost.
type Sections struct {
	Improvement string
	Attitude    string
	Overall     string
	Degraded    bool
}

// ParseSections splits raw generated text on SectionDelimiter. It never
// fails outward: any input that does not yield exactly three segments
// produces the degraded result, and an unexpected panic is recovered into
// the same shape.
func ParseSections(raw string) (out Sections) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "warning: panic while parsing feedback response: %v\n", r)
			out = degradedSections(raw)
		}
	}()

	parts := strings.Split(raw, SectionDelimiter)
	if len(parts) != 3 {
		// No guessing at alignment — fall back wholesale.
		return degradedSections(raw)
	}

	clean := make([]string, 3)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		part = leadingTitle.ReplaceAllString(part, "")
		clean[i] = strings.TrimSpace(part)
	}

	return Sections{
		Improvement: clean[0],
		Attitude:    clean[1],
		Overall:     clean[2],
	}
}

func degradedSections(raw string) Sections {
	return Sections{
		Improvement: DegradedImprovement,
		Attitude:    DegradedAttitude,
		Overall:     raw,
		Degraded:    true,
	}
}

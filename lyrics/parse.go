package lyrics

import (
	"math"
	"regexp"
	"strings"
)

// DurationTolerance is the largest gap, in seconds, between a candidate and
// the requested duration that still counts as a match (exclusive).
const DurationTolerance = 3.0

var leadingTagRegex = regexp.MustCompile(`^(?:\[.*?\])+`)

// ParseLrclibData turns plain or LRC-synced text into display lines. Leading
// bracket tokens ("[00:12.34]", "[ar:Artist]", "[Chorus]") are removed and
// lines left empty are dropped.
func ParseLrclibData(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = leadingTagRegex.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// CandidateLines returns the display lines of a candidate, preferring plain
// lyrics over synced ones. Instrumentals have none.
func CandidateLines(c Candidate) []string {
	if c.Instrumental {
		return nil
	}
	if lines := ParseLrclibData(c.PlainLyrics); len(lines) > 0 {
		return lines
	}
	return ParseLrclibData(c.SyncedLyrics)
}

// MatchByDuration returns the first candidate, in result order, whose
// duration is strictly within DurationTolerance of target.
func MatchByDuration(candidates []Candidate, target float64) (Candidate, bool) {
	for _, c := range candidates {
		if math.Abs(c.Duration-target) < DurationTolerance {
			return c, true
		}
	}
	return Candidate{}, false
}

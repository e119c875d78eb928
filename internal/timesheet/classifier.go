package timesheet

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// noiseRE matches everything outside the allow-list kept for day and
	// weekday detection.
	noiseRE = regexp.MustCompile(`[^0-9a-zA-Z\s.:,;!|]`)

	// timeRE matches an H:MM or HH:MM candidate.
	timeRE = regexp.MustCompile(`\d{1,2}:\d{2}`)

	// pairRE matches two 2-digit groups split by at most one space or colon,
	// for rows where the recognizer dropped or broke the separator.
	pairRE = regexp.MustCompile(`\b(\d{2})[\s:]?(\d{2})\b`)
)

// Line is the classification of one recognized line.
type Line struct {
	// Day is the day number the line opens, or 0 for a continuation line.
	Day int

	// Weekday is the label following the day number, if any.
	Weekday string

	// Times are the HH:MM candidates found on the line, unvalidated.
	Times []string
}

// OpensDay reports whether the line starts a new day row.
func (l Line) OpensDay() bool { return l.Day != 0 }

// Classifier extracts day numbers, weekday labels and time candidates from
// recognized lines.
type Classifier struct {
	corrector *Corrector
}

// NewClassifier returns a Classifier that corrects lines with c before
// extracting times. A nil c selects DefaultCorrector.
func NewClassifier(c *Corrector) *Classifier {
	if c == nil {
		c = DefaultCorrector
	}
	return &Classifier{corrector: c}
}

// Classify inspects one recognized line. ok is false when the line has no
// tokens left after noise removal and should be ignored entirely.
func (c *Classifier) Classify(raw string) (line Line, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Line{}, false
	}

	parts := strings.Fields(noiseRE.ReplaceAllString(foldAccents(raw), ""))
	if len(parts) == 0 {
		return Line{}, false
	}

	line.Day = parseDay(parts[0])
	if line.OpensDay() && len(parts) > 1 && !startsWithDigit(parts[1]) {
		line.Weekday = parts[1]
	}
	line.Times = c.extractTimes(c.corrector.Correct(raw))
	return line, true
}

// extractTimes finds HH:MM tokens in a corrected line. When fewer than two
// are present it also synthesizes candidates from adjacent 2-digit groups,
// skipping any that were already found verbatim.
func (c *Classifier) extractTimes(fixed string) []string {
	times := timeRE.FindAllString(fixed, -1)
	if len(times) >= 2 {
		return times
	}
	for _, m := range pairRE.FindAllStringSubmatch(fixed, -1) {
		candidate := m[1] + ":" + m[2]
		if !contains(times, candidate) {
			times = append(times, candidate)
		}
	}
	return times
}

// parseDay returns the day number encoded in the first token, or 0 when the
// token holds no digits or the number is outside [MinDay, MaxDay].
func parseDay(token string) int {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, token)
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < MinDay || n > MaxDay {
		return 0
	}
	return n
}

// foldAccents strips combining marks so accented weekday labels such as
// "Sáb" survive the ASCII allow-list as "Sab".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

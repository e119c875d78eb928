package timesheet

import "strings"

// Substitution maps one commonly misrecognized character to its intended
// replacement.
type Substitution struct {
	From rune
	To   rune
}

// DefaultSubstitutions is the fixed confusion table applied to recognized
// lines before time extraction. Letters resembling 0, 1, 2, 5, 6 and 8
// become those digits, and '.', ',' and ';' become the ':' time separator.
var DefaultSubstitutions = []Substitution{
	{'O', '0'}, {'o', '0'},
	{'I', '1'}, {'l', '1'}, {'i', '1'}, {'L', '1'}, {'!', '1'}, {'|', '1'},
	{'B', '8'},
	{'b', '6'},
	{'S', '5'}, {'s', '5'},
	{'Z', '2'}, {'z', '2'},
	{'.', ':'}, {',', ':'}, {';', ':'},
}

// Corrector applies a substitution table one character at a time.
//
// Because every replacement is a digit or ':' and neither is a key in the
// table, the order of the entries never changes the result, and correcting
// already-corrected text is a no-op.
type Corrector struct {
	table map[rune]rune
}

// NewCorrector builds a Corrector from subs. When the same character appears
// twice the later entry wins.
func NewCorrector(subs []Substitution) *Corrector {
	table := make(map[rune]rune, len(subs))
	for _, s := range subs {
		table[s.From] = s.To
	}
	return &Corrector{table: table}
}

// DefaultCorrector uses DefaultSubstitutions.
var DefaultCorrector = NewCorrector(DefaultSubstitutions)

// Correct returns line with every mapped character replaced.
func (c *Corrector) Correct(line string) string {
	return strings.Map(func(r rune) rune {
		if to, ok := c.table[r]; ok {
			return to
		}
		return r
	}, line)
}

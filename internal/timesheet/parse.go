package timesheet

import "strings"

// Summary counts what happened to the recognized lines during a parse.
type Summary struct {
	// Lines is the number of lines in the input text.
	Lines int `json:"lines"`

	// Ignored is the number of blank or noise-only lines.
	Ignored int `json:"ignored"`

	// Discarded is the number of lines that had content but contributed
	// nothing (orphans before the first day, or lines without times).
	Discarded int `json:"discarded"`

	// DayRows is the number of day-opening lines, duplicates included.
	DayRows int `json:"day_rows"`

	// Records is the number of records produced.
	Records int `json:"records"`
}

// Parser runs classification, aggregation and finalization over a block of
// recognized text.
type Parser struct {
	classifier *Classifier
}

// NewParser returns a Parser using c for classification. A nil c selects a
// Classifier with DefaultCorrector.
func NewParser(c *Classifier) *Parser {
	if c == nil {
		c = NewClassifier(nil)
	}
	return &Parser{classifier: c}
}

// Parse converts recognized text into records. Each call is independent.
func (p *Parser) Parse(text string) ([]Record, Summary) {
	var sum Summary
	agg := NewAggregator()

	for _, raw := range strings.Split(text, "\n") {
		sum.Lines++
		line, ok := p.classifier.Classify(raw)
		if !ok {
			sum.Ignored++
			continue
		}
		if line.OpensDay() {
			sum.DayRows++
		}
		agg.Add(line)
	}

	records := Finalize(agg.Pending())
	sum.Discarded = agg.Discarded()
	sum.Records = len(records)
	return records, sum
}

var defaultParser = NewParser(nil)

// ParseText converts recognized text into records using the default tables.
func ParseText(text string) []Record {
	records, _ := defaultParser.Parse(text)
	return records
}

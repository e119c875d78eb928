package timesheet

// State is the aggregator's position relative to day rows.
type State int

const (
	// NoCurrentDay means no day row has been opened yet; orphan lines are
	// dropped.
	NoCurrentDay State = iota

	// HasCurrentDay means orphan lines attach to the most recently opened day.
	HasCurrentDay
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case NoCurrentDay:
		return "NO_CURRENT_DAY"
	case HasCurrentDay:
		return "HAS_CURRENT_DAY"
	default:
		return "UNKNOWN"
	}
}

// Aggregator folds classified lines into pending days.
//
// Every day-opening line creates a new PendingDay, even when its number was
// seen before; duplicates are reconciled later by Finalize, once all lines
// are known. An Aggregator is not safe for concurrent use and is meant to
// live for a single extraction.
type Aggregator struct {
	state     State
	current   int // index into pending, valid when state == HasCurrentDay
	pending   []*PendingDay
	discarded int
}

// NewAggregator returns an empty Aggregator in the NoCurrentDay state.
func NewAggregator() *Aggregator {
	return &Aggregator{state: NoCurrentDay}
}

// State returns the current state.
func (a *Aggregator) State() State { return a.state }

// Add applies one classified line.
func (a *Aggregator) Add(line Line) {
	switch {
	case line.OpensDay():
		a.pending = append(a.pending, &PendingDay{
			Day:     line.Day,
			Weekday: line.Weekday,
			Times:   append([]string(nil), line.Times...),
		})
		a.current = len(a.pending) - 1
		a.state = HasCurrentDay

	case a.state == HasCurrentDay && len(line.Times) > 0:
		day := a.pending[a.current]
		for _, t := range line.Times {
			if !contains(day.Times, t) {
				day.Times = append(day.Times, t)
			}
		}

	default:
		a.discarded++
	}
}

// Pending returns the pending days in the order their rows were opened.
func (a *Aggregator) Pending() []*PendingDay { return a.pending }

// Discarded returns how many lines contributed nothing.
func (a *Aggregator) Discarded() int { return a.discarded }

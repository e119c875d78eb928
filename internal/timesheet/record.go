package timesheet

// MaxTimes is the number of punch-time slots in a Record.
const MaxTimes = 4

// MinDay and MaxDay bound the day numbers accepted as row openers.
const (
	MinDay = 1
	MaxDay = 31
)

// Record is one finalized day of punch times.
//
// The JSON shape is the contract consumers depend on: all six fields are
// always present, and unused time slots are empty strings.
type Record struct {
	// Day is the day of month (1-31).
	Day int `json:"day"`

	// Weekday is the weekday label as recognized (e.g. "Seg"), possibly empty.
	Weekday string `json:"weekday"`

	// M1..M4 hold "HH:MM" times in ascending order, or "".
	M1 string `json:"m1"`
	M2 string `json:"m2"`
	M3 string `json:"m3"`
	M4 string `json:"m4"`
}

// Times returns the non-empty time slots in order.
func (r Record) Times() []string {
	out := make([]string, 0, MaxTimes)
	for _, t := range [MaxTimes]string{r.M1, r.M2, r.M3, r.M4} {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// setSlots fills M1..M4 from times; missing slots are left empty.
func (r *Record) setSlots(times []string) {
	slots := [MaxTimes]*string{&r.M1, &r.M2, &r.M3, &r.M4}
	for i, slot := range slots {
		if i < len(times) {
			*slot = times[i]
		} else {
			*slot = ""
		}
	}
}

// PendingDay accumulates time candidates for one day row while lines are
// being aggregated. Times may contain duplicates and unvalidated tokens.
type PendingDay struct {
	Day     int
	Weekday string
	Times   []string
}

package timesheet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RejectReason explains why a time candidate was dropped.
type RejectReason string

const (
	// RejectNone marks an accepted candidate.
	RejectNone RejectReason = ""

	// RejectMalformed is used when the candidate is not two integers split by ':'.
	RejectMalformed RejectReason = "malformed"

	// RejectHour is used when the hour is outside [0,23].
	RejectHour RejectReason = "hour out of range"

	// RejectMinute is used when the minute is outside [0,59].
	RejectMinute RejectReason = "minute out of range"
)

// TimeCheck is the outcome of validating one time candidate.
type TimeCheck struct {
	// Token is the candidate as extracted.
	Token string

	// Value is the zero-padded "HH:MM" rendering; empty when rejected.
	Value string

	// Reason is RejectNone for accepted candidates.
	Reason RejectReason
}

// OK reports whether the candidate was accepted.
func (c TimeCheck) OK() bool { return c.Reason == RejectNone }

// CheckTime validates an "H:M" candidate and renders it as "HH:MM".
func CheckTime(token string) TimeCheck {
	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return TimeCheck{Token: token, Reason: RejectMalformed}
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeCheck{Token: token, Reason: RejectMalformed}
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return TimeCheck{Token: token, Reason: RejectMalformed}
	}
	if h < 0 || h > 23 {
		return TimeCheck{Token: token, Reason: RejectHour}
	}
	if m < 0 || m > 59 {
		return TimeCheck{Token: token, Reason: RejectMinute}
	}
	return TimeCheck{Token: token, Value: fmt.Sprintf("%02d:%02d", h, m)}
}

// Finalize reconciles pending days into sorted records.
//
// It runs in two passes. The first keeps, for each day number, the pending
// row with strictly more time candidates (the earliest row wins ties);
// candidates are counted before validation. The second validates the
// survivors' times, sorts them and fills the four output slots.
func Finalize(pending []*PendingDay) []Record {
	winners := mergeDuplicates(pending)

	records := make([]Record, 0, len(winners))
	for _, p := range winners {
		r := Record{Day: p.Day, Weekday: p.Weekday}
		r.setSlots(validTimes(p.Times))
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Day < records[j].Day
	})
	return records
}

// mergeDuplicates picks one pending row per day number.
func mergeDuplicates(pending []*PendingDay) []*PendingDay {
	byDay := make(map[int]int, len(pending)) // day -> index into winners
	winners := make([]*PendingDay, 0, len(pending))
	for _, p := range pending {
		i, seen := byDay[p.Day]
		if !seen {
			byDay[p.Day] = len(winners)
			winners = append(winners, p)
			continue
		}
		if len(p.Times) > len(winners[i].Times) {
			winners[i] = p
		}
	}
	return winners
}

// validTimes returns the accepted candidates, rendered and sorted, capped
// at MaxTimes.
func validTimes(candidates []string) []string {
	valid := make([]string, 0, len(candidates))
	for _, t := range candidates {
		if check := CheckTime(t); check.OK() {
			valid = append(valid, check.Value)
		}
	}
	sort.Strings(valid)
	if len(valid) > MaxTimes {
		valid = valid[:MaxTimes]
	}
	return valid
}

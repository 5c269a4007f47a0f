package timespec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dyluth/agenda/pkg/schedule"
)

// ParseDay resolves a day specification against the conference days, which
// must be in date order. Supports:
//   - a day id: "d2"
//   - a date: "2013-09-22"
//   - a 1-based position: "1", "2"
//   - "first" or "last"
//
// Ids win over positions so a day with id "1" stays reachable.
func ParseDay(spec string, days []schedule.Day) (schedule.Day, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return schedule.Day{}, fmt.Errorf("empty day specification")
	}
	if len(days) == 0 {
		return schedule.Day{}, fmt.Errorf("no days defined")
	}

	for _, d := range days {
		if d.ID == spec {
			return d, nil
		}
	}

	switch strings.ToLower(spec) {
	case "first":
		return days[0], nil
	case "last":
		return days[len(days)-1], nil
	}

	if date, err := time.Parse(time.DateOnly, spec); err == nil {
		for _, d := range days {
			if sameDate(d.Date, date) {
				return d, nil
			}
		}
		return schedule.Day{}, fmt.Errorf("no day on %s", spec)
	}

	if n, err := strconv.Atoi(spec); err == nil {
		if n < 1 || n > len(days) {
			return schedule.Day{}, fmt.Errorf("day %d out of range (1-%d)", n, len(days))
		}
		return days[n-1], nil
	}

	return schedule.Day{}, fmt.Errorf("invalid day specification: %s (use a day id, a date like '2013-09-22', a number, 'first' or 'last')", spec)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

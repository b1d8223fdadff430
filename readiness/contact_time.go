package readiness

import (
	"strconv"
	"strings"
	"time"

	"tharaga/event"
)

const defaultContactHour = 18

// bestContactTime picks the buyer's most frequent engagement time of day and
// projects it onto the next occurrence. Ties break on first-encountered
// order, and absence of usable data falls back to tomorrow at 18:00.
func bestContactTime(signals []event.Signal, now time.Time) time.Time {
	counts := map[string]int{}
	order := make([]string, 0, len(signals))
	for _, s := range signals {
		if s.TimeOfDay == "" {
			continue
		}
		if _, seen := counts[s.TimeOfDay]; !seen {
			order = append(order, s.TimeOfDay)
		}
		counts[s.TimeOfDay]++
	}

	best := ""
	for _, tod := range order {
		if best == "" || counts[tod] > counts[best] {
			best = tod
		}
	}

	if best != "" {
		if hour, minute, ok := parseTimeOfDay(best); ok {
			at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if at.Before(now) {
				at = at.AddDate(0, 0, 1)
			}
			return at
		}
	}

	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), defaultContactHour, 0, 0, 0, now.Location())
}

func parseTimeOfDay(v string) (hour, minute int, ok bool) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

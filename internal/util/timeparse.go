package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var longUnits = map[string]string{
	"day": "d", "days": "d",
	"week": "w", "weeks": "w",
	"month": "mo", "months": "mo",
}

// ParseRelativeDate parses relative period expressions used by CLI flags:
// "3d" or "3 days ago" is the day three days before now, "2mo" or
// "2 months ago" is the month two months before now. monthly reports which
// granularity the expression selects.
func ParseRelativeDate(s string, now time.Time) (t time.Time, monthly bool, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if f := strings.Fields(s); len(f) == 3 && f[2] == "ago" {
		unit, ok := longUnits[f[1]]
		if !ok {
			return time.Time{}, false, fmt.Errorf("invalid date expression: %q", s)
		}
		s = f[0] + unit
	}
	if s == "" {
		return time.Time{}, false, fmt.Errorf("empty date expression")
	}
	now = now.UTC()

	suffixes := []struct {
		suffix  string
		monthly bool
		apply   func(int) time.Time
	}{
		{"mo", true, func(n int) time.Time {
			return time.Date(now.Year(), now.Month()-time.Month(n), 1, 0, 0, 0, 0, time.UTC)
		}},
		{"w", false, func(n int) time.Time {
			return time.Date(now.Year(), now.Month(), now.Day()-7*n, 0, 0, 0, 0, time.UTC)
		}},
		{"d", false, func(n int) time.Time {
			return time.Date(now.Year(), now.Month(), now.Day()-n, 0, 0, 0, 0, time.UTC)
		}},
	}
	for _, sfx := range suffixes {
		if strings.HasSuffix(s, sfx.suffix) {
			numStr := strings.TrimSuffix(s, sfx.suffix)
			if n, err := strconv.Atoi(numStr); err == nil && n >= 0 {
				return sfx.apply(n), sfx.monthly, nil
			}
			return time.Time{}, false, fmt.Errorf("invalid %s offset: %q", sfx.suffix, s)
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid date expression: %q", s)
}

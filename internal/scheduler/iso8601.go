package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseISODuration parses a (restricted) ISO-8601 duration of the form
// P[nY][nM][nW][nD]T[nH][nM][nS], e.g. "P1DT12H" or "PT30M" (spec
// §4.9's IntervalSpec.Duration form). Years are treated as 365 days and
// months as 30 days; this trigger only needs a coarse period, not a
// calendar-aware one.
func ParseISODuration(s string) (time.Duration, error) {
	if s == "" || s[0] != 'P' {
		return 0, fmt.Errorf("scheduler: invalid ISO-8601 duration %q: must start with P", s)
	}
	rest := s[1:]

	datePart := rest
	timePart := ""
	if idx := strings.IndexByte(rest, 'T'); idx >= 0 {
		datePart = rest[:idx]
		timePart = rest[idx+1:]
	}

	var total time.Duration

	d, err := parseISOUnits(datePart, map[byte]time.Duration{
		'Y': 365 * 24 * time.Hour,
		'M': 30 * 24 * time.Hour,
		'W': 7 * 24 * time.Hour,
		'D': 24 * time.Hour,
	})
	if err != nil {
		return 0, fmt.Errorf("scheduler: invalid ISO-8601 duration %q: %w", s, err)
	}
	total += d

	if timePart != "" {
		d, err = parseISOUnits(timePart, map[byte]time.Duration{
			'H': time.Hour,
			'M': time.Minute,
			'S': time.Second,
		})
		if err != nil {
			return 0, fmt.Errorf("scheduler: invalid ISO-8601 duration %q: %w", s, err)
		}
		total += d
	}

	if total <= 0 {
		return 0, fmt.Errorf("scheduler: invalid ISO-8601 duration %q: non-positive", s)
	}
	return total, nil
}

func parseISOUnits(s string, units map[byte]time.Duration) (time.Duration, error) {
	var total time.Duration
	numStart := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			continue
		}
		unit, ok := units[c]
		if !ok {
			return 0, fmt.Errorf("unexpected unit %q", c)
		}
		n, err := strconv.Atoi(s[numStart:i])
		if err != nil {
			return 0, fmt.Errorf("invalid numeric component %q", s[numStart:i])
		}
		total += time.Duration(n) * unit
		numStart = i + 1
	}
	if numStart != len(s) {
		return 0, fmt.Errorf("trailing characters %q", s[numStart:])
	}
	return total, nil
}

package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// cronExpr is a parsed cron expression generalized from the standard
// 5-field form to also carry optional year, week and second
// restrictions, so it can represent both the Cron trigger's 5-field
// string form and its explicit-fields form (spec §4.9). A nil slice
// for a field means "unrestricted" (the field's wildcard).
type cronExpr struct {
	second     []int // 0-59, nil = any
	minute     []int // 0-59
	hour       []int // 0-23
	dayOfMonth []int // 1-31
	month      []int // 1-12
	dayOfWeek  []int // 0-6, 0 = Sunday
	year       []int // nil = any
	week       []int // ISO week 1-53, nil = any
}

// parseStandardCron parses the 5-field minute/hour/day-of-month/month/
// day-of-week form (with the usual @hourly/@daily/... aliases). second,
// year and week are left unrestricted.
func parseStandardCron(expr string) (*cronExpr, error) {
	switch strings.ToLower(strings.TrimSpace(expr)) {
	case "@hourly":
		expr = "0 * * * *"
	case "@daily", "@midnight":
		expr = "0 0 * * *"
	case "@weekly":
		expr = "0 0 * * 0"
	case "@monthly":
		expr = "0 0 1 * *"
	case "@yearly", "@annually":
		expr = "0 0 1 1 *"
	}

	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	c := &cronExpr{}
	var err error
	if c.minute, err = parseCronField(fields[0], 0, 59); err != nil {
		return nil, fmt.Errorf("invalid minute field: %w", err)
	}
	if c.hour, err = parseCronField(fields[1], 0, 23); err != nil {
		return nil, fmt.Errorf("invalid hour field: %w", err)
	}
	if c.dayOfMonth, err = parseCronField(fields[2], 1, 31); err != nil {
		return nil, fmt.Errorf("invalid day-of-month field: %w", err)
	}
	if c.month, err = parseCronField(fields[3], 1, 12); err != nil {
		return nil, fmt.Errorf("invalid month field: %w", err)
	}
	if c.dayOfWeek, err = parseCronField(fields[4], 0, 6); err != nil {
		return nil, fmt.Errorf("invalid day-of-week field: %w", err)
	}
	return c, nil
}

// CronFields is the explicit-fields alternative to a 5-field cron
// string (spec §4.9). An empty string means that field is
// unrestricted; the syntax within each field (list, range, step) is
// the same as a single cron field.
type CronFields struct {
	Year      string
	Month     string
	Day       string
	Week      string
	DayOfWeek string
	Hour      string
	Minute    string
	Second    string
}

func parseExplicitCron(f CronFields) (*cronExpr, error) {
	c := &cronExpr{}
	var err error

	parse := func(field string, min, max int) ([]int, error) {
		if field == "" {
			return nil, nil
		}
		return parseCronField(field, min, max)
	}

	if c.year, err = parse(f.Year, 1970, 2200); err != nil {
		return nil, fmt.Errorf("invalid year field: %w", err)
	}
	if c.month, err = parse(f.Month, 1, 12); err != nil {
		return nil, fmt.Errorf("invalid month field: %w", err)
	}
	if c.dayOfMonth, err = parse(f.Day, 1, 31); err != nil {
		return nil, fmt.Errorf("invalid day field: %w", err)
	}
	if c.week, err = parse(f.Week, 1, 53); err != nil {
		return nil, fmt.Errorf("invalid week field: %w", err)
	}
	if c.dayOfWeek, err = parse(f.DayOfWeek, 0, 6); err != nil {
		return nil, fmt.Errorf("invalid day_of_week field: %w", err)
	}
	if c.hour, err = parse(f.Hour, 0, 23); err != nil {
		return nil, fmt.Errorf("invalid hour field: %w", err)
	}
	if c.minute, err = parse(f.Minute, 0, 59); err != nil {
		return nil, fmt.Errorf("invalid minute field: %w", err)
	}
	if c.second, err = parse(f.Second, 0, 59); err != nil {
		return nil, fmt.Errorf("invalid second field: %w", err)
	}
	return c, nil
}

func parseCronField(field string, min, max int) ([]int, error) {
	if field == "*" {
		result := make([]int, max-min+1)
		for i := range result {
			result[i] = min + i
		}
		return result, nil
	}

	var result []int
	for _, part := range strings.Split(field, ",") {
		values, err := parseCronFieldPart(part, min, max)
		if err != nil {
			return nil, err
		}
		result = append(result, values...)
	}
	return uniqueSorted(result), nil
}

func parseCronFieldPart(part string, min, max int) ([]int, error) {
	step := 1
	if idx := strings.Index(part, "/"); idx != -1 {
		stepStr := part[idx+1:]
		s, err := strconv.Atoi(stepStr)
		if err != nil || s <= 0 {
			return nil, fmt.Errorf("invalid step: %s", stepStr)
		}
		step = s
		part = part[:idx]
	}

	var start, end int
	switch {
	case part == "*":
		start, end = min, max
	case strings.Contains(part, "-"):
		idx := strings.Index(part, "-")
		var err error
		if start, err = strconv.Atoi(part[:idx]); err != nil {
			return nil, fmt.Errorf("invalid range start: %s", part[:idx])
		}
		if end, err = strconv.Atoi(part[idx+1:]); err != nil {
			return nil, fmt.Errorf("invalid range end: %s", part[idx+1:])
		}
	default:
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid value: %s", part)
		}
		start, end = v, v
	}

	if start < min || start > max || end < min || end > max || start > end {
		return nil, fmt.Errorf("value out of range [%d-%d]: %s", min, max, part)
	}

	var result []int
	for i := start; i <= end; i += step {
		result = append(result, i)
	}
	return result, nil
}

func uniqueSorted(vals []int) []int {
	seen := make(map[int]bool, len(vals))
	var out []int
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func containsInt(vals []int, v int) bool {
	if vals == nil {
		return true // unrestricted
	}
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}

// Next returns the first minute, starting with the minute after the one
// containing from, that satisfies every restricted field, with its
// second set to the
// smallest second in the second field's list (0 if unrestricted).
// Search gives up after four years, returning the zero Time.
func (c *cronExpr) Next(from time.Time) time.Time {
	t := from.Truncate(time.Minute).Add(time.Minute)
	deadline := from.AddDate(4, 0, 0)

	for t.Before(deadline) {
		if !containsInt(c.year, t.Year()) {
			t = time.Date(t.Year()+1, 1, 1, 0, 0, 0, 0, t.Location())
			continue
		}
		if !containsInt(c.month, int(t.Month())) {
			t = time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
			continue
		}

		_, isoWeek := t.ISOWeek()
		dayMatch := containsInt(c.dayOfMonth, t.Day()) && containsInt(c.dayOfWeek, int(t.Weekday())) && containsInt(c.week, isoWeek)
		if !dayMatch {
			t = time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
			continue
		}

		if !containsInt(c.hour, t.Hour()) {
			t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, t.Location())
			continue
		}
		if !containsInt(c.minute, t.Minute()) {
			t = t.Add(time.Minute)
			continue
		}

		second := 0
		if c.second != nil {
			second = c.second[0]
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), second, 0, t.Location())
	}

	return time.Time{}
}

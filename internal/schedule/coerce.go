package schedule

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// ClampPercent bounds a completion percentage to [0,100].
func ClampPercent(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ParseDurationDays coerces a spreadsheet or backend duration to whole days.
// Numbers are floored, strings keep only their digits ("5 dias" is 5), and
// anything unusable becomes 1. The result is never below 1.
func ParseDurationDays(v any) int {
	var n float64
	switch x := v.(type) {
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case float64:
		n = x
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 1
		}
		n = f
	case string:
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, x)
		d, err := strconv.Atoi(digits)
		if err != nil {
			return 1
		}
		n = float64(d)
	default:
		return 1
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 1
	}
	if d := int(math.Floor(n)); d > 1 {
		return d
	}
	return 1
}

// ParseProgress coerces a completion value to a 0..100 percentage.
//
// Values up to 1 are read as fractions (0.4 is 40%) and larger values as
// percentages. Strings with a trailing "%" are always percentages, and a
// decimal comma is accepted. nil, non-finite and unparsable values are 0.
func ParseProgress(v any) int {
	var n float64
	switch x := v.(type) {
	case nil:
		return 0
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case float64:
		n = x
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		n = f
	case string:
		s := strings.TrimSpace(x)
		percent := strings.HasSuffix(s, "%")
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		s = strings.ReplaceAll(s, ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		if percent {
			return roundPercent(f)
		}
		n = f
	default:
		return 0
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	if n <= 1 {
		return int(math.Round(math.Max(0, n) * 100))
	}
	return roundPercent(n)
}

func roundPercent(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(math.Min(100, math.Max(0, f))))
}

// ParseInt reads an integer-like value, returning 0 when it cannot.
func ParseInt(v any) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return ParseInt(f)
		}
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil {
			return ParseInt(f)
		}
	}
	return 0
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDate parses the date formats seen in sheets and backend payloads.
// Date-only values are placed at midnight in loc. Invalid input yields nil.
func ParseDate(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t
		}
	}
	return nil
}

// ParseActive reads the loosely typed "active" flag of team members.
func ParseActive(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int:
		return x == 1
	case int64:
		return x == 1
	case float64:
		return x == 1
	case json.Number:
		return x.String() == "1"
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "1" || s == "true"
	}
	return false
}

package schema

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
}

// formattedNumber matches prices and counts written for humans: an optional
// ISO currency code or symbol, digits with thousands separators, an optional
// k/m multiplier and a trailing "+".
var formattedNumber = regexp.MustCompile(`^(?i)(?:[a-z]{3}\s*)?[$€£¥]?\s*(-?[0-9][0-9,\s]*(?:\.[0-9]+)?)\s*([km])?\+?\s*(?:[a-z]{3})?$`)

func coerceString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case int:
		return strconv.Itoa(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case uint64:
		return strconv.FormatUint(s, 10), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(s), nil
	case time.Time:
		return s.Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("expected string, got %s", describe(v))
	}
}

func coerceNumber(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("expected finite number, got %v", n)
		}
		return n, nil
	case string:
		return parseFormattedNumber(n)
	default:
		return 0, fmt.Errorf("expected number, got %s", describe(v))
	}
}

// parseFormattedNumber normalizes strings such as "$1,500", "EUR 2,500" or
// "10k+" to a float.
func parseFormattedNumber(s string) (float64, error) {
	m := formattedNumber.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("expected number, got %q", s)
	}
	digits := strings.NewReplacer(",", "", " ", "").Replace(m[1])
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, fmt.Errorf("expected number, got %q", s)
	}
	switch strings.ToLower(m[2]) {
	case "k":
		f *= 1_000
	case "m":
		f *= 1_000_000
	}
	return f, nil
}

func coerceDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), nil
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("expected date (YYYY-MM-DD or RFC 3339), got %q", d)
	default:
		return time.Time{}, fmt.Errorf("expected date, got %s", describe(v))
	}
}

func coerceBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("expected boolean, got %q", b)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("expected boolean, got %s", describe(v))
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

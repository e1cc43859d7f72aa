package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrNotNumeric = errors.New("value is not numeric")

// ParseFloat converts a string to a float64, returning 0 for an empty string
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	return value, nil
}

// ToNumber coerces a decoded JSON/form value into a float64. Numeric
// strings are accepted since form inputs submit everything as text.
func ToNumber(v interface{}) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, ErrNotNumeric
		}
		f = parsed
	case string:
		if strings.TrimSpace(n) == "" {
			return 0, ErrNotNumeric
		}
		parsed, err := ParseFloat(n)
		if err != nil {
			return 0, ErrNotNumeric
		}
		f = parsed
	default:
		return 0, ErrNotNumeric
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotNumeric
	}
	return f, nil
}

// ToInt coerces v like ToNumber and additionally requires a whole number.
func ToInt(v interface{}) (int, error) {
	f, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not a whole number", v)
	}
	return int(f), nil
}

// ToDate accepts a calendar date (2006-01-02) or a full RFC3339 timestamp
// and returns it normalized to the calendar date form.
func ToDate(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.New("date must be a string")
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Format("2006-01-02"), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02"), nil
	}
	return "", fmt.Errorf("%q is not a valid date", s)
}

package activity

import (
	"encoding/json"
	"strconv"
)

// Summary is one raw activity record as Garmin Connect returns it.
// Every field might be missing or carry an unexpected type, so all
// access goes through the coercion helpers below.
type Summary map[string]any

// ID returns the external activity id as a string. Garmin sends it as a
// number, so a JSON decode leaves a float64 behind.
func (s Summary) ID() string {
	switch v := s["activityId"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// TypeKey returns the nested activityType.typeKey or "".
func (s Summary) TypeKey() string {
	at, ok := s["activityType"].(map[string]any)
	if !ok {
		return ""
	}
	key, _ := at["typeKey"].(string)
	return key
}

// StartTimeGMT returns the raw "YYYY-MM-DD HH:MM:SS" start time or "".
func (s Summary) StartTimeGMT() string {
	v, _ := s["startTimeGMT"].(string)
	return v
}

// Float returns the field as float64 when it is present and numeric.
func (s Summary) Float(key string) (float64, bool) {
	return toFloat(s[key])
}

// OptFloat is the best-effort variant: nil when the field is missing
// or cannot be coerced, so one bad field never discards the record.
func (s Summary) OptFloat(key string) *float64 {
	f, ok := toFloat(s[key])
	if !ok {
		return nil
	}
	return &f
}

// OptInt is OptFloat truncated to an int.
func (s Summary) OptInt(key string) *int {
	f, ok := toFloat(s[key])
	if !ok {
		return nil
	}
	i := int(f)
	return &i
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

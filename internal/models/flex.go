package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// TimestampFields lists record fields probed, in order, for a creation time.
var TimestampFields = []string{"createdAt", "created_at", "submitted_at", "submittedAt", "date"}

var zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}

// Layouts without an offset are wall-clock times in the dashboard zone.
var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var wallClock atomic.Pointer[time.Location]

// SetWallClockZone sets the zone used for timestamps that carry no offset.
// A nil location resets it to UTC.
func SetWallClockZone(loc *time.Location) {
	wallClock.Store(loc)
}

// WallClockZone returns the zone applied to timestamps without an offset.
func WallClockZone() *time.Location {
	if loc := wallClock.Load(); loc != nil {
		return loc
	}
	return time.UTC
}

// ID is an identifier the backend sends either as a JSON number or string.
type ID string

// UnmarshalJSON accepts numbers, strings, null and included objects that
// carry their own "id".
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '{' {
		var ref struct {
			ID ID `json:"id"`
		}
		if err := json.Unmarshal(data, &ref); err != nil {
			return err
		}
		*id = ref.ID
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier text.
func (id ID) String() string { return string(id) }

// Bool tolerates `true`, `"true"`, `1`, `"1"` and `"yes"` spellings.
type Bool bool

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bool) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.ToLower(strings.TrimSpace(string(data))), `"`)
	switch raw {
	case "true", "1", "yes", "paid":
		*b = true
	default:
		*b = false
	}
	return nil
}

// Strings accepts a JSON array, a JSON-encoded array string, or a comma separated string.
type Strings []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Strings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*s = Strings{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = compact(list)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		*s = compact(list)
		return nil
	}
	*s = compact(strings.Split(text, ","))
	return nil
}

// Text is a free-text field. Strings decode as-is; numbers and booleans keep
// their literal; objects yield their name, title or label; arrays join their
// text elements with ", ". Anything else is empty.
type Text string

// UnmarshalJSON never fails so one odd field cannot drop a whole record.
func (t *Text) UnmarshalJSON(data []byte) error {
	*t = ""
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil
	}
	*t = Text(textOf(value))
	return nil
}

// String returns the text.
func (t Text) String() string { return string(t) }

func textOf(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case map[string]interface{}:
		for _, key := range []string{"name", "title", "label", "value"} {
			if s := strings.TrimSpace(textOf(v[key])); s != "" {
				return s
			}
		}
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(textOf(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func compact(values []string) Strings {
	out := make(Strings, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ParseTime interprets a decoded JSON value as a timestamp using the
// configured wall-clock zone.
func ParseTime(value interface{}) (time.Time, bool) {
	return ParseTimeIn(value, WallClockZone())
}

// ParseTimeIn interprets a decoded JSON value as a timestamp. Strings are
// tried against common layouts, reading offset-less ones in loc; numbers
// are epoch milliseconds.
func ParseTimeIn(value interface{}, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch v := value.(type) {
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return time.Time{}, false
		}
		for _, layout := range zonedLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		for _, layout := range localLayouts {
			if t, err := time.ParseInLocation(layout, v, loc); err == nil {
				return t, true
			}
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.UnixMilli(ms), true
		}
	case float64:
		if v > 0 {
			return time.UnixMilli(int64(v)), true
		}
	case json.Number:
		if ms, err := v.Int64(); err == nil && ms > 0 {
			return time.UnixMilli(ms), true
		}
	case time.Time:
		return v, !v.IsZero()
	}
	return time.Time{}, false
}

// FirstTimestamp returns the first field of raw that parses as a time.
func FirstTimestamp(raw map[string]interface{}, fields ...string) (time.Time, bool) {
	if len(fields) == 0 {
		fields = TimestampFields
	}
	for _, field := range fields {
		if value, ok := raw[field]; ok {
			if t, ok := ParseTime(value); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// resolveTimestamp decodes data loosely and returns its creation time, if any.
func resolveTimestamp(data []byte) time.Time {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return time.Time{}
	}
	t, _ := FirstTimestamp(raw)
	return t
}

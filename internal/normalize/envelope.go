// Package normalize turns loosely shaped backend responses into ordered,
// typed and tenant-scoped record sequences.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultPaths are probed, in order, when an endpoint has no entity key.
var DefaultPaths = []string{"data.data", "data.result", "data.payload", "data"}

// PathsFor returns the probe order for an endpoint whose payload may also sit
// under data.<entity> (for example data.articles).
func PathsFor(entity string) []string {
	entity = strings.TrimSpace(entity)
	if entity == "" {
		return DefaultPaths
	}
	return []string{"data.data", "data." + entity, "data.result", "data.payload", "data"}
}

// ParseBody decodes a raw HTTP body and wraps it the way a browser client sees
// a response: the body itself lives under "data".
func ParseBody(body []byte) (map[string]interface{}, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]interface{}{"data": nil}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var decoded interface{}
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return map[string]interface{}{"data": decoded}, nil
}

// ExtractArray returns the first array found along paths. The result is never
// nil; an envelope with no array at any path yields an empty slice.
func ExtractArray(envelope interface{}, paths []string) []interface{} {
	for _, path := range paths {
		if arr, ok := lookup(envelope, path).([]interface{}); ok {
			return arr
		}
	}
	return []interface{}{}
}

func lookup(value interface{}, path string) interface{} {
	current := value
	for _, segment := range strings.Split(path, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = obj[segment]
		if !ok {
			return nil
		}
	}
	return current
}

// Decode converts extracted items into T, preserving order. Items that do
// not decode are skipped and counted in dropped.
func Decode[T any](items []interface{}) (records []T, dropped int) {
	records = make([]T, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			dropped++
			continue
		}
		var record T
		if err := json.Unmarshal(raw, &record); err != nil {
			dropped++
			continue
		}
		records = append(records, record)
	}
	return records, dropped
}

// Records parses body, extracts the payload array using paths and decodes it.
func Records[T any](body []byte, paths []string) ([]T, int, error) {
	envelope, err := ParseBody(body)
	if err != nil {
		return []T{}, 0, err
	}
	records, dropped := Decode[T](ExtractArray(envelope, paths))
	return records, dropped, nil
}

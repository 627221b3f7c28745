// Package stats fetches and validates the Bluesky network-wide statistics
// snapshot published by the stats endpoint.
package stats

import (
	"encoding/json"
	"fmt"
)

// requiredKeys are the fields every snapshot payload must carry. Order
// matters: validation reports the first missing key.
var requiredKeys = []string{
	"total_users",
	"total_posts",
	"total_follows",
	"total_likes",
	"users_growth_rate_per_second",
	"last_update_time",
	"next_update_time",
}

// Snapshot is one fetched statistics payload. The typed fields drive delta
// computation and reporting; the full raw payload, including any fields this
// program does not know about, is retained for archival.
type Snapshot struct {
	TotalUsers   int64
	TotalPosts   int64
	TotalFollows int64
	TotalLikes   int64
	GrowthRate   float64

	fields map[string]json.RawMessage
}

// Payload returns the complete fetched payload, unknown fields included.
func (s *Snapshot) Payload() map[string]json.RawMessage {
	return s.fields
}

// Parse decodes a snapshot payload and verifies that every required key is
// present. A missing key yields a ValidationError naming it.
func Parse(body []byte) (*Snapshot, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	for _, key := range requiredKeys {
		if _, ok := fields[key]; !ok {
			return nil, &ValidationError{Key: key}
		}
	}
	return fromFields(fields)
}

// ParseLenient decodes a snapshot payload without requiring any key to be
// present; absent numeric fields read as zero. Used when loading archived
// history, where an older snapshot may predate a field.
func ParseLenient(body []byte) (*Snapshot, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	return fromFields(fields)
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("decoding stats payload: %w", err)
	}
	return fields, nil
}

func fromFields(fields map[string]json.RawMessage) (*Snapshot, error) {
	s := &Snapshot{fields: fields}

	var err error
	if s.TotalUsers, err = intField(fields, "total_users"); err != nil {
		return nil, err
	}
	if s.TotalPosts, err = intField(fields, "total_posts"); err != nil {
		return nil, err
	}
	if s.TotalFollows, err = intField(fields, "total_follows"); err != nil {
		return nil, err
	}
	if s.TotalLikes, err = intField(fields, "total_likes"); err != nil {
		return nil, err
	}
	if s.GrowthRate, err = floatField(fields, "users_growth_rate_per_second"); err != nil {
		return nil, err
	}
	return s, nil
}

// intField reads a counter field, tolerating both integer and float JSON
// encodings. Absent fields read as zero.
func intField(fields map[string]json.RawMessage, key string) (int64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("field %s: %w", key, err)
	}
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", key, err)
	}
	return int64(f), nil
}

func floatField(fields map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("field %s: %w", key, err)
	}
	return v, nil
}

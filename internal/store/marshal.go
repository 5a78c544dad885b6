package store

import (
	"encoding/json"
	"fmt"
)

// marshalExtra serializes the open extension tag map to JSON for the
// `extra` column. A nil map serializes as an empty object so the column
// round-trips cleanly.
func marshalExtra(extra map[string]string) (string, error) {
	if len(extra) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("marshal extra tags: %w", err)
	}
	return string(data), nil
}

// unmarshalExtra parses the `extra` column back to a map.
// Empty objects come back as nil to keep records comparable.
func unmarshalExtra(data string) (map[string]string, error) {
	if data == "" || data == "{}" {
		return nil, nil
	}
	var extra map[string]string
	if err := json.Unmarshal([]byte(data), &extra); err != nil {
		return nil, fmt.Errorf("unmarshal extra tags: %w", err)
	}
	if len(extra) == 0 {
		return nil, nil
	}
	return extra, nil
}

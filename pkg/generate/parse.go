package generate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON pulls the first JSON value of the expected shape out of a
// service reply. Models often wrap JSON in markdown fences or prose, so
// we slice from the first opening bracket to the last closing one.
func extractJSON(reply string, array bool) (string, error) {
	open, closing := "{", "}"
	if array {
		open, closing = "[", "]"
	}

	start := strings.Index(reply, open)
	end := strings.LastIndex(reply, closing)
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON %s...%s found in reply", open, closing)
	}
	return reply[start : end+1], nil
}

// decodeObject decodes a single JSON object reply into v.
func decodeObject(reply string, v any) error {
	raw, err := extractJSON(reply, false)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode JSON object: %w", err)
	}
	return nil
}

// decodeArray decodes a JSON array reply into v.
func decodeArray(reply string, v any) error {
	raw, err := extractJSON(reply, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode JSON array: %w", err)
	}
	return nil
}

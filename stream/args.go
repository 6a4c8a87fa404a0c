package stream

import "encoding/json"

// parseArgs decodes the concatenated JSON-fragment args of a tool-call part
// into its object form. An empty accumulation (no args ever streamed)
// yields nil, matching the "args may be null" wire rule.
func parseArgs(raw string) map[string]any {
	if raw == "" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil
	}
	return m
}

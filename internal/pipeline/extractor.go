package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Assignment is the structured decision the synthesis stage is expected to
// embed in its output. Label values are stored verbatim; no coercion against
// the closed category/severity/priority sets happens here.
type Assignment struct {
	Category  string `json:"category"`
	Severity  string `json:"severity"`
	Priority  string `json:"priority"`
	ManagerID int    `json:"manager_id"`
	Reason    string `json:"reason"`
}

// ExtractionError reports that the terminal stage produced no usable
// structured payload. It is a normal pipeline outcome, not a fault; callers
// record it against the ticket instead of propagating it.
type ExtractionError struct {
	Reason string
}

func (e *ExtractionError) Error() string {
	return "extraction failed: " + e.Reason
}

// Extract locates the structured payload inside the raw stage output and
// validates its required keys. Models tend to wrap the object in prose or
// markdown fences, so the scan takes the widest brace-delimited span: first
// '{' through last '}'.
func Extract(raw string) (*Assignment, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, &ExtractionError{Reason: "no structured payload in output"}
	}

	payload := raw[start : end+1]

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, &ExtractionError{Reason: fmt.Sprintf("invalid payload: %v", err)}
	}
	for _, key := range []string{"category", "severity", "priority", "manager_id", "reason"} {
		if _, ok := fields[key]; !ok {
			return nil, &ExtractionError{Reason: fmt.Sprintf("missing required key %q", key)}
		}
	}

	var assignment Assignment
	if err := json.Unmarshal([]byte(payload), &assignment); err != nil {
		return nil, &ExtractionError{Reason: fmt.Sprintf("invalid payload: %v", err)}
	}
	return &assignment, nil
}

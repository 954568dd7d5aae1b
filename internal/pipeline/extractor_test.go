package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPayloadEmbeddedInProse(t *testing.T) {
	raw := `After weighing the reports from all analysts, my decision follows.

{
    "category": "Infrastructure",
    "severity": "P1",
    "priority": "High",
    "manager_id": 4,
    "reason": "Video buffering points to CDN degradation; Rajesh Kumar owns platform reliability."
}

Please proceed with the assignment.`

	assignment, err := Extract(raw)
	require.NoError(t, err)
	require.Equal(t, "Infrastructure", assignment.Category)
	require.Equal(t, "P1", assignment.Severity)
	require.Equal(t, "High", assignment.Priority)
	require.Equal(t, 4, assignment.ManagerID)
	require.Contains(t, assignment.Reason, "Rajesh Kumar")
}

func TestExtractMarkdownFencedPayload(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"category\":\"Payments\",\"severity\":\"P0\",\"priority\":\"High\",\"manager_id\":1,\"reason\":\"billing outage\"}\n```"

	assignment, err := Extract(raw)
	require.NoError(t, err)
	require.Equal(t, "Payments", assignment.Category)
	require.Equal(t, 1, assignment.ManagerID)
}

func TestExtractBarePayload(t *testing.T) {
	raw := `{"category":"General","severity":"P2","priority":"Low","manager_id":1,"reason":"routine question"}`

	assignment, err := Extract(raw)
	require.NoError(t, err)
	require.Equal(t, "General", assignment.Category)
	require.Equal(t, "P2", assignment.Severity)
	require.Equal(t, "Low", assignment.Priority)
}

func TestExtractNoBraces(t *testing.T) {
	_, err := Extract("I was unable to reach a decision for this ticket.")

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	require.Contains(t, extractionErr.Reason, "no structured payload")
}

func TestExtractMissingRequiredKey(t *testing.T) {
	raw := `{"category":"Technical","severity":"P1","priority":"Medium","reason":"missing the assignee"}`

	var extractionErr *ExtractionError
	_, err := Extract(raw)
	require.ErrorAs(t, err, &extractionErr)
	require.Contains(t, extractionErr.Reason, `"manager_id"`)
}

func TestExtractMalformedPayload(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"unbalanced braces", "result: } nothing here {"},
		{"invalid json between braces", "decision {category: Technical, manager: four}"},
		{"wrong manager_id type", `{"category":"Technical","severity":"P1","priority":"High","manager_id":"four","reason":"x"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract(tc.raw)
			var extractionErr *ExtractionError
			require.ErrorAs(t, err, &extractionErr)
		})
	}
}

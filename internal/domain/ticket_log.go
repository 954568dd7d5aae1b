package domain

import "time"

// Log action labels for ticket lifecycle transitions.
const (
	LogActionCreated          = "Ticket Created"
	LogActionAnalysisStarted  = "AI Analysis Started"
	LogActionAnalysisComplete = "AI Analysis Completed"
	LogActionAnalysisFailed   = "AI Analysis Failed"
	LogActionAssigned         = "Ticket Assigned"
	LogActionResolved         = "Ticket Resolved"
	LogActionReopened         = "Ticket Reopened"
)

// TicketLog is an immutable audit trail entry. Entries are append-only and
// queried in ascending timestamp order.
type TicketLog struct {
	ID        int64
	TicketID  string
	Action    string
	Details   string
	CreatedAt time.Time
}

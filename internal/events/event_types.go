package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventAnalysisStarted EventType = "analysis_started"
	EventTicketAssigned  EventType = "ticket_assigned"
	EventAnalysisFailed  EventType = "analysis_failed"
	EventTicketResolved  EventType = "ticket_resolved"
	EventTicketReopened  EventType = "ticket_reopened"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Category  string `json:"category"`
	Severity  string `json:"severity"`
	Priority  string `json:"priority"`
	ManagerID int    `json:"manager_id"`
}

// AnalysisFailedPayload payload.
type AnalysisFailedPayload struct {
	Reason string `json:"reason"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Notes  string `json:"notes"`
}

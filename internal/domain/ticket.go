package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "Open"
	TicketStatusAssigned TicketStatus = "Assigned"
	TicketStatusResolved TicketStatus = "Resolved"
)

// TicketSeverity enumerates incident severity bands produced by analysis.
type TicketSeverity string

const (
	SeverityP0 TicketSeverity = "P0"
	SeverityP1 TicketSeverity = "P1"
	SeverityP2 TicketSeverity = "P2"
)

// TicketPriority enumerates SLA urgency produced by analysis.
type TicketPriority string

const (
	TicketPriorityHigh   TicketPriority = "High"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityLow    TicketPriority = "Low"
)

// TicketCategory is the closed label set the classification stage works from.
type TicketCategory string

const (
	CategoryPayments       TicketCategory = "Payments"
	CategoryTechnical      TicketCategory = "Technical"
	CategoryAccess         TicketCategory = "Access"
	CategoryInfrastructure TicketCategory = "Infrastructure"
	CategoryGeneral        TicketCategory = "General"
)

// Ticket is the aggregate for support requests. Category, severity, priority,
// assigned manager and rationale stay nil until the analysis pipeline writes
// them as one unit; resolution fields stay nil until a human resolves.
type Ticket struct {
	ID                string
	UserID            string
	Title             string
	Description       string
	Category          *string
	Severity          *string
	Priority          *string
	Status            TicketStatus
	AssignedManagerID *int
	AssignmentReason  *string
	ResolutionNotes   *string
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

// Analyzed reports whether the pipeline has populated the assignment fields.
func (t *Ticket) Analyzed() bool {
	return t.Category != nil && t.Severity != nil && t.Priority != nil && t.AssignedManagerID != nil
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:     {TicketStatusAssigned, TicketStatusResolved},
	TicketStatusAssigned: {TicketStatusResolved},
	TicketStatusResolved: {TicketStatusOpen},
}

// CanTransition reports whether moving from current to next is legal.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

package dto

import (
	"time"

	"github.com/trugen/triage-service/internal/domain"
)

// CreateTicketRequest is the submission payload.
type CreateTicketRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ResolveTicketRequest carries resolution notes.
type ResolveTicketRequest struct {
	Notes string `json:"notes"`
}

// AdminLoginRequest carries the admin password.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginResponse returns the issued token.
type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TicketSummary is the list representation of a ticket.
type TicketSummary struct {
	ID        string              `json:"ticket_id"`
	Title     string              `json:"title"`
	Status    domain.TicketStatus `json:"status"`
	Category  *string             `json:"category,omitempty"`
	Severity  *string             `json:"severity,omitempty"`
	Priority  *string             `json:"priority,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

// TicketDetailResponse is the full ticket representation.
type TicketDetailResponse struct {
	ID                string              `json:"ticket_id"`
	UserID            string              `json:"user_id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Status            domain.TicketStatus `json:"status"`
	Category          *string             `json:"category,omitempty"`
	Severity          *string             `json:"severity,omitempty"`
	Priority          *string             `json:"priority,omitempty"`
	AssignedManagerID *int                `json:"assigned_manager_id,omitempty"`
	ManagerName       *string             `json:"manager_name,omitempty"`
	AssignmentReason  *string             `json:"assignment_reason,omitempty"`
	ResolutionNotes   *string             `json:"resolution_notes,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	ResolvedAt        *time.Time          `json:"resolved_at,omitempty"`
	Logs              []TicketLogResponse `json:"logs"`
}

// TicketLogResponse is one audit entry.
type TicketLogResponse struct {
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// ManagerResponse is one roster entry.
type ManagerResponse struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Active     bool   `json:"active"`
}

// StatsResponse aggregates dashboard counts.
type StatsResponse struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	BySeverity map[string]int64 `json:"by_severity"`
}

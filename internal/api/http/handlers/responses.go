package handlers

import (
	"github.com/trugen/triage-service/internal/api/dto"
	"github.com/trugen/triage-service/internal/domain"
	"github.com/trugen/triage-service/internal/service"
)

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:        ticket.ID,
		Title:     ticket.Title,
		Status:    ticket.Status,
		Category:  ticket.Category,
		Severity:  ticket.Severity,
		Priority:  ticket.Priority,
		CreatedAt: ticket.CreatedAt,
	}
}

func ticketDetail(detail *service.TicketDetail) dto.TicketDetailResponse {
	ticket := detail.Ticket
	logs := make([]dto.TicketLogResponse, 0, len(detail.Logs))
	for _, entry := range detail.Logs {
		logs = append(logs, dto.TicketLogResponse{
			Action:    entry.Action,
			Details:   entry.Details,
			CreatedAt: entry.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{
		ID:                ticket.ID,
		UserID:            ticket.UserID,
		Title:             ticket.Title,
		Description:       ticket.Description,
		Status:            ticket.Status,
		Category:          ticket.Category,
		Severity:          ticket.Severity,
		Priority:          ticket.Priority,
		AssignedManagerID: ticket.AssignedManagerID,
		ManagerName:       detail.ManagerName,
		AssignmentReason:  ticket.AssignmentReason,
		ResolutionNotes:   ticket.ResolutionNotes,
		CreatedAt:         ticket.CreatedAt,
		ResolvedAt:        ticket.ResolvedAt,
		Logs:              logs,
	}
}

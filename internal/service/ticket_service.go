package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trugen/triage-service/internal/domain"
	"github.com/trugen/triage-service/internal/events"
	"github.com/trugen/triage-service/internal/repository"
	apperrors "github.com/trugen/triage-service/pkg/util/errorutil"
)

// ticketIDPrefix is the externally visible ticket identifier prefix.
const ticketIDPrefix = "TRU"

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets       repository.TicketRepository
	logs          repository.TicketLogRepository
	managers      repository.ManagerRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	maxIDAttempts int
	now           func() time.Time
	randSuffix    func() int
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo    repository.TicketRepository
	LogRepo       repository.TicketLogRepository
	ManagerRepo   repository.ManagerRepository
	UserRepo      repository.UserRepository
	Dispatcher    events.Dispatcher
	MaxIDAttempts int
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Name        string
	Email       string
	Phone       string
	Title       string
	Description string
}

// TicketDetail pairs a ticket with its resolved manager and audit trail.
type TicketDetail struct {
	Ticket      *domain.Ticket
	ManagerName *string
	Logs        []domain.TicketLog
}

// TicketListFilter describes admin listing filters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Severities  []string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	attempts := deps.MaxIDAttempts
	if attempts <= 0 {
		attempts = 3
	}
	return &TicketService{
		tickets:       deps.TicketRepo,
		logs:          deps.LogRepo,
		managers:      deps.ManagerRepo,
		users:         deps.UserRepo,
		dispatcher:    deps.Dispatcher,
		maxIDAttempts: attempts,
		now:           time.Now,
		randSuffix:    func() int { return 100 + rand.Intn(900) },
	}
}

// CreateTicket registers the submitter, persists a new Open ticket, and
// publishes ticket_created so the analysis worker picks it up. The caller
// gets the ticket back immediately; analysis happens in the background.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if title == "" || description == "" || email == "" {
		return nil, apperrors.NewValidationError("email, title and description required", nil)
	}

	user := &domain.User{
		ID:    email,
		Name:  strings.TrimSpace(input.Name),
		Email: email,
		Phone: strings.TrimSpace(input.Phone),
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		UserID:      user.ID,
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
	}

	// Minute-resolution timestamp plus a 3-digit suffix collides under
	// concurrent load within the same minute; regenerate on conflict.
	var err error
	for attempt := 0; attempt < s.maxIDAttempts; attempt++ {
		ticket.ID = s.generateTicketID()
		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateTicketID) {
			return nil, apperrors.MapError(err)
		}
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.logs.Append(ctx, &domain.TicketLog{
		TicketID: ticket.ID,
		Action:   domain.LogActionCreated,
		Details:  fmt.Sprintf("Ticket raised by user %s", user.ID),
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			UserID: user.ID,
			Title:  ticket.Title,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its manager name and audit trail.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*TicketDetail, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	detail := &TicketDetail{Ticket: ticket}
	if ticket.AssignedManagerID != nil {
		manager, err := s.managers.GetByID(ctx, *ticket.AssignedManagerID)
		if err == nil {
			detail.ManagerName = &manager.Name
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
	}

	logs, err := s.logs.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	detail.Logs = logs
	return detail, nil
}

// ListTickets returns tickets matching the admin filter.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Severities:  filter.Severities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ResolveTicket marks a ticket resolved with the given notes. Resolving an
// already Resolved ticket is a no-op: state is untouched and no duplicate
// audit entry is appended.
func (s *TicketService) ResolveTicket(ctx context.Context, ticketID, notes string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.Status == domain.TicketStatusResolved {
		return ticket, nil
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusResolved) {
		return nil, apperrors.NewConflict("ticket cannot be resolved in current status",
			map[string]any{"status": ticket.Status})
	}

	resolvedAt := s.now()
	if err := s.tickets.Resolve(ctx, ticketID, notes, resolvedAt); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.logs.Append(ctx, &domain.TicketLog{
		TicketID: ticketID,
		Action:   domain.LogActionResolved,
		Details:  notes,
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket.Status = domain.TicketStatusResolved
	ticket.ResolutionNotes = &notes
	ticket.ResolvedAt = &resolvedAt
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketResolved,
		TicketID: ticketID,
		Payload: events.TicketResolvedPayload{
			UserID: ticket.UserID,
			Title:  ticket.Title,
			Notes:  notes,
		},
	})
	return ticket, nil
}

// ReopenTicket returns a Resolved ticket to Open. Re-open from any other
// status is rejected. No automatic re-analysis is triggered; an operator or
// an external caller must resubmit the ticket for analysis.
func (s *TicketService) ReopenTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if ticket.Status != domain.TicketStatusResolved {
		return nil, apperrors.NewConflict("only resolved tickets can be reopened",
			map[string]any{"status": ticket.Status})
	}

	if err := s.tickets.Reopen(ctx, ticketID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.logs.Append(ctx, &domain.TicketLog{
		TicketID: ticketID,
		Action:   domain.LogActionReopened,
		Details:  "Ticket reopened by an administrator.",
	}); err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket.Status = domain.TicketStatusOpen
	ticket.ResolutionNotes = nil
	ticket.ResolvedAt = nil
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReopened,
		TicketID: ticketID,
	})
	return ticket, nil
}

// ListManagers returns the assignment roster.
func (s *TicketService) ListManagers(ctx context.Context, activeOnly bool) ([]domain.Manager, error) {
	managers, err := s.managers.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return managers, nil
}

// Stats returns dashboard aggregates.
func (s *TicketService) Stats(ctx context.Context) (*repository.TicketStats, error) {
	stats, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

func (s *TicketService) generateTicketID() string {
	stamp := s.now().Format("200601021504")
	return fmt.Sprintf("%s-%s-%d", ticketIDPrefix, stamp, s.randSuffix())
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/trugen/triage-service/internal/domain"
	"github.com/trugen/triage-service/internal/events"
	"github.com/trugen/triage-service/internal/repository"
)

// reasonLogLimit bounds how much of the rationale lands in the audit entry.
// The full rationale stays on the ticket record.
const reasonLogLimit = 100

// Recorder applies a pipeline outcome to ticket state and the audit trail.
type Recorder struct {
	tickets             repository.TicketRepository
	logs                repository.TicketLogRepository
	managers            repository.ManagerRepository
	dispatcher          events.Dispatcher
	logger              *zap.Logger
	failureDetailLength int
}

// RecorderDependencies bundles collaborators for the recorder.
type RecorderDependencies struct {
	TicketRepo          repository.TicketRepository
	LogRepo             repository.TicketLogRepository
	ManagerRepo         repository.ManagerRepository
	Dispatcher          events.Dispatcher
	Logger              *zap.Logger
	FailureDetailLength int
}

// NewRecorder constructs the recorder.
func NewRecorder(deps RecorderDependencies) *Recorder {
	length := deps.FailureDetailLength
	if length <= 0 {
		length = 500
	}
	return &Recorder{
		tickets:             deps.TicketRepo,
		logs:                deps.LogRepo,
		managers:            deps.ManagerRepo,
		dispatcher:          deps.Dispatcher,
		logger:              deps.Logger,
		failureDetailLength: length,
	}
}

// RecordAssignment writes the extracted decision to the ticket as one atomic
// update, transitions it to Assigned, and appends the assignment audit entry.
// Store errors propagate; swallowing them would silently lose audit history.
func (r *Recorder) RecordAssignment(ctx context.Context, ticketID string, assignment *Assignment) error {
	manager, err := r.managers.GetByID(ctx, assignment.ManagerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.RecordFailure(ctx, ticketID, "",
				&ExtractionError{Reason: fmt.Sprintf("manager id %d not in roster", assignment.ManagerID)})
		}
		return err
	}
	if !manager.Active {
		return r.RecordFailure(ctx, ticketID, "",
			&ExtractionError{Reason: fmt.Sprintf("manager id %d is inactive", assignment.ManagerID)})
	}

	if err := r.tickets.UpdateAssignment(ctx, ticketID,
		assignment.Category, assignment.Severity, assignment.Priority,
		assignment.ManagerID, assignment.Reason); err != nil {
		return err
	}

	detail := fmt.Sprintf("Assigned to %s (manager ID %d). Reason: %s",
		manager.Name, assignment.ManagerID, truncate(assignment.Reason, reasonLogLimit))
	if err := r.logs.Append(ctx, &domain.TicketLog{
		TicketID: ticketID,
		Action:   domain.LogActionAssigned,
		Details:  detail,
	}); err != nil {
		return err
	}
	if err := r.logs.Append(ctx, &domain.TicketLog{
		TicketID: ticketID,
		Action:   domain.LogActionAnalysisComplete,
		Details:  "Ticket has been successfully assigned.",
	}); err != nil {
		return err
	}

	r.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticketID,
		Payload: events.TicketAssignedPayload{
			Category:  assignment.Category,
			Severity:  assignment.Severity,
			Priority:  assignment.Priority,
			ManagerID: assignment.ManagerID,
		},
	})
	r.logger.Info("ticket assigned",
		zap.String("ticket_id", ticketID),
		zap.Int("manager_id", assignment.ManagerID),
		zap.String("severity", assignment.Severity))
	return nil
}

// RecordFailure leaves the ticket untouched and appends a single audit entry
// with enough of the raw output and the cause to support manual handling.
func (r *Recorder) RecordFailure(ctx context.Context, ticketID, raw string, cause error) error {
	detail := "AI failed to produce a structured assignment."
	if cause != nil {
		detail = cause.Error()
	}
	if raw != "" {
		detail += " Output: " + truncate(raw, r.failureDetailLength)
	}

	if err := r.logs.Append(ctx, &domain.TicketLog{
		TicketID: ticketID,
		Action:   domain.LogActionAnalysisFailed,
		Details:  detail,
	}); err != nil {
		return err
	}

	r.publish(ctx, events.Event{
		Type:     events.EventAnalysisFailed,
		TicketID: ticketID,
		Payload:  events.AnalysisFailedPayload{Reason: detail},
	})
	r.logger.Warn("analysis produced no usable assignment",
		zap.String("ticket_id", ticketID),
		zap.Error(cause))
	return nil
}

func (r *Recorder) publish(ctx context.Context, event events.Event) {
	if r.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = r.dispatcher.Publish(ctx, event)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trugen/triage-service/internal/agent"
	"github.com/trugen/triage-service/internal/domain"
	"github.com/trugen/triage-service/internal/observability"
)

// Result is the outcome of one pipeline run: the raw text of the terminal
// stage plus the intermediate outputs, tagged with the originating ticket.
type Result struct {
	TicketID string
	Raw      string
	Stages   []agent.StageOutput
}

// Orchestrator sequences the five analysis stages for one ticket.
type Orchestrator struct {
	collaborator agent.Collaborator
	stages       []Stage
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// NewOrchestrator builds an orchestrator over the given collaborator.
func NewOrchestrator(collaborator agent.Collaborator, logger *zap.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		collaborator: collaborator,
		stages:       Stages(),
		logger:       logger,
		metrics:      metrics,
	}
}

// Run executes the stages sequentially. Stages that do not consume context
// see only the raw ticket; the terminal stage receives the accumulated
// outputs in stage order. Any stage failure aborts the run with no fallback.
func (o *Orchestrator) Run(ctx context.Context, ticket *domain.Ticket) (*Result, error) {
	var prior []agent.StageOutput
	var raw string

	for _, stage := range o.stages {
		var stageContext []agent.StageOutput
		if stage.UsesContext {
			stageContext = prior
		}

		start := time.Now()
		output, err := o.collaborator.Invoke(ctx, stage.Persona, stage.BuildTask(ticket), stageContext)
		o.metrics.ObserveStage(stage.Name, time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name, err)
		}

		o.logger.Debug("stage completed",
			zap.String("ticket_id", ticket.ID),
			zap.String("stage", stage.Name))

		prior = append(prior, agent.StageOutput{Role: stage.Persona.Role, Output: output})
		raw = output
	}

	return &Result{TicketID: ticket.ID, Raw: raw, Stages: prior}, nil
}

package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/trugen/triage-service/internal/domain"
	"github.com/trugen/triage-service/internal/events"
	"github.com/trugen/triage-service/internal/observability"
	"github.com/trugen/triage-service/internal/pipeline"
	"github.com/trugen/triage-service/internal/queue"
	"github.com/trugen/triage-service/internal/repository"
)

// AnalysisWorker consumes the analysis queue and drives the pipeline for each
// ticket. Submission never blocks on it; failures are observable only through
// the audit log.
type AnalysisWorker struct {
	queue        *queue.AnalysisQueue
	orchestrator *pipeline.Orchestrator
	recorder     *pipeline.Recorder
	tickets      repository.TicketRepository
	logs         repository.TicketLogRepository
	logger       *zap.Logger
	metrics      *observability.Metrics
	workers      int
	pollInterval time.Duration
}

// AnalysisWorkerDependencies bundles collaborators for the worker.
type AnalysisWorkerDependencies struct {
	Queue        *queue.AnalysisQueue
	Orchestrator *pipeline.Orchestrator
	Recorder     *pipeline.Recorder
	TicketRepo   repository.TicketRepository
	LogRepo      repository.TicketLogRepository
	Logger       *zap.Logger
	Metrics      *observability.Metrics
	Workers      int
	PollInterval time.Duration
}

// NewAnalysisWorker constructs the worker.
func NewAnalysisWorker(deps AnalysisWorkerDependencies) *AnalysisWorker {
	workers := deps.Workers
	if workers <= 0 {
		workers = 1
	}
	poll := deps.PollInterval
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	return &AnalysisWorker{
		queue:        deps.Queue,
		orchestrator: deps.Orchestrator,
		recorder:     deps.Recorder,
		tickets:      deps.TicketRepo,
		logs:         deps.LogRepo,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
		workers:      workers,
		pollInterval: poll,
	}
}

// RegisterHandlers subscribes the worker to ticket creation so that every
// submission lands on the analysis queue.
func (w *AnalysisWorker) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, func(ctx context.Context, event events.Event) error {
		return w.queue.Enqueue(ctx, event.TicketID)
	})
}

// Run starts the worker goroutines and blocks until ctx is cancelled.
func (w *AnalysisWorker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.loop(ctx)
		}()
	}
	wg.Wait()
}

func (w *AnalysisWorker) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := w.queue.RequeueExpired(ctx, time.Now(), 100); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Warn("requeue expired leases", zap.Error(err))
		}
		if depth, err := w.queue.Depth(ctx); err == nil {
			w.metrics.QueueDepth.Set(float64(depth))
		}

		ticketID, err := w.queue.DequeueWithLease(ctx)
		if err != nil || ticketID == "" {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.pollInterval):
			}
			continue
		}

		if err := w.process(ctx, ticketID); err != nil {
			// Leave the entry in-flight; the lease expires and the ticket
			// is retried by whichever worker reclaims it.
			w.logger.Error("analysis run failed",
				zap.String("ticket_id", ticketID),
				zap.Error(err))
			continue
		}
		if err := w.queue.Ack(ctx, ticketID); err != nil {
			w.logger.Warn("ack failed", zap.String("ticket_id", ticketID), zap.Error(err))
		}
	}
}

// process executes one pipeline run. A transport failure aborts the run with
// no ticket mutation; an extraction failure is a recorded outcome.
func (w *AnalysisWorker) process(ctx context.Context, ticketID string) error {
	ticket, err := w.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Nothing to analyze; retrying would spin forever.
			w.logger.Warn("queued ticket no longer exists", zap.String("ticket_id", ticketID))
			return nil
		}
		return err
	}

	if err := w.logs.Append(ctx, &domain.TicketLog{
		TicketID: ticket.ID,
		Action:   domain.LogActionAnalysisStarted,
		Details:  "Analysis agents are reviewing the ticket.",
	}); err != nil {
		return err
	}

	w.metrics.PipelineRuns.Inc()
	result, err := w.orchestrator.Run(ctx, ticket)
	if err != nil {
		w.metrics.PipelineFailures.Inc()
		return err
	}

	assignment, err := pipeline.Extract(result.Raw)
	if err != nil {
		var extractionErr *pipeline.ExtractionError
		if errors.As(err, &extractionErr) {
			w.metrics.ExtractionFailures.Inc()
			return w.recorder.RecordFailure(ctx, ticket.ID, result.Raw, extractionErr)
		}
		return err
	}

	w.metrics.ExtractionSuccess.Inc()
	return w.recorder.RecordAssignment(ctx, ticket.ID, assignment)
}

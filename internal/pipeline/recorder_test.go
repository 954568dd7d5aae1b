package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trugen/triage-service/internal/domain"
	"github.com/trugen/triage-service/internal/repository"
)

type assignmentCall struct {
	ticketID  string
	category  string
	severity  string
	priority  string
	managerID int
	reason    string
}

type fakeTicketStore struct {
	assignments []assignmentCall
}

func (f *fakeTicketStore) Create(context.Context, *domain.Ticket) error { return nil }
func (f *fakeTicketStore) GetByID(context.Context, string) (*domain.Ticket, error) {
	return nil, pgx.ErrNoRows
}
func (f *fakeTicketStore) ListWithFilter(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}
func (f *fakeTicketStore) UpdateAssignment(_ context.Context, id, category, severity, priority string, managerID int, reason string) error {
	f.assignments = append(f.assignments, assignmentCall{
		ticketID:  id,
		category:  category,
		severity:  severity,
		priority:  priority,
		managerID: managerID,
		reason:    reason,
	})
	return nil
}
func (f *fakeTicketStore) Resolve(context.Context, string, string, time.Time) error { return nil }
func (f *fakeTicketStore) Reopen(context.Context, string) error                     { return nil }
func (f *fakeTicketStore) Stats(context.Context) (*repository.TicketStats, error)   { return nil, nil }

type fakeLogStore struct {
	entries []domain.TicketLog
}

func (f *fakeLogStore) Append(_ context.Context, entry *domain.TicketLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}
func (f *fakeLogStore) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketLog, error) {
	var out []domain.TicketLog
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeManagerStore struct {
	roster map[int]domain.Manager
}

func (f *fakeManagerStore) GetByID(_ context.Context, id int) (*domain.Manager, error) {
	manager, ok := f.roster[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &manager, nil
}
func (f *fakeManagerStore) List(context.Context, bool) ([]domain.Manager, error) {
	return nil, nil
}

func newTestRecorder(tickets *fakeTicketStore, logs *fakeLogStore, managers *fakeManagerStore) *Recorder {
	return NewRecorder(RecorderDependencies{
		TicketRepo:  tickets,
		LogRepo:     logs,
		ManagerRepo: managers,
		Logger:      zap.NewNop(),
	})
}

func defaultRoster() *fakeManagerStore {
	return &fakeManagerStore{roster: map[int]domain.Manager{
		4: {ID: 4, Name: "Rajesh Kumar", Role: "SRE Lead", Active: true},
		5: {ID: 5, Name: "Vikram Reddy", Role: "Security Lead", Active: false},
	}}
}

func TestRecordAssignmentWritesTicketAndAuditTrail(t *testing.T) {
	tickets := &fakeTicketStore{}
	logs := &fakeLogStore{}
	recorder := newTestRecorder(tickets, logs, defaultRoster())

	err := recorder.RecordAssignment(context.Background(), "TRU-202601010930-412", &Assignment{
		Category:  "Infrastructure",
		Severity:  "P1",
		Priority:  "High",
		ManagerID: 4,
		Reason:    "CDN degradation affects playback",
	})
	require.NoError(t, err)

	require.Len(t, tickets.assignments, 1)
	call := tickets.assignments[0]
	require.Equal(t, "TRU-202601010930-412", call.ticketID)
	require.Equal(t, "Infrastructure", call.category)
	require.Equal(t, "P1", call.severity)
	require.Equal(t, "High", call.priority)
	require.Equal(t, 4, call.managerID)
	require.Equal(t, "CDN degradation affects playback", call.reason)

	require.Len(t, logs.entries, 2)
	require.Equal(t, domain.LogActionAssigned, logs.entries[0].Action)
	require.Contains(t, logs.entries[0].Details, "Assigned to Rajesh Kumar (manager ID 4)")
	require.Equal(t, domain.LogActionAnalysisComplete, logs.entries[1].Action)
}

func TestRecordAssignmentTruncatesReasonInAuditEntryOnly(t *testing.T) {
	tickets := &fakeTicketStore{}
	logs := &fakeLogStore{}
	recorder := newTestRecorder(tickets, logs, defaultRoster())

	longReason := strings.Repeat("performance regression across edge nodes ", 10)
	err := recorder.RecordAssignment(context.Background(), "TRU-202601010930-412", &Assignment{
		Category:  "Infrastructure",
		Severity:  "P1",
		Priority:  "High",
		ManagerID: 4,
		Reason:    longReason,
	})
	require.NoError(t, err)

	// Ticket keeps the full rationale; only the audit entry is bounded.
	require.Equal(t, longReason, tickets.assignments[0].reason)
	require.Contains(t, logs.entries[0].Details, longReason[:reasonLogLimit-3]+"...")
	require.NotContains(t, logs.entries[0].Details, longReason)
}

func TestRecordAssignmentUnknownManagerBecomesFailure(t *testing.T) {
	tickets := &fakeTicketStore{}
	logs := &fakeLogStore{}
	recorder := newTestRecorder(tickets, logs, defaultRoster())

	err := recorder.RecordAssignment(context.Background(), "TRU-202601010930-412", &Assignment{
		Category:  "General",
		Severity:  "P2",
		Priority:  "Low",
		ManagerID: 99,
		Reason:    "made up",
	})
	require.NoError(t, err)

	require.Empty(t, tickets.assignments, "ticket must stay untouched")
	require.Len(t, logs.entries, 1)
	require.Equal(t, domain.LogActionAnalysisFailed, logs.entries[0].Action)
	require.Contains(t, logs.entries[0].Details, "manager id 99 not in roster")
}

func TestRecordAssignmentInactiveManagerBecomesFailure(t *testing.T) {
	tickets := &fakeTicketStore{}
	logs := &fakeLogStore{}
	recorder := newTestRecorder(tickets, logs, defaultRoster())

	err := recorder.RecordAssignment(context.Background(), "TRU-202601010930-412", &Assignment{
		Category:  "Access",
		Severity:  "P1",
		Priority:  "High",
		ManagerID: 5,
		Reason:    "credentials leaked",
	})
	require.NoError(t, err)

	require.Empty(t, tickets.assignments)
	require.Len(t, logs.entries, 1)
	require.Contains(t, logs.entries[0].Details, "manager id 5 is inactive")
}

func TestRecordFailureAppendsSingleEntryWithTruncatedOutput(t *testing.T) {
	tickets := &fakeTicketStore{}
	logs := &fakeLogStore{}
	recorder := newTestRecorder(tickets, logs, defaultRoster())

	raw := strings.Repeat("the model rambled on without any structure ", 30)
	err := recorder.RecordFailure(context.Background(), "TRU-202601010930-412", raw,
		&ExtractionError{Reason: "no structured payload in output"})
	require.NoError(t, err)

	require.Empty(t, tickets.assignments)
	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	require.Equal(t, domain.LogActionAnalysisFailed, entry.Action)
	require.Contains(t, entry.Details, "no structured payload in output")
	require.NotContains(t, entry.Details, raw, "raw output must be truncated")
}

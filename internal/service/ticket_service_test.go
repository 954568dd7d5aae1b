package service

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/trugen/triage-service/internal/domain"
	"github.com/trugen/triage-service/internal/events"
	"github.com/trugen/triage-service/internal/repository"
	apperrors "github.com/trugen/triage-service/pkg/util/errorutil"
)

type memTicketRepo struct {
	byID         map[string]*domain.Ticket
	createErrs   []error
	createCalls  int
	resolveCalls int
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{byID: map[string]*domain.Ticket{}}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.createCalls++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	ticket.CreatedAt = time.Now()
	copied := *ticket
	r.byID[ticket.ID] = &copied
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *memTicketRepo) ListWithFilter(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}

func (r *memTicketRepo) UpdateAssignment(_ context.Context, id, category, severity, priority string, managerID int, reason string) error {
	ticket := r.byID[id]
	ticket.Category = &category
	ticket.Severity = &severity
	ticket.Priority = &priority
	ticket.AssignedManagerID = &managerID
	ticket.AssignmentReason = &reason
	ticket.Status = domain.TicketStatusAssigned
	return nil
}

func (r *memTicketRepo) Resolve(_ context.Context, id, notes string, resolvedAt time.Time) error {
	r.resolveCalls++
	ticket := r.byID[id]
	ticket.Status = domain.TicketStatusResolved
	ticket.ResolutionNotes = &notes
	ticket.ResolvedAt = &resolvedAt
	return nil
}

func (r *memTicketRepo) Reopen(_ context.Context, id string) error {
	ticket := r.byID[id]
	ticket.Status = domain.TicketStatusOpen
	ticket.ResolutionNotes = nil
	ticket.ResolvedAt = nil
	return nil
}

func (r *memTicketRepo) Stats(context.Context) (*repository.TicketStats, error) {
	return &repository.TicketStats{}, nil
}

type memLogRepo struct {
	entries []domain.TicketLog
}

func (r *memLogRepo) Append(_ context.Context, entry *domain.TicketLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memLogRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketLog, error) {
	var out []domain.TicketLog
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (r *memLogRepo) actions(ticketID string) []string {
	var out []string
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry.Action)
		}
	}
	return out
}

type memManagerRepo struct{}

func (memManagerRepo) GetByID(_ context.Context, id int) (*domain.Manager, error) {
	return &domain.Manager{ID: id, Name: "Rajesh Kumar", Active: true}, nil
}
func (memManagerRepo) List(context.Context, bool) ([]domain.Manager, error) { return nil, nil }

type memUserRepo struct {
	upserted []domain.User
}

func (r *memUserRepo) Upsert(_ context.Context, user *domain.User) error {
	r.upserted = append(r.upserted, *user)
	return nil
}
func (r *memUserRepo) GetByID(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}
func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

type serviceFixture struct {
	service    *TicketService
	tickets    *memTicketRepo
	logs       *memLogRepo
	users      *memUserRepo
	dispatcher *capturingDispatcher
}

func newServiceFixture() *serviceFixture {
	tickets := newMemTicketRepo()
	logs := &memLogRepo{}
	users := &memUserRepo{}
	dispatcher := &capturingDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		LogRepo:     logs,
		ManagerRepo: memManagerRepo{},
		UserRepo:    users,
		Dispatcher:  dispatcher,
	})
	svc.now = func() time.Time {
		return time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	}
	svc.randSuffix = func() int { return 412 }
	return &serviceFixture{service: svc, tickets: tickets, logs: logs, users: users, dispatcher: dispatcher}
}

func validInput() TicketCreateInput {
	return TicketCreateInput{
		Name:        "Rahul Verma",
		Email:       "Rahul.Verma@Example.com",
		Phone:       "9876500000",
		Title:       "Video keeps buffering",
		Description: "Lecture videos stall every few seconds since this morning.",
	}
}

func TestCreateTicketGeneratesReadableID(t *testing.T) {
	fx := newServiceFixture()

	ticket, err := fx.service.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, "TRU-202601010930-412", ticket.ID)
	require.Regexp(t, regexp.MustCompile(`^TRU-\d{12}-\d{3}$`), ticket.ID)
	require.Equal(t, domain.TicketStatusOpen, ticket.Status)
}

func TestCreateTicketNormalizesSubmitter(t *testing.T) {
	fx := newServiceFixture()

	ticket, err := fx.service.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)

	require.Len(t, fx.users.upserted, 1)
	require.Equal(t, "rahul.verma@example.com", fx.users.upserted[0].ID)
	require.Equal(t, "rahul.verma@example.com", ticket.UserID)
}

func TestCreateTicketAppendsCreationLogAndPublishesEvent(t *testing.T) {
	fx := newServiceFixture()

	ticket, err := fx.service.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)

	require.Equal(t, []string{domain.LogActionCreated}, fx.logs.actions(ticket.ID))
	require.Len(t, fx.dispatcher.published, 1)
	require.Equal(t, events.EventTicketCreated, fx.dispatcher.published[0].Type)
	require.Equal(t, ticket.ID, fx.dispatcher.published[0].TicketID)
}

func TestCreateTicketRetriesOnIDCollision(t *testing.T) {
	fx := newServiceFixture()
	fx.tickets.createErrs = []error{repository.ErrDuplicateTicketID}

	suffixes := []int{412, 413}
	fx.service.randSuffix = func() int {
		suffix := suffixes[0]
		if len(suffixes) > 1 {
			suffixes = suffixes[1:]
		}
		return suffix
	}

	ticket, err := fx.service.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, "TRU-202601010930-413", ticket.ID)
	require.Equal(t, 2, fx.tickets.createCalls)
}

func TestCreateTicketGivesUpAfterMaxAttempts(t *testing.T) {
	fx := newServiceFixture()
	fx.tickets.createErrs = []error{
		repository.ErrDuplicateTicketID,
		repository.ErrDuplicateTicketID,
		repository.ErrDuplicateTicketID,
	}

	_, err := fx.service.CreateTicket(context.Background(), validInput())
	require.Error(t, err)
	require.Equal(t, 3, fx.tickets.createCalls)
}

func TestCreateTicketRejectsMissingFields(t *testing.T) {
	fx := newServiceFixture()

	input := validInput()
	input.Title = "   "
	_, err := fx.service.CreateTicket(context.Background(), input)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	require.Zero(t, fx.tickets.createCalls)
}

func TestResolveTicketTransitionsAndLogs(t *testing.T) {
	fx := newServiceFixture()
	ticket, err := fx.service.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)

	resolved, err := fx.service.ResolveTicket(context.Background(), ticket.ID, "Cleared the CDN cache.")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	require.Equal(t, "Cleared the CDN cache.", *resolved.ResolutionNotes)

	actions := fx.logs.actions(ticket.ID)
	require.Equal(t, []string{domain.LogActionCreated, domain.LogActionResolved}, actions)
}

func TestResolveTicketIsIdempotent(t *testing.T) {
	fx := newServiceFixture()
	ticket, err := fx.service.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)

	_, err = fx.service.ResolveTicket(context.Background(), ticket.ID, "Cleared the CDN cache.")
	require.NoError(t, err)

	again, err := fx.service.ResolveTicket(context.Background(), ticket.ID, "different notes")
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusResolved, again.Status)
	require.Equal(t, 1, fx.tickets.resolveCalls, "second resolve must not touch the store")
	require.Equal(t, []string{domain.LogActionCreated, domain.LogActionResolved}, fx.logs.actions(ticket.ID))
}

func TestResolveTicketNotFound(t *testing.T) {
	fx := newServiceFixture()

	_, err := fx.service.ResolveTicket(context.Background(), "TRU-000000000000-000", "notes")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)
}

func TestReopenTicketOnlyFromResolved(t *testing.T) {
	fx := newServiceFixture()
	ticket, err := fx.service.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)

	_, err = fx.service.ReopenTicket(context.Background(), ticket.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, http.StatusConflict, domainErr.HTTPStatus)

	_, err = fx.service.ResolveTicket(context.Background(), ticket.ID, "done")
	require.NoError(t, err)

	reopened, err := fx.service.ReopenTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusOpen, reopened.Status)
	require.Nil(t, reopened.ResolutionNotes)
	require.Nil(t, reopened.ResolvedAt)

	actions := fx.logs.actions(ticket.ID)
	require.Equal(t, []string{
		domain.LogActionCreated,
		domain.LogActionResolved,
		domain.LogActionReopened,
	}, actions)
}

func TestGetTicketIncludesManagerNameAndLogs(t *testing.T) {
	fx := newServiceFixture()
	ticket, err := fx.service.CreateTicket(context.Background(), validInput())
	require.NoError(t, err)

	managerID := 4
	stored := fx.tickets.byID[ticket.ID]
	stored.AssignedManagerID = &managerID

	detail, err := fx.service.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.ManagerName)
	require.Equal(t, "Rajesh Kumar", *detail.ManagerName)
	require.Len(t, detail.Logs, 1)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trugen/triage-service/internal/domain"
)

// ErrDuplicateTicketID is returned when a generated ticket identifier
// collides with an existing row. Callers regenerate and retry.
var ErrDuplicateTicketID = errors.New("duplicate ticket id")

// TicketFilter captures admin listing parameters.
type TicketFilter struct {
	UserID      *string
	Statuses    []domain.TicketStatus
	Severities  []string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketStats aggregates counts for the admin dashboard.
type TicketStats struct {
	Total      int64
	ByStatus   map[domain.TicketStatus]int64
	BySeverity map[string]int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateAssignment(ctx context.Context, id, category, severity, priority string, managerID int, reason string) error
	Resolve(ctx context.Context, id, notes string, resolvedAt time.Time) error
	Reopen(ctx context.Context, id string) error
	Stats(ctx context.Context) (*TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, user_id, title, description, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.UserID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
	).Scan(&ticket.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateTicketID
		}
		return err
	}
	return nil
}

const ticketColumns = `ticket_id, user_id, title, description, category, severity, priority,
               status, assigned_to, assignment_reason, resolution_notes, created_at, resolved_at`

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_id=$1`, ticketColumns)
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Category,
		&ticket.Severity,
		&ticket.Priority,
		&ticket.Status,
		&ticket.AssignedManagerID,
		&ticket.AssignmentReason,
		&ticket.ResolutionNotes,
		&ticket.CreatedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Severities) > 0 {
		placeholders := make([]string, len(filter.Severities))
		for i, sev := range filter.Severities {
			args = append(args, sev)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("severity IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// UpdateAssignment writes the pipeline's decision in a single statement so the
// assignment fields and the Assigned status land together or not at all.
func (r *ticketRepository) UpdateAssignment(ctx context.Context, id, category, severity, priority string, managerID int, reason string) error {
	const query = `
        UPDATE tickets
        SET category=$1, severity=$2, priority=$3, assigned_to=$4, assignment_reason=$5, status=$6
        WHERE ticket_id=$7`
	cmd, err := r.pool.Exec(ctx, query, category, severity, priority, managerID, reason, domain.TicketStatusAssigned, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Resolve(ctx context.Context, id, notes string, resolvedAt time.Time) error {
	const query = `
        UPDATE tickets
        SET status=$1, resolution_notes=$2, resolved_at=$3
        WHERE ticket_id=$4`
	cmd, err := r.pool.Exec(ctx, query, domain.TicketStatusResolved, notes, resolvedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Reopen(ctx context.Context, id string) error {
	const query = `
        UPDATE tickets
        SET status=$1, resolution_notes=NULL, resolved_at=NULL
        WHERE ticket_id=$2`
	cmd, err := r.pool.Exec(ctx, query, domain.TicketStatusOpen, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) Stats(ctx context.Context) (*TicketStats, error) {
	stats := &TicketStats{
		ByStatus:   make(map[domain.TicketStatus]int64),
		BySeverity: make(map[string]int64),
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sevRows, err := r.pool.Query(ctx, `SELECT severity, COUNT(*) FROM tickets WHERE severity IS NOT NULL GROUP BY severity`)
	if err != nil {
		return nil, err
	}
	defer sevRows.Close()
	for sevRows.Next() {
		var severity string
		var count int64
		if err := sevRows.Scan(&severity, &count); err != nil {
			return nil, err
		}
		stats.BySeverity[severity] = count
	}
	return stats, sevRows.Err()
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.UserID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Category,
			&ticket.Severity,
			&ticket.Priority,
			&ticket.Status,
			&ticket.AssignedManagerID,
			&ticket.AssignmentReason,
			&ticket.ResolutionNotes,
			&ticket.CreatedAt,
			&ticket.ResolvedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

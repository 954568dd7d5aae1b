package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trugen/triage-service/internal/domain"
)

// ManagerRepository reads the fixed assignment roster.
type ManagerRepository interface {
	GetByID(ctx context.Context, id int) (*domain.Manager, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Manager, error)
}

type managerRepository struct {
	pool *pgxpool.Pool
}

// NewManagerRepository instantiates the repository.
func NewManagerRepository(pool *pgxpool.Pool) ManagerRepository {
	return &managerRepository{pool: pool}
}

func (r *managerRepository) GetByID(ctx context.Context, id int) (*domain.Manager, error) {
	const query = `
        SELECT id, name, role, department, is_active
        FROM managers WHERE id=$1`
	var manager domain.Manager
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&manager.ID,
		&manager.Name,
		&manager.Role,
		&manager.Department,
		&manager.Active,
	); err != nil {
		return nil, err
	}
	return &manager, nil
}

func (r *managerRepository) List(ctx context.Context, activeOnly bool) ([]domain.Manager, error) {
	query := `
        SELECT id, name, role, department, is_active
        FROM managers`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Manager
	for rows.Next() {
		var manager domain.Manager
		if err := rows.Scan(
			&manager.ID,
			&manager.Name,
			&manager.Role,
			&manager.Department,
			&manager.Active,
		); err != nil {
			return nil, err
		}
		result = append(result, manager)
	}
	return result, rows.Err()
}

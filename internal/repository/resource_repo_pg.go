package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nkiryanov/officebook/internal/domain"
)

type ResourceRepository interface {
	List(ctx context.Context) ([]domain.Resource, error)
	GetByID(ctx context.Context, id string) (*domain.Resource, error)
}

type PGResourceRepository struct {
	db *pgxpool.Pool
}

func NewResourceRepository(db *pgxpool.Pool) ResourceRepository {
	return &PGResourceRepository{db: db}
}

func (r *PGResourceRepository) List(ctx context.Context) ([]domain.Resource, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, type, capacity, location, features, status, created_at, updated_at
		FROM resources ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []domain.Resource
	for rows.Next() {
		var res domain.Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Type, &res.Capacity, &res.Location, &res.Features, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func (r *PGResourceRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, type, capacity, location, features, status, created_at, updated_at
		FROM resources WHERE id=$1`, id)

	var res domain.Resource
	if err := row.Scan(&res.ID, &res.Name, &res.Type, &res.Capacity, &res.Location, &res.Features, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, err
	}
	return &res, nil
}

var _ ResourceRepository = (*PGResourceRepository)(nil)

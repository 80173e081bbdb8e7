package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nkiryanov/officebook/internal/domain"
)

type WorkflowRepository interface {
	Get(ctx context.Context) (domain.Workflow, error)
}

type PGWorkflowRepository struct {
	db *pgxpool.Pool
}

func NewWorkflowRepository(db *pgxpool.Pool) WorkflowRepository {
	return &PGWorkflowRepository{db: db}
}

// Get loads the active approval step sequence in position order. An empty
// table is a valid workflow: bookings skip approval entirely.
func (r *PGWorkflowRepository) Get(ctx context.Context) (domain.Workflow, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, approver_role, position FROM workflow_nodes ORDER BY position`)
	if err != nil {
		return domain.Workflow{}, err
	}
	defer rows.Close()

	var nodes []domain.WorkflowNode
	for rows.Next() {
		var n domain.WorkflowNode
		if err := rows.Scan(&n.ID, &n.Name, &n.ApproverRole, &n.Position); err != nil {
			return domain.Workflow{}, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return domain.Workflow{}, err
	}
	return domain.NewWorkflow(nodes), nil
}

var _ WorkflowRepository = (*PGWorkflowRepository)(nil)

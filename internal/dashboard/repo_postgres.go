package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PostgresRepo aggregates over the customers, call_logs and users tables.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) CountCalls(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM call_logs`).Scan(&n)
	return n, err
}

func (r *PostgresRepo) CountCustomers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n)
	return n, err
}

func (r *PostgresRepo) CountInactiveCustomers(ctx context.Context, threshold time.Time) (int, error) {
	const q = `
SELECT COUNT(*)
FROM customers
WHERE is_hidden = FALSE
  AND (last_call_date IS NULL OR last_call_date < $1)
`
	var n int
	err := r.db.QueryRowContext(ctx, q, threshold).Scan(&n)
	return n, err
}

func (r *PostgresRepo) TopAgentByAnswered(ctx context.Context) (*TopAgent, error) {
	const q = `
SELECT cl.agent_id, u.name, COUNT(*) AS answered
FROM call_logs cl
JOIN users u ON u.id = cl.agent_id
WHERE cl.status = 'ANSWERED'
GROUP BY cl.agent_id, u.name
ORDER BY answered DESC
LIMIT 1
`
	var top TopAgent
	err := r.db.QueryRowContext(ctx, q).Scan(&top.AgentID, &top.Name, &top.AnsweredCalls)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &top, nil
}

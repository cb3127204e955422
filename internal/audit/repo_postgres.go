package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo persists audit events.
//
// Assumed schema:
//
//	audit_logs (
//	  id UUID PRIMARY KEY,
//	  action TEXT NOT NULL,
//	  details TEXT NOT NULL DEFAULT '',
//	  actor_id UUID NOT NULL REFERENCES users(id),
//	  created_at TIMESTAMPTZ NOT NULL
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_logs (id, action, details, actor_id, created_at)
VALUES ($1,$2,$3,$4,$5)
`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.Action, e.Details, e.ActorID, e.CreatedAt)
	return err
}

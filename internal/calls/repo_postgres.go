package calls

import (
	"context"
	"database/sql"

	"cloudconnect/pkg/utils"
)

// PostgresRepo persists call logs and keeps customer metrics consistent.
//
// Assumed schema:
//
//	call_logs (
//	  id UUID PRIMARY KEY,
//	  agent_id UUID NOT NULL REFERENCES users(id),
//	  customer_id UUID NOT NULL REFERENCES customers(id),
//	  duration INT NOT NULL,
//	  status TEXT NOT NULL,
//	  direction TEXT NOT NULL,
//	  notes TEXT NOT NULL DEFAULT '',
//	  created_at TIMESTAMPTZ NOT NULL
//	)
//
// call_logs is INSERT-only; there are no update or delete methods by design.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// Record appends the log and updates the customer's derived metrics in one
// transaction. The contact_count increment is relative (+1 in SQL), so
// concurrent recordings never lose counts even though last_call_* is
// last-writer-wins.
func (r *PostgresRepo) Record(ctx context.Context, log CallLog) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const insertLog = `
INSERT INTO call_logs (id, agent_id, customer_id, duration, status, direction, notes, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
		if _, err := tx.ExecContext(ctx, insertLog,
			log.ID,
			log.AgentID,
			log.CustomerID,
			log.DurationSeconds,
			log.Status,
			log.Direction,
			log.Notes,
			log.CreatedAt,
		); err != nil {
			return err
		}

		const updateCustomer = `
UPDATE customers
SET last_call_date = $2,
    last_call_status = $3,
    contact_count = contact_count + CASE WHEN $4 THEN 1 ELSE 0 END,
    updated_at = $2
WHERE id = $1
`
		res, err := tx.ExecContext(ctx, updateCustomer,
			log.CustomerID,
			log.CreatedAt,
			string(log.Status),
			log.Status == StatusAnswered,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloudconnect/pkg/utils"
)

// PostgresRepo persists customers in the customers table.
//
// Assumed schema:
//
//	customers (
//	  id UUID PRIMARY KEY,
//	  name TEXT NOT NULL,
//	  phone TEXT NOT NULL UNIQUE,
//	  email TEXT NOT NULL DEFAULT '',
//	  operator TEXT NOT NULL DEFAULT '',
//	  notes TEXT NOT NULL DEFAULT '',
//	  contract_end_date TIMESTAMPTZ,
//	  assigned_agent_id UUID REFERENCES users(id) ON DELETE SET NULL,
//	  is_hidden BOOLEAN NOT NULL DEFAULT FALSE,
//	  last_call_date TIMESTAMPTZ,
//	  last_call_status TEXT,
//	  contact_count INT NOT NULL DEFAULT 0,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	)
//
// The agent reference is weak (ON DELETE SET NULL): removing an agent must
// never remove customers.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const customerColumns = `id, name, phone, email, operator, notes, contract_end_date, assigned_agent_id, is_hidden, last_call_date, last_call_status, contact_count, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, c Customer) error {
	const q = `
INSERT INTO customers (` + customerColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.Name,
		c.Phone,
		c.Email,
		c.Operator,
		c.Notes,
		c.ContractEndDate,
		c.AssignedAgentID,
		c.IsHidden,
		c.LastCallDate,
		c.LastCallStatus,
		c.ContactCount,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil && utils.IsUniqueViolation(err) {
		return ErrDuplicatePhone
	}
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Customer, error) {
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE id = $1
`
	return scanCustomer(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) GetByPhone(ctx context.Context, phone string) (Customer, error) {
	const q = `
SELECT ` + customerColumns + `
FROM customers
WHERE phone = $1
`
	return scanCustomer(r.db.QueryRowContext(ctx, q, phone))
}

func (r *PostgresRepo) Update(ctx context.Context, c Customer) error {
	const q = `
UPDATE customers
SET name = $2,
    phone = $3,
    email = $4,
    operator = $5,
    notes = $6,
    contract_end_date = $7,
    assigned_agent_id = $8,
    is_hidden = $9,
    updated_at = $10
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		c.ID,
		c.Name,
		c.Phone,
		c.Email,
		c.Operator,
		c.Notes,
		c.ContractEndDate,
		c.AssignedAgentID,
		c.IsHidden,
		c.UpdatedAt,
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
}

// List applies the role-scoped filter, newest-updated first, and returns
// the filtered total alongside the page.
func (r *PostgresRepo) List(ctx context.Context, f Filter) ([]ListItem, int, error) {
	where, args := buildWhere(f)

	countQuery := `SELECT COUNT(*) FROM customers c` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQuery := `
SELECT c.id, c.name, c.phone, c.email, c.operator, c.notes, c.contract_end_date,
       c.assigned_agent_id, c.is_hidden, c.last_call_date, c.last_call_status,
       c.contact_count, c.created_at, c.updated_at,
       u.id, u.name
FROM customers c
LEFT JOIN users u ON u.id = c.assigned_agent_id` + where + fmt.Sprintf(`
ORDER BY c.updated_at DESC
LIMIT $%d OFFSET $%d
`, len(args)+1, len(args)+2)

	pageArgs := append(args, f.Limit, (f.Page-1)*f.Limit)
	rows, err := r.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []ListItem
	for rows.Next() {
		var item ListItem
		var agentID, agentName sql.NullString
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Phone,
			&item.Email,
			&item.Operator,
			&item.Notes,
			&item.ContractEndDate,
			&item.AssignedAgentID,
			&item.IsHidden,
			&item.LastCallDate,
			&item.LastCallStatus,
			&item.ContactCount,
			&item.CreatedAt,
			&item.UpdatedAt,
			&agentID,
			&agentName,
		); err != nil {
			return nil, 0, err
		}
		if agentID.Valid {
			item.AssignedAgent = &AgentRef{ID: agentID.String, Name: agentName.String}
		}
		out = append(out, item)
	}
	return out, total, rows.Err()
}

func buildWhere(f Filter) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.VisibleToAgentID != "" {
		p := arg(f.VisibleToAgentID)
		conds = append(conds, fmt.Sprintf("(c.assigned_agent_id = %s OR c.is_hidden = FALSE)", p))
	}
	if f.AssignedAgentID != "" {
		conds = append(conds, fmt.Sprintf("c.assigned_agent_id = %s", arg(f.AssignedAgentID)))
	}
	if f.Search != "" {
		nameArg := arg("%" + f.Search + "%")
		phoneArg := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf("(c.name ILIKE %s OR c.phone LIKE %s)", nameArg, phoneArg))
	}
	if f.Operator != "" {
		conds = append(conds, fmt.Sprintf("c.operator = %s", arg(f.Operator)))
	}
	if f.FilterStatus {
		if f.StatusIsNull {
			conds = append(conds, "c.last_call_status IS NULL")
		} else {
			conds = append(conds, fmt.Sprintf("c.last_call_status = %s", arg(f.Status)))
		}
	}

	if len(conds) == 0 {
		return "", args
	}
	return "\nWHERE " + strings.Join(conds, " AND "), args
}

// HideAll sets is_hidden on all matching rows. Idempotent: re-running
// changes nothing.
func (r *PostgresRepo) HideAll(ctx context.Context, ids []string, now time.Time) error {
	const q = `
UPDATE customers
SET is_hidden = TRUE,
    updated_at = $2
WHERE id = ANY($1)
`
	_, err := r.db.ExecContext(ctx, q, ids, now)
	return err
}

// AssignAll transfers all matching rows to one agent. Idempotent.
func (r *PostgresRepo) AssignAll(ctx context.Context, ids []string, agentID string, now time.Time) error {
	const q = `
UPDATE customers
SET assigned_agent_id = $2,
    updated_at = $3
WHERE id = ANY($1)
`
	_, err := r.db.ExecContext(ctx, q, ids, agentID, now)
	return err
}

// Distribute applies all assignments in one transaction: a missing row or
// failed update rolls back the whole batch.
func (r *PostgresRepo) Distribute(ctx context.Context, assignments []Assignment, now time.Time) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const q = `
UPDATE customers
SET assigned_agent_id = $2,
    updated_at = $3
WHERE id = $1
`
		for _, a := range assignments {
			res, err := tx.ExecContext(ctx, q, a.CustomerID, a.AgentID, now)
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
		}
		return nil
	})
}

func scanCustomer(row *sql.Row) (Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Phone,
		&c.Email,
		&c.Operator,
		&c.Notes,
		&c.ContractEndDate,
		&c.AssignedAgentID,
		&c.IsHidden,
		&c.LastCallDate,
		&c.LastCallStatus,
		&c.ContactCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}

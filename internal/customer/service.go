package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloudconnect/internal/rbac"
	"cloudconnect/pkg/logger"

	"github.com/google/uuid"
)

// Repository is the persistence contract for customers.
//
// Atomicity contract: Distribute must apply all assignments or none.
// HideAll and AssignAll are idempotent by construction (absolute sets).
type Repository interface {
	Create(ctx context.Context, c Customer) error
	GetByID(ctx context.Context, id string) (Customer, error)
	GetByPhone(ctx context.Context, phone string) (Customer, error)
	Update(ctx context.Context, c Customer) error
	List(ctx context.Context, f Filter) ([]ListItem, int, error)

	HideAll(ctx context.Context, ids []string, now time.Time) error
	AssignAll(ctx context.Context, ids []string, agentID string, now time.Time) error
	Distribute(ctx context.Context, assignments []Assignment, now time.Time) error
}

// Assignment pairs one customer with its new agent in a distribution.
type Assignment struct {
	CustomerID string
	AgentID    string
}

// AgentDirectory answers whether an id refers to an existing, active agent.
// Implemented by the identity service.
type AgentDirectory interface {
	ActiveAgent(ctx context.Context, id string) (bool, error)
}

// Auditor records sensitive actions. Audit is best-effort: failures are
// logged and never fail the business operation.
type Auditor interface {
	LogAction(ctx context.Context, action, details, actorID string) error
}

var (
	ErrNotFound        = errors.New("customer: not found")
	ErrInvalidArgument = errors.New("customer: invalid argument")
	ErrDuplicatePhone  = errors.New("customer: phone already exists")
	ErrUnknownAgent    = errors.New("customer: target agent not an active agent")
)

type Service struct {
	repo   Repository
	agents AgentDirectory
	audit  Auditor
	clock  func() time.Time
}

func NewService(repo Repository, agents AgentDirectory, audit Auditor) *Service {
	return &Service{repo: repo, agents: agents, audit: audit, clock: time.Now}
}

// List returns the role-scoped page of customers for the caller.
func (s *Service) List(ctx context.Context, role, selfID string, q Query) (ListPage, error) {
	f := ScopedFilter(role, selfID, q)
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return ListPage{}, err
	}
	return ListPage{Data: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

type CreateRequest struct {
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	Email           string     `json:"email,omitempty"`
	Operator        string     `json:"operator,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	ContractEndDate *time.Time `json:"contract_end_date,omitempty"`
}

// Create adds a customer. Phone is the natural key: an existing phone fails
// with ErrDuplicatePhone, which callers treat as expected, not exceptional.
// When the creator is an agent the new customer is self-assigned on intake;
// admin-created customers start unassigned.
func (s *Service) Create(ctx context.Context, actorID, actorRole string, req CreateRequest) (Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return Customer{}, ErrInvalidArgument
	}
	phone := strings.TrimSpace(req.Phone)
	if len(phone) < 3 {
		return Customer{}, ErrInvalidArgument
	}

	if _, err := s.repo.GetByPhone(ctx, phone); err == nil {
		return Customer{}, ErrDuplicatePhone
	} else if !errors.Is(err, ErrNotFound) {
		return Customer{}, err
	}

	now := s.clock().UTC()
	c := Customer{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(req.Name),
		Phone:           phone,
		Email:           req.Email,
		Operator:        req.Operator,
		Notes:           req.Notes,
		ContractEndDate: req.ContractEndDate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if actorRole == rbac.RoleAgent {
		agentID := actorID
		c.AssignedAgentID = &agentID
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Customer{}, err
	}
	s.logAudit(ctx, "CREATE_CUSTOMER", fmt.Sprintf("Created customer %s", c.Name), actorID)
	return c, nil
}

// UpdateCommand is the closed set of fields a caller may change on a
// customer. Nil means "leave unchanged". An empty AssignedAgentID clears
// the assignment.
type UpdateCommand struct {
	Notes           *string `json:"notes,omitempty"`
	AssignedAgentID *string `json:"assigned_agent_id,omitempty"`
	IsHidden        *bool   `json:"is_hidden,omitempty"`
}

func (s *Service) Update(ctx context.Context, id string, cmd UpdateCommand) (Customer, error) {
	if id == "" {
		return Customer{}, ErrInvalidArgument
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Customer{}, err
	}

	if cmd.Notes != nil {
		c.Notes = *cmd.Notes
	}
	if cmd.AssignedAgentID != nil {
		if *cmd.AssignedAgentID == "" {
			c.AssignedAgentID = nil
		} else {
			if err := s.requireActiveAgent(ctx, *cmd.AssignedAgentID); err != nil {
				return Customer{}, err
			}
			agentID := *cmd.AssignedAgentID
			c.AssignedAgentID = &agentID
		}
	}
	if cmd.IsHidden != nil {
		c.IsHidden = *cmd.IsHidden
	}
	c.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return Customer{}, err
	}
	return c, nil
}

const (
	BulkActionHide       = "hide"
	BulkActionTransfer   = "transfer"
	BulkActionDistribute = "distribute"
)

type BulkRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`

	// TargetAgentID is required for transfer.
	TargetAgentID string `json:"target_agent_id,omitempty"`
	// TargetAgentIDs is required for distribute.
	TargetAgentIDs []string `json:"target_agent_ids,omitempty"`
}

// Bulk applies hide/transfer/distribute to a set of customers.
//
// Distribute assigns ids[i] to targets[i mod len(targets)] — deterministic
// round-robin by input order, not load-aware — and executes as a single
// atomic unit: a failure mid-batch leaves no partial distribution.
func (s *Service) Bulk(ctx context.Context, actorID string, req BulkRequest) error {
	if len(req.IDs) == 0 {
		return ErrInvalidArgument
	}
	for _, id := range req.IDs {
		if id == "" {
			return ErrInvalidArgument
		}
	}
	now := s.clock().UTC()

	switch req.Action {
	case BulkActionHide:
		if err := s.repo.HideAll(ctx, req.IDs, now); err != nil {
			return err
		}

	case BulkActionTransfer:
		if req.TargetAgentID == "" {
			return ErrInvalidArgument
		}
		if err := s.requireActiveAgent(ctx, req.TargetAgentID); err != nil {
			return err
		}
		if err := s.repo.AssignAll(ctx, req.IDs, req.TargetAgentID, now); err != nil {
			return err
		}

	case BulkActionDistribute:
		if len(req.TargetAgentIDs) == 0 {
			return ErrInvalidArgument
		}
		for _, agentID := range req.TargetAgentIDs {
			if err := s.requireActiveAgent(ctx, agentID); err != nil {
				return err
			}
		}
		assignments := make([]Assignment, 0, len(req.IDs))
		for i, customerID := range req.IDs {
			assignments = append(assignments, Assignment{
				CustomerID: customerID,
				AgentID:    req.TargetAgentIDs[i%len(req.TargetAgentIDs)],
			})
		}
		if err := s.repo.Distribute(ctx, assignments, now); err != nil {
			return err
		}

	default:
		return ErrInvalidArgument
	}

	s.logAudit(ctx, "BULK_"+strings.ToUpper(req.Action),
		fmt.Sprintf("Bulk %s applied to %d customers", req.Action, len(req.IDs)), actorID)
	return nil
}

type ImportRecord struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
	Operator string `json:"operator,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

type ImportResult struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
}

// Import creates each record independently; customers whose phone already
// exists are skipped and counted, not treated as a batch failure. Imported
// customers are always unassigned. Malformed records fail the whole batch
// before any writes.
func (s *Service) Import(ctx context.Context, actorID string, records []ImportRecord) (ImportResult, error) {
	for _, rec := range records {
		if strings.TrimSpace(rec.Name) == "" || len(strings.TrimSpace(rec.Phone)) < 3 {
			return ImportResult{}, ErrInvalidArgument
		}
	}

	var out ImportResult
	for _, rec := range records {
		phone := strings.TrimSpace(rec.Phone)
		operator := rec.Operator
		if operator == "" {
			operator = "Unknown"
		}

		now := s.clock().UTC()
		c := Customer{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(rec.Name),
			Phone:     phone,
			Email:     rec.Email,
			Operator:  operator,
			Notes:     rec.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		}

		err := s.repo.Create(ctx, c)
		switch {
		case err == nil:
			out.Imported++
		case errors.Is(err, ErrDuplicatePhone):
			out.Duplicates++
		default:
			return ImportResult{}, err
		}
	}

	s.logAudit(ctx, "IMPORT_CUSTOMERS",
		fmt.Sprintf("Imported %d customers, %d duplicates skipped", out.Imported, out.Duplicates), actorID)
	return out, nil
}

func (s *Service) requireActiveAgent(ctx context.Context, agentID string) error {
	if s.agents == nil {
		return nil
	}
	ok, err := s.agents.ActiveAgent(ctx, agentID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUnknownAgent
	}
	return nil
}

func (s *Service) logAudit(ctx context.Context, action, details, actorID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.LogAction(ctx, action, details, actorID); err != nil {
		logger.From(ctx).Warn("audit append failed", "action", action, "err", err)
	}
}

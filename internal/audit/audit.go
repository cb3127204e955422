// Package audit keeps an append-only trail of privileged actions.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event is one audit trail entry. Events are never updated or deleted.
type Event struct {
	ID        string    `json:"id" db:"id"`
	Action    string    `json:"action" db:"action"`
	Details   string    `json:"details" db:"details"`
	ActorID   string    `json:"actor_id" db:"actor_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Repository interface {
	Append(ctx context.Context, e Event) error
}

var ErrInvalidArgument = errors.New("audit: invalid argument")

// Well-known actions.
const (
	ActionCreateCustomer = "CREATE_CUSTOMER"
)

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

func (s *Service) LogAction(ctx context.Context, action, details, actorID string) error {
	if action == "" || actorID == "" {
		return ErrInvalidArgument
	}
	return s.repo.Append(ctx, Event{
		ID:        uuid.NewString(),
		Action:    action,
		Details:   details,
		ActorID:   actorID,
		CreatedAt: s.clock().UTC(),
	})
}

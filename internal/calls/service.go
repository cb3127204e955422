package calls

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for call recording.
//
// Record must append the log row and update the referenced customer's
// derived metrics (last_call_date, last_call_status, conditional
// contact_count increment) as one atomic unit. A log entry without the
// metric update, or vice versa, breaks the invariant that contact_count
// equals the number of ANSWERED logs for the customer.
type Repository interface {
	Record(ctx context.Context, log CallLog) error
}

var (
	ErrNotFound        = errors.New("calls: customer not found")
	ErrInvalidArgument = errors.New("calls: invalid argument")
)

// Service records call outcomes.
//
// Ordering note: when two calls for the same customer are recorded
// concurrently, last_call_date/last_call_status reflect whichever
// transaction commits last at the storage layer, not necessarily the call
// that started later. This is deliberately left best-effort; contact_count
// stays exact because the increment is relative inside the same
// transaction as the log insert.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type RecordRequest struct {
	CustomerID      string    `json:"customer_id"`
	DurationSeconds int       `json:"duration"`
	Status          Status    `json:"status"`
	Direction       Direction `json:"direction"`
	Notes           string    `json:"notes,omitempty"`
}

func (s *Service) Record(ctx context.Context, agentID string, req RecordRequest) (CallLog, error) {
	if agentID == "" || req.CustomerID == "" {
		return CallLog{}, ErrInvalidArgument
	}
	if req.DurationSeconds < 0 {
		return CallLog{}, ErrInvalidArgument
	}
	if !IsValidStatus(req.Status) {
		return CallLog{}, ErrInvalidArgument
	}

	log := CallLog{
		ID:              uuid.NewString(),
		AgentID:         agentID,
		CustomerID:      req.CustomerID,
		DurationSeconds: req.DurationSeconds,
		Status:          req.Status,
		Direction:       req.Direction,
		Notes:           req.Notes,
		CreatedAt:       s.clock().UTC(),
	}

	if err := s.repo.Record(ctx, log); err != nil {
		return CallLog{}, err
	}
	return log, nil
}

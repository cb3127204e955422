package calls

import "time"

// CallLog is an immutable record of one call attempt and its outcome.
// Rows are append-only: never updated or deleted.
type CallLog struct {
	ID         string `json:"id" db:"id"`
	AgentID    string `json:"agent_id" db:"agent_id"`
	CustomerID string `json:"customer_id" db:"customer_id"`

	// DurationSeconds is the call duration in seconds, never negative.
	DurationSeconds int `json:"duration" db:"duration"`

	Status    Status    `json:"status" db:"status"`
	Direction Direction `json:"direction" db:"direction"`
	Notes     string    `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Status string

const (
	StatusAnswered Status = "ANSWERED"
	StatusNoAnswer Status = "NO_ANSWER"
	StatusMissed   Status = "MISSED"
)

func IsValidStatus(s Status) bool {
	switch s {
	case StatusAnswered, StatusNoAnswer, StatusMissed:
		return true
	default:
		return false
	}
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

package customer

import "time"

// Customer is a CRM record for a client being called.
//
// Assignment invariant: AssignedAgentID is a weak, nullable reference to a
// user. Disabling or removing an agent must never cascade onto customer
// rows; unassignment is an explicit update.
//
// Derived metrics invariant: ContactCount equals the number of ANSWERED
// call logs referencing this customer and never decreases. LastCallDate and
// LastCallStatus always reflect the most recently recorded call.
type Customer struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Phone string `json:"phone" db:"phone"`
	Email string `json:"email,omitempty" db:"email"`

	// Operator is the carrier/provider tag, e.g. "Orange".
	Operator string `json:"operator,omitempty" db:"operator"`
	Notes    string `json:"notes,omitempty" db:"notes"`

	ContractEndDate *time.Time `json:"contract_end_date,omitempty" db:"contract_end_date"`

	AssignedAgentID *string `json:"assigned_agent_id,omitempty" db:"assigned_agent_id"`
	IsHidden        bool    `json:"is_hidden" db:"is_hidden"`

	LastCallDate *time.Time `json:"last_call_date,omitempty" db:"last_call_date"`
	// LastCallStatus is one of the call outcome values (ANSWERED, NO_ANSWER,
	// MISSED) or nil when no call has been recorded yet.
	LastCallStatus *string `json:"last_call_status,omitempty" db:"last_call_status"`
	ContactCount   int     `json:"contact_count" db:"contact_count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AgentRef is the display reference to an assigned agent in list output.
type AgentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListItem is one row of a customer listing.
type ListItem struct {
	Customer
	AssignedAgent *AgentRef `json:"assigned_agent,omitempty"`
}

// ListPage is a paginated, role-scoped listing result. Total counts the
// filtered set, not the whole table.
type ListPage struct {
	Data  []ListItem `json:"data"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

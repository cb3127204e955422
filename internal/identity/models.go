package identity

import "time"

// User is an operator of the system: an admin or a calling agent.
//
// Sensitive fields:
// - PasswordHash never leaves the service.
// - SIPPassword is exposed on exactly one read path (the caller's own
//   sip-config). Every other read must go through Redacted().
type User struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`

	PasswordHash string `json:"-" db:"password_hash"`

	Role   string     `json:"role" db:"role"`
	Status UserStatus `json:"status" db:"status"`

	// Availability is free-form presence state set by admins
	// (e.g. "Available", "On Break").
	Availability string `json:"availability,omitempty" db:"availability"`

	SIPExtension string `json:"-" db:"sip_extension"`
	SIPPassword  string `json:"-" db:"sip_password"`

	Department string `json:"department,omitempty" db:"department"`
	Avatar     string `json:"avatar,omitempty" db:"avatar"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type UserStatus string

const (
	StatusActive   UserStatus = "ACTIVE"
	StatusDisabled UserStatus = "DISABLED"
)

func IsValidStatus(s UserStatus) bool {
	switch s {
	case StatusActive, StatusDisabled:
		return true
	default:
		return false
	}
}

// Profile is the redacted view of a user safe for any authenticated reader.
// The SIP extension is directory information; the SIP credential is not.
type Profile struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Status       UserStatus `json:"status"`
	Availability string     `json:"availability,omitempty"`
	Department   string     `json:"department,omitempty"`
	SIPExtension string     `json:"sip_extension,omitempty"`
	Avatar       string     `json:"avatar,omitempty"`
}

func (u User) Redacted() Profile {
	return Profile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Status:       u.Status,
		Availability: u.Availability,
		Department:   u.Department,
		SIPExtension: u.SIPExtension,
		Avatar:       u.Avatar,
	}
}

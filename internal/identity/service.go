package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloudconnect/internal/rbac"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the persistence contract for users.
// Deleting users is intentionally absent; accounts are disabled, never removed.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User) error
}

var (
	ErrNotFound           = errors.New("identity: not found")
	ErrInvalidArgument    = errors.New("identity: invalid argument")
	ErrDuplicateEmail     = errors.New("identity: email already exists")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrAccountDisabled    = errors.New("identity: account disabled")
)

const bcryptCost = 10

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

// Authenticate verifies email+password and returns the matched user.
//
// The disabled-account check runs only after credential verification
// succeeds, so a caller probing with wrong credentials cannot distinguish
// a disabled account from a nonexistent one.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	if u.Status == StatusDisabled {
		return User{}, ErrAccountDisabled
	}
	return u, nil
}

type CreateUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	SIPExtension string `json:"sip_extension,omitempty"`
	SIPPassword  string `json:"sip_password,omitempty"`
	Department   string `json:"department,omitempty"`
}

// Create provisions a new user. Admin-only at the transport layer.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	if strings.TrimSpace(req.Name) == "" {
		return User{}, ErrInvalidArgument
	}
	email := normalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return User{}, ErrInvalidArgument
	}
	if len(req.Password) < 6 {
		return User{}, ErrInvalidArgument
	}
	if !rbac.IsValidRole(req.Role) {
		return User{}, ErrInvalidArgument
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return User{}, err
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       StatusActive,
		SIPExtension: req.SIPExtension,
		SIPPassword:  req.SIPPassword,
		Department:   req.Department,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

// List returns redacted profiles for all users.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Redacted())
	}
	return out, nil
}

// UpdateUserCommand is the closed set of fields an admin may change.
// Nil means "leave unchanged"; unknown fields are rejected at the boundary.
type UpdateUserCommand struct {
	Status       *UserStatus `json:"status,omitempty"`
	Availability *string     `json:"availability,omitempty"`
	Password     *string     `json:"password,omitempty"`
	SIPExtension *string     `json:"sip_extension,omitempty"`
	SIPPassword  *string     `json:"sip_password,omitempty"`
}

func (s *Service) Update(ctx context.Context, id string, cmd UpdateUserCommand) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if cmd.Status != nil {
		if !IsValidStatus(*cmd.Status) {
			return User{}, ErrInvalidArgument
		}
		u.Status = *cmd.Status
	}
	if cmd.Availability != nil {
		u.Availability = *cmd.Availability
	}
	if cmd.Password != nil {
		if len(*cmd.Password) < 6 {
			return User{}, ErrInvalidArgument
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*cmd.Password), bcryptCost)
		if err != nil {
			return User{}, err
		}
		u.PasswordHash = string(hash)
	}
	if cmd.SIPExtension != nil {
		u.SIPExtension = *cmd.SIPExtension
	}
	if cmd.SIPPassword != nil {
		u.SIPPassword = *cmd.SIPPassword
	}
	u.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// ActiveAgent reports whether id refers to an existing, active agent.
// Used to validate bulk transfer/distribute targets.
func (s *Service) ActiveAgent(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.Role == rbac.RoleAgent && u.Status == StatusActive, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

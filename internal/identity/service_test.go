package identity

import (
	"context"
	"errors"
	"testing"

	"cloudconnect/internal/rbac"
)

func newTestService(t *testing.T) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	return NewService(repo), repo
}

func mustCreate(t *testing.T, svc *Service, req CreateUserRequest) User {
	t.Helper()
	u, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestAuthenticate_Success(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, CreateUserRequest{Name: "Dana", Email: "dana@example.com", Password: "hunter22", Role: rbac.RoleAgent})

	u, err := svc.Authenticate(context.Background(), "dana@example.com", "hunter22")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.Email != "dana@example.com" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestAuthenticate_WrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, CreateUserRequest{Name: "Dana", Email: "dana@example.com", Password: "hunter22", Role: rbac.RoleAgent})

	_, errWrongPass := svc.Authenticate(context.Background(), "dana@example.com", "nope")
	_, errUnknown := svc.Authenticate(context.Background(), "ghost@example.com", "nope")

	if !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", errWrongPass)
	}
	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", errUnknown)
	}
}

func TestAuthenticate_DisabledAccountAfterCredentialCheck(t *testing.T) {
	svc, _ := newTestService(t)
	u := mustCreate(t, svc, CreateUserRequest{Name: "Dana", Email: "dana@example.com", Password: "hunter22", Role: rbac.RoleAgent})

	disabled := StatusDisabled
	if _, err := svc.Update(context.Background(), u.ID, UpdateUserCommand{Status: &disabled}); err != nil {
		t.Fatalf("disable: %v", err)
	}

	// Correct password on a disabled account: AccountDisabled, never InvalidCredentials.
	if _, err := svc.Authenticate(context.Background(), "dana@example.com", "hunter22"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}

	// Wrong password on a disabled account must not leak that it exists.
	if _, err := svc.Authenticate(context.Background(), "dana@example.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestCreate_RejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, CreateUserRequest{Name: "Dana", Email: "dana@example.com", Password: "hunter22", Role: rbac.RoleAgent})

	_, err := svc.Create(context.Background(), CreateUserRequest{Name: "Other", Email: "Dana@Example.com", Password: "hunter22", Role: rbac.RoleAgent})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	cases := []CreateUserRequest{
		{Name: "", Email: "a@b.com", Password: "hunter22", Role: rbac.RoleAgent},
		{Name: "X", Email: "not-an-email", Password: "hunter22", Role: rbac.RoleAgent},
		{Name: "X", Email: "a@b.com", Password: "short", Role: rbac.RoleAgent},
		{Name: "X", Email: "a@b.com", Password: "hunter22", Role: "SUPERVISOR"},
	}
	for i, req := range cases {
		if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}
}

func TestList_ReturnsRedactedProfiles(t *testing.T) {
	svc, repo := newTestService(t)
	mustCreate(t, svc, CreateUserRequest{
		Name: "Dana", Email: "dana@example.com", Password: "hunter22", Role: rbac.RoleAgent,
		SIPExtension: "1001", SIPPassword: "sip-secret",
	})

	profiles, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	if profiles[0].SIPExtension != "1001" {
		t.Fatalf("expected extension in profile, got %+v", profiles[0])
	}

	// The stored record keeps secrets; the profile type cannot carry them.
	stored, _ := repo.GetByEmail(context.Background(), "dana@example.com")
	if stored.PasswordHash == "" || stored.SIPPassword != "sip-secret" {
		t.Fatalf("expected secrets retained in storage, got %+v", stored)
	}
}

func TestUpdate_RejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService(t)
	u := mustCreate(t, svc, CreateUserRequest{Name: "Dana", Email: "dana@example.com", Password: "hunter22", Role: rbac.RoleAgent})

	bad := UserStatus("SUSPENDED")
	if _, err := svc.Update(context.Background(), u.ID, UpdateUserCommand{Status: &bad}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestUpdate_RotatesPassword(t *testing.T) {
	svc, _ := newTestService(t)
	u := mustCreate(t, svc, CreateUserRequest{Name: "Dana", Email: "dana@example.com", Password: "hunter22", Role: rbac.RoleAgent})

	newPass := "hunter23"
	if _, err := svc.Update(context.Background(), u.ID, UpdateUserCommand{Password: &newPass}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "dana@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "dana@example.com", "hunter23"); err != nil {
		t.Fatalf("expected new password accepted, got %v", err)
	}
}

func TestActiveAgent(t *testing.T) {
	svc, _ := newTestService(t)
	agent := mustCreate(t, svc, CreateUserRequest{Name: "Agent", Email: "agent@example.com", Password: "hunter22", Role: rbac.RoleAgent})
	admin := mustCreate(t, svc, CreateUserRequest{Name: "Admin", Email: "admin@example.com", Password: "hunter22", Role: rbac.RoleAdmin})

	if ok, _ := svc.ActiveAgent(context.Background(), agent.ID); !ok {
		t.Fatalf("expected active agent")
	}
	if ok, _ := svc.ActiveAgent(context.Background(), admin.ID); ok {
		t.Fatalf("admin is not an assignable agent")
	}
	if ok, _ := svc.ActiveAgent(context.Background(), "missing"); ok {
		t.Fatalf("missing user is not an assignable agent")
	}

	disabled := StatusDisabled
	if _, err := svc.Update(context.Background(), agent.ID, UpdateUserCommand{Status: &disabled}); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if ok, _ := svc.ActiveAgent(context.Background(), agent.ID); ok {
		t.Fatalf("disabled agent is not assignable")
	}
}

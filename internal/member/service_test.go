package member

import (
	"context"
	"errors"
	"testing"
)

func TestRegisterDefaultsToGuest(t *testing.T) {
	s := NewService(NewInMemory())
	ctx := context.Background()

	m, err := s.Register(ctx, "Jin.Park@Example.com", "opensesame", "Jin Park", "010-1234-5678")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if m.ID == "" {
		t.Fatal("expected an assigned id before the store sees the record")
	}
	if m.Role != RoleGuest {
		t.Fatalf("expected guest role, got %s", m.Role)
	}
	if m.Status != StatusActive {
		t.Fatalf("expected active status, got %s", m.Status)
	}
	if m.Email != "jin.park@example.com" {
		t.Fatalf("expected normalized email, got %s", m.Email)
	}
	if m.PasswordHash == "" || m.PasswordHash == "opensesame" {
		t.Fatal("expected hashed password")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := NewService(NewInMemory())
	ctx := context.Background()

	if _, err := s.Register(ctx, "a@example.com", "opensesame", "A", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := s.Register(ctx, "a@example.com", "opensesame", "A2", ""); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := NewService(NewInMemory())
	ctx := context.Background()

	cases := []struct {
		email, password, name string
	}{
		{"", "opensesame", "A"},
		{"not-an-email", "opensesame", "A"},
		{"a@example.com", "short", "A"},
		{"a@example.com", "opensesame", "  "},
	}
	for _, tc := range cases {
		if _, err := s.Register(ctx, tc.email, tc.password, tc.name, ""); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", tc, err)
		}
	}
}

func TestAuthenticate(t *testing.T) {
	s := NewService(NewInMemory())
	ctx := context.Background()

	reg, err := s.Register(ctx, "b@example.com", "opensesame", "B", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	m, err := s.Authenticate(ctx, "B@Example.com", "opensesame")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if m.ID != reg.ID {
		t.Fatalf("unexpected member: %s", m.ID)
	}

	if _, err := s.Authenticate(ctx, "b@example.com", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for bad password, got %v", err)
	}

	if err := s.Withdraw(ctx, reg.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if _, err := s.Authenticate(ctx, "b@example.com", "opensesame"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after withdrawal, got %v", err)
	}
}

func TestChangeRoleRequiresCapability(t *testing.T) {
	s := NewService(NewInMemory())
	ctx := context.Background()

	m, err := s.Register(ctx, "c@example.com", "opensesame", "C", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := s.ChangeRole(ctx, RoleMember, m.ID, RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member actor, got %v", err)
	}
	if _, err := s.ChangeRole(ctx, RoleGuest, m.ID, RoleMember); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for guest actor, got %v", err)
	}

	updated, err := s.ChangeRole(ctx, RoleAdmin, m.ID, RoleMember)
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if updated.Role != RoleMember {
		t.Fatalf("expected member role, got %s", updated.Role)
	}

	// Promotion to president is allowed; the one-president rule is policy.
	if _, err := s.ChangeRole(ctx, RolePresident, m.ID, RolePresident); err != nil {
		t.Fatalf("promote to president: %v", err)
	}
}

func TestWithdrawHidesFromRoster(t *testing.T) {
	s := NewService(NewInMemory())
	ctx := context.Background()

	a, _ := s.Register(ctx, "a@example.com", "opensesame", "Ahn", "")
	if _, err := s.Register(ctx, "b@example.com", "opensesame", "Bae", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := s.Withdraw(ctx, a.ID); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	roster, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(roster) != 1 || roster[0].Name != "Bae" {
		t.Fatalf("unexpected roster: %+v", roster)
	}

	// The record itself survives for attribution.
	got, err := s.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("get withdrawn member: %v", err)
	}
	if got.Status != StatusWithdrawn {
		t.Fatalf("expected withdrawn status, got %s", got.Status)
	}
}

func TestCapabilityTable(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RolePresident} {
		for _, c := range []Capability{CapRecordTransaction, CapManageBylaws, CapManageRoles} {
			if !role.Can(c) {
				t.Fatalf("%s should hold %s", role, c)
			}
		}
	}
	for _, role := range []Role{RoleGuest, RoleMember} {
		for _, c := range []Capability{CapRecordTransaction, CapManageBylaws, CapManageRoles} {
			if role.Can(c) {
				t.Fatalf("%s should not hold %s", role, c)
			}
		}
	}
	if RoleGuest.Approved() {
		t.Fatal("guest must not be approved")
	}
	if !RoleMember.Approved() {
		t.Fatal("member must be approved")
	}
}

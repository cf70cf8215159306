package member

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dongmun.org/internal/auth"
	"dongmun.org/internal/ids"
)

const minPasswordLength = 8

// Service wraps a Store with input validation and the role capability rules.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a roster service.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new identity with role=guest and status=active.
func (s *Service) Register(ctx context.Context, email, password, name, phone string) (*Member, error) {
	email = normalize(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	m := &Member{
		ID:           ids.New(),
		Email:        email,
		Name:         name,
		Phone:        strings.TrimSpace(phone),
		Role:         RoleGuest,
		Status:       StatusActive,
		JoinedAt:     now,
		UpdatedAt:    now,
		PasswordHash: hash,
	}
	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Authenticate verifies credentials for an active or inactive (non-withdrawn)
// member and returns the roster record.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Member, error) {
	email = normalize(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	m, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrNotFound
	}
	if m.Status == StatusWithdrawn {
		return nil, ErrNotFound
	}
	if err := auth.VerifyPassword(m.PasswordHash, password); err != nil {
		return nil, ErrNotFound
	}
	return m, nil
}

// Get returns a member by id.
func (s *Service) Get(ctx context.Context, id string) (*Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	return s.store.Find(ctx, id)
}

// List returns the visible roster (withdrawn members excluded).
func (s *Service) List(ctx context.Context) ([]*Member, error) {
	return s.store.List(ctx)
}

// UpdateProfile applies self-service profile changes.
func (s *Service) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		upd.Name = &trimmed
	}
	if upd.Phone != nil {
		trimmed := strings.TrimSpace(*upd.Phone)
		upd.Phone = &trimmed
	}
	return s.store.UpdateProfile(ctx, id, upd)
}

// ChangeRole reassigns a member's role. The acting member must hold the
// manage-roles capability. Promotion to president is permitted here; keeping a
// single president is club policy, not a store invariant.
func (s *Service) ChangeRole(ctx context.Context, actor Role, id string, newRole Role) (*Member, error) {
	if !actor.Can(CapManageRoles) {
		return nil, ErrForbidden
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	if _, ok := ParseRole(string(newRole)); !ok {
		return nil, fmt.Errorf("%w: unsupported role %q", ErrInvalidInput, newRole)
	}
	return s.store.UpdateRole(ctx, id, newRole)
}

// Withdraw soft-deletes a member by flipping status to withdrawn. The row is
// kept so ledger and bylaw attribution keeps resolving.
func (s *Service) Withdraw(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	return s.store.UpdateStatus(ctx, id, StatusWithdrawn)
}

// SetPassword replaces the stored password hash.
func (s *Service) SetPassword(ctx context.Context, id, newPassword string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, hash)
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

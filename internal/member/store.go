package member

import "context"

// Store describes persistence operations required by the roster.
type Store interface {
	Create(ctx context.Context, m *Member) error
	Find(ctx context.Context, id string) (*Member, error)
	FindByEmail(ctx context.Context, email string) (*Member, error)
	// List returns non-withdrawn members ordered by display name.
	List(ctx context.Context) ([]*Member, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*Member, error)
	UpdateRole(ctx context.Context, id string, role Role) (*Member, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

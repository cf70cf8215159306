package member

import (
	"context"
	"sort"
	"sync"
	"time"

	"dongmun.org/internal/ids"
)

// InMemory implements Store with in-process concurrency safety. It backs the
// HTTP layer tests and local development without a database.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[string]*Member
	byEmail map[string]string
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty roster store.
func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[string]*Member),
		byEmail: make(map[string]string),
	}
}

func (s *InMemory) Create(ctx context.Context, m *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[m.Email]; ok {
		return ErrConflict
	}
	if m.ID == "" {
		m.ID = ids.New()
	}
	cp := *m
	s.byID[cp.ID] = &cp
	s.byEmail[cp.Email] = cp.ID
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *InMemory) FindByEmail(ctx context.Context, email string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemory) List(ctx context.Context) ([]*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*Member, 0, len(s.byID))
	for _, m := range s.byID {
		if m.Status == StatusWithdrawn {
			continue
		}
		cp := *m
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (s *InMemory) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		m.Name = *upd.Name
	}
	if upd.Phone != nil {
		m.Phone = *upd.Phone
	}
	m.UpdatedAt = time.Now().UTC()
	cp := *m
	return &cp, nil
}

func (s *InMemory) UpdateRole(ctx context.Context, id string, role Role) (*Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.Role = role
	m.UpdatedAt = time.Now().UTC()
	cp := *m
	return &cp, nil
}

func (s *InMemory) UpdateStatus(ctx context.Context, id string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	m.Status = status
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemory) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	m.PasswordHash = passwordHash
	m.UpdatedAt = time.Now().UTC()
	return nil
}

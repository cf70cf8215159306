package bylaws

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dongmun.org/internal/ids"
)

// Service defines bylaws version-control operations.
type Service interface {
	// Create stores a new revision and activates it, deactivating every
	// previously active revision in the same logical operation.
	Create(ctx context.Context, in CreateInput) (Bylaw, error)
	// Amend updates mutable fields in place without touching the active flag.
	Amend(ctx context.Context, id string, upd Update) (Bylaw, error)
	// Activate marks id active and clears the flag everywhere else.
	// Concurrent activations resolve last-write-wins.
	Activate(ctx context.Context, id string) error
	GetActive(ctx context.Context) (Bylaw, error)
	// ListHistory returns all revisions ordered by effective date descending.
	ListHistory(ctx context.Context) ([]Bylaw, error)
}

// ValidateCreate checks the fields shared by every Service implementation.
func ValidateCreate(in CreateInput) error {
	if strings.TrimSpace(in.Version) == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if in.EffectiveDate.IsZero() {
		return fmt.Errorf("%w: effective date is required", ErrInvalidInput)
	}
	return nil
}

// ValidateUpdate rejects amendments that would blank out required fields.
func ValidateUpdate(upd Update) error {
	if upd.Version != nil && strings.TrimSpace(*upd.Version) == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidInput)
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if upd.Content != nil && strings.TrimSpace(*upd.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if upd.EffectiveDate != nil && upd.EffectiveDate.IsZero() {
		return fmt.Errorf("%w: effective date is required", ErrInvalidInput)
	}
	return nil
}

// InMemory implements Service with in-process concurrency safety. It backs
// the HTTP layer tests and local development without a database.
type InMemory struct {
	mu   sync.RWMutex
	byID map[string]*Bylaw
	now  func() time.Time
}

var _ Service = (*InMemory)(nil)

// NewInMemory creates an empty revision store.
func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[string]*Bylaw), now: time.Now}
}

func (s *InMemory) Create(ctx context.Context, in CreateInput) (Bylaw, error) {
	if err := ValidateCreate(in); err != nil {
		return Bylaw{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.byID {
		b.Active = false
	}
	now := s.now().UTC()
	b := &Bylaw{
		ID:            ids.New(),
		Version:       strings.TrimSpace(in.Version),
		Title:         strings.TrimSpace(in.Title),
		Content:       in.Content,
		EffectiveDate: in.EffectiveDate,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
		AuthorID:      in.AuthorID,
	}
	s.byID[b.ID] = b
	return *b, nil
}

func (s *InMemory) Amend(ctx context.Context, id string, upd Update) (Bylaw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.byID[id]
	if !ok {
		return Bylaw{}, ErrNotFound
	}
	if err := ValidateUpdate(upd); err != nil {
		return Bylaw{}, err
	}
	if upd.Version != nil {
		b.Version = strings.TrimSpace(*upd.Version)
	}
	if upd.Title != nil {
		b.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Content != nil {
		b.Content = *upd.Content
	}
	if upd.EffectiveDate != nil {
		b.EffectiveDate = *upd.EffectiveDate
	}
	b.UpdatedAt = s.now().UTC()
	return *b, nil
}

func (s *InMemory) Activate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	for _, b := range s.byID {
		b.Active = false
	}
	target.Active = true
	target.UpdatedAt = s.now().UTC()
	return nil
}

func (s *InMemory) GetActive(ctx context.Context) (Bylaw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.byID {
		if b.Active {
			return *b, nil
		}
	}
	return Bylaw{}, ErrNoActive
}

func (s *InMemory) ListHistory(ctx context.Context) ([]Bylaw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Bylaw, 0, len(s.byID))
	for _, b := range s.byID {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EffectiveDate.Equal(out[j].EffectiveDate) {
			return out[i].EffectiveDate.After(out[j].EffectiveDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

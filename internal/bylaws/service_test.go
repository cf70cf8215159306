package bylaws

import (
	"context"
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func countActive(t *testing.T, s Service) int {
	t.Helper()
	all, err := s.ListHistory(context.Background())
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	n := 0
	for _, b := range all {
		if b.Active {
			n++
		}
	}
	return n
}

func TestCreateAutoActivates(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	v1, err := s.Create(ctx, CreateInput{
		Version: "2024-1", Title: "Club Bylaws", Content: "# Bylaws",
		EffectiveDate: date(2024, 1, 1), AuthorID: "m1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !v1.Active {
		t.Fatal("first revision should be active")
	}

	v2, err := s.Create(ctx, CreateInput{
		Version: "2024-2", Title: "Club Bylaws", Content: "# Bylaws v2",
		EffectiveDate: date(2024, 6, 1), AuthorID: "m1",
	})
	if err != nil {
		t.Fatal(err)
	}

	active, err := s.GetActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if active.ID != v2.ID || active.Version != "2024-2" {
		t.Fatalf("expected 2024-2 active, got %s", active.Version)
	}
	if got := countActive(t, s); got != 1 {
		t.Fatalf("expected exactly one active revision, got %d", got)
	}

	history, _ := s.ListHistory(ctx)
	if len(history) != 2 || history[0].ID != v2.ID || history[1].ID != v1.ID {
		t.Fatalf("unexpected history order: %+v", history)
	}
}

func TestActivateSwaps(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	v1, _ := s.Create(ctx, CreateInput{Version: "2023-1", Title: "T", Content: "c", EffectiveDate: date(2023, 1, 1), AuthorID: "m1"})
	v2, _ := s.Create(ctx, CreateInput{Version: "2024-1", Title: "T", Content: "c", EffectiveDate: date(2024, 1, 1), AuthorID: "m1"})

	if err := s.Activate(ctx, v1.ID); err != nil {
		t.Fatal(err)
	}
	active, err := s.GetActive(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if active.ID != v1.ID {
		t.Fatalf("expected %s active, got %s", v1.ID, active.ID)
	}
	if got := countActive(t, s); got != 1 {
		t.Fatalf("expected exactly one active revision, got %d", got)
	}

	if err := s.Activate(ctx, v2.ID); err != nil {
		t.Fatal(err)
	}
	if got := countActive(t, s); got != 1 {
		t.Fatalf("expected exactly one active revision, got %d", got)
	}
}

func TestActivateUnknownID(t *testing.T) {
	s := NewInMemory()
	if err := s.Activate(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAmendLeavesActiveFlag(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	v1, _ := s.Create(ctx, CreateInput{Version: "2024-1", Title: "T", Content: "c", EffectiveDate: date(2024, 1, 1), AuthorID: "m1"})
	v2, _ := s.Create(ctx, CreateInput{Version: "2024-2", Title: "T", Content: "c", EffectiveDate: date(2024, 6, 1), AuthorID: "m1"})

	title := "Amended Title"
	eff := date(2024, 2, 1)
	amended, err := s.Amend(ctx, v1.ID, Update{Title: &title, EffectiveDate: &eff})
	if err != nil {
		t.Fatal(err)
	}
	if amended.Title != "Amended Title" || !amended.EffectiveDate.Equal(eff) {
		t.Fatalf("amendment not applied: %+v", amended)
	}
	if amended.Active {
		t.Fatal("amending must not activate an inactive revision")
	}

	active, _ := s.GetActive(ctx)
	if active.ID != v2.ID {
		t.Fatalf("active revision changed by amendment")
	}
}

func TestAmendValidation(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	v1, _ := s.Create(ctx, CreateInput{Version: "2024-1", Title: "T", Content: "c", EffectiveDate: date(2024, 1, 1), AuthorID: "m1"})

	empty := "  "
	if _, err := s.Amend(ctx, v1.ID, Update{Title: &empty}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.Amend(ctx, "missing", Update{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetActiveEmpty(t *testing.T) {
	s := NewInMemory()
	if _, err := s.GetActive(context.Background()); !errors.Is(err, ErrNoActive) {
		t.Fatalf("expected ErrNoActive, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	cases := []CreateInput{
		{Title: "T", Content: "c", EffectiveDate: date(2024, 1, 1)},
		{Version: "v", Content: "c", EffectiveDate: date(2024, 1, 1)},
		{Version: "v", Title: "T", EffectiveDate: date(2024, 1, 1)},
		{Version: "v", Title: "T", Content: "c"},
	}
	for _, in := range cases {
		if _, err := s.Create(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
}

package ledger

import (
	"context"
	"sync"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAppendComputesRunningBalance(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	first, err := s.Append(ctx, AppendInput{
		Date: date(2024, 1, 1), Type: TypeDeposit, Amount: 50000,
		Category: "dues", CreatedBy: "m1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if first.Balance != 50000 {
		t.Fatalf("expected balance 50000, got %d", first.Balance)
	}

	second, err := s.Append(ctx, AppendInput{
		Date: date(2024, 1, 2), Type: TypeWithdrawal, Amount: 20000,
		Category: "snacks", CreatedBy: "m1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if second.Balance != 30000 {
		t.Fatalf("expected balance 30000, got %d", second.Balance)
	}

	bal, _ := s.CurrentBalance(ctx)
	if bal != 30000 {
		t.Fatalf("expected current balance 30000, got %d", bal)
	}

	list, _ := s.List(ctx)
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("unexpected list order: %+v", list)
	}
}

func TestAppendCumulativeSum(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	amounts := []int64{1000, 2500, 700, 400, 9000}
	var want int64
	for i, amt := range amounts {
		typ := TypeDeposit
		if i%2 == 1 {
			typ = TypeWithdrawal
			want -= amt
		} else {
			want += amt
		}
		if _, err := s.Append(ctx, AppendInput{
			Date: date(2024, 3, 1+i), Type: typ, Amount: amt,
			Category: "misc", CreatedBy: "m1",
		}); err != nil {
			t.Fatal(err)
		}
	}

	bal, _ := s.CurrentBalance(ctx)
	if bal != want {
		t.Fatalf("expected balance %d, got %d", want, bal)
	}
}

func TestWithdrawalMayGoNegative(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	if _, err := s.Append(ctx, AppendInput{
		Date: date(2024, 1, 1), Type: TypeDeposit, Amount: 10000,
		Category: "dues", CreatedBy: "m1",
	}); err != nil {
		t.Fatal(err)
	}

	// Overdraft is intentionally not guarded.
	tx, err := s.Append(ctx, AppendInput{
		Date: date(2024, 1, 2), Type: TypeWithdrawal, Amount: 25000,
		Category: "venue", CreatedBy: "m1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if tx.Balance != -15000 {
		t.Fatalf("expected balance -15000, got %d", tx.Balance)
	}
}

func TestBackdatedAppendUsesCurrentHead(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	if _, err := s.Append(ctx, AppendInput{
		Date: date(2024, 2, 10), Type: TypeDeposit, Amount: 30000,
		Category: "dues", CreatedBy: "m1",
	}); err != nil {
		t.Fatal(err)
	}

	// Entered later but dated earlier: balance still builds on the head.
	backdated, err := s.Append(ctx, AppendInput{
		Date: date(2024, 1, 5), Type: TypeDeposit, Amount: 5000,
		Category: "dues", CreatedBy: "m1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if backdated.Balance != 35000 {
		t.Fatalf("expected balance 35000, got %d", backdated.Balance)
	}

	// Display order keeps the later date first; current balance comes from it.
	list, _ := s.List(ctx)
	if list[0].Date != date(2024, 2, 10) || list[1].ID != backdated.ID {
		t.Fatalf("unexpected order: %+v", list)
	}
	bal, _ := s.CurrentBalance(ctx)
	if bal != 30000 {
		t.Fatalf("expected current balance 30000, got %d", bal)
	}
}

func TestSameDateOrderedByEntryTime(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	clock := date(2024, 4, 1)
	s.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})

	a, _ := s.Append(ctx, AppendInput{Date: date(2024, 4, 1), Type: TypeDeposit, Amount: 100, Category: "a", CreatedBy: "m1"})
	b, _ := s.Append(ctx, AppendInput{Date: date(2024, 4, 1), Type: TypeDeposit, Amount: 200, Category: "b", CreatedBy: "m1"})

	list, _ := s.List(ctx)
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("expected entry-time tiebreak, got %+v", list)
	}
	bal, _ := s.CurrentBalance(ctx)
	if bal != 300 {
		t.Fatalf("expected 300, got %d", bal)
	}
}

func TestAppendValidation(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	cases := []struct {
		in   AppendInput
		want error
	}{
		{AppendInput{Date: date(2024, 1, 1), Type: TypeDeposit, Amount: 0, Category: "x"}, ErrInvalidAmount},
		{AppendInput{Date: date(2024, 1, 1), Type: TypeDeposit, Amount: -5, Category: "x"}, ErrInvalidAmount},
		{AppendInput{Date: date(2024, 1, 1), Type: "transfer", Amount: 10, Category: "x"}, ErrInvalidType},
		{AppendInput{Type: TypeDeposit, Amount: 10, Category: "x"}, ErrInvalidDate},
		{AppendInput{Date: date(2024, 1, 1), Type: TypeDeposit, Amount: 10}, ErrInvalidCategory},
	}
	for _, tc := range cases {
		if _, err := s.Append(ctx, tc.in); err != tc.want {
			t.Fatalf("expected %v, got %v", tc.want, err)
		}
	}
}

func TestConcurrentAppendsConserveSum(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	N := 50
	for i := 0; i < N; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Append(ctx, AppendInput{
				Date: date(2024, 5, 1), Type: TypeDeposit, Amount: 100,
				Category: "dues", CreatedBy: "m1",
			})
		}(i)
	}
	wg.Wait()

	bal, _ := s.CurrentBalance(ctx)
	if bal != int64(N)*100 {
		t.Fatalf("expected %d, got %d", N*100, bal)
	}
	list, _ := s.List(ctx)
	if len(list) != N {
		t.Fatalf("expected %d transactions, got %d", N, len(list))
	}
}

package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"dongmun.org/internal/ids"
)

// Service defines treasury ledger operations. Transactions are append-only;
// no update or delete exists.
type Service interface {
	Append(ctx context.Context, in AppendInput) (Transaction, error)
	List(ctx context.Context) ([]Transaction, error)
	CurrentBalance(ctx context.Context) (int64, error)
}

// InMemory implements Service with in-process concurrency safety. It backs
// the HTTP layer tests and local development without a database.
type InMemory struct {
	mu  sync.RWMutex
	txs []Transaction // kept in display order: date desc, created_at desc
	now func() time.Time
}

var _ Service = (*InMemory)(nil)

// NewInMemory creates an empty ledger.
func NewInMemory() *InMemory {
	return &InMemory{now: time.Now}
}

// SetClock overrides the time source. Only intended for test use.
func (s *InMemory) SetClock(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

func (s *InMemory) Append(ctx context.Context, in AppendInput) (Transaction, error) {
	if err := ValidateAppend(in); err != nil {
		return Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Previous balance is whatever currently ranks first, even when the new
	// row is back-dated. Withdrawals may drive the balance negative.
	var prev int64
	if len(s.txs) > 0 {
		prev = s.txs[0].Balance
	}
	balance := prev + in.Amount
	if in.Type == TypeWithdrawal {
		balance = prev - in.Amount
	}

	tx := Transaction{
		ID:          ids.New(),
		Date:        DateOnly(in.Date),
		Type:        in.Type,
		Amount:      in.Amount,
		Balance:     balance,
		Category:    in.Category,
		Description: in.Description,
		CreatedAt:   s.now().UTC(),
		CreatedBy:   in.CreatedBy,
	}

	idx := sort.Search(len(s.txs), func(i int) bool {
		return RanksBefore(tx, s.txs[i])
	})
	s.txs = append(s.txs, Transaction{})
	copy(s.txs[idx+1:], s.txs[idx:])
	s.txs[idx] = tx

	return tx, nil
}

func (s *InMemory) List(ctx context.Context) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

func (s *InMemory) CurrentBalance(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.txs) == 0 {
		return 0, nil
	}
	return s.txs[0].Balance, nil
}

package pg

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dongmun.org/internal/ids"
	"dongmun.org/internal/ledger"
)

// LedgerStore implements ledger.Service on PostgreSQL.
type LedgerStore struct {
	db *sql.DB
}

var _ ledger.Service = (*LedgerStore)(nil)

func (s *LedgerStore) Append(ctx context.Context, in ledger.AppendInput) (ledger.Transaction, error) {
	if err := ledger.ValidateAppend(in); err != nil {
		return ledger.Transaction{}, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return ledger.Transaction{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// Previous balance is whatever currently ranks first under the display
	// ordering, even when the new row is back-dated.
	var prev int64
	err = tx.QueryRowContext(ctx, `
		select balance from transactions
		order by date desc, created_at desc
		limit 1
	`).Scan(&prev)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return ledger.Transaction{}, err
	}

	balance := prev + in.Amount
	if in.Type == ledger.TypeWithdrawal {
		balance = prev - in.Amount
	}

	rec := ledger.Transaction{
		ID:          ids.New(),
		Date:        ledger.DateOnly(in.Date),
		Type:        in.Type,
		Amount:      in.Amount,
		Balance:     balance,
		Category:    in.Category,
		Description: in.Description,
		CreatedBy:   in.CreatedBy,
	}
	var created time.Time
	if err := tx.QueryRowContext(ctx, `
		insert into transactions(id, date, type, amount, balance, category, description, created_by)
		values ($1,$2,$3,$4,$5,$6,nullif($7,''),$8)
		returning created_at
	`, rec.ID, rec.Date, string(rec.Type), rec.Amount, rec.Balance, rec.Category, rec.Description, rec.CreatedBy).Scan(&created); err != nil {
		return ledger.Transaction{}, err
	}
	if err := tx.Commit(); err != nil {
		return ledger.Transaction{}, err
	}
	rec.CreatedAt = created
	return rec, nil
}

func (s *LedgerStore) List(ctx context.Context) ([]ledger.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, date, type, amount, balance, category, coalesce(description,''), created_at, created_by
		from transactions
		order by date desc, created_at desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []ledger.Transaction
	for rows.Next() {
		var (
			t   ledger.Transaction
			typ string
		)
		if err := rows.Scan(&t.ID, &t.Date, &typ, &t.Amount, &t.Balance, &t.Category, &t.Description, &t.CreatedAt, &t.CreatedBy); err != nil {
			return nil, err
		}
		t.Type = ledger.EntryType(typ)
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *LedgerStore) CurrentBalance(ctx context.Context) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, `
		select balance from transactions
		order by date desc, created_at desc
		limit 1
	`).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return balance, nil
}

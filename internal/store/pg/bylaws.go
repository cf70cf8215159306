package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dongmun.org/internal/bylaws"
	"dongmun.org/internal/ids"
)

// BylawStore implements bylaws.Service on PostgreSQL. A partial unique
// index on is_active guarantees at most one active revision even under
// concurrent writers.
type BylawStore struct {
	db *sql.DB
}

var _ bylaws.Service = (*BylawStore)(nil)

const bylawColumns = `id, version, title, content, effective_date, is_active, created_at, updated_at, author_id`

func scanBylaw(row interface{ Scan(...any) error }) (bylaws.Bylaw, error) {
	var b bylaws.Bylaw
	err := row.Scan(&b.ID, &b.Version, &b.Title, &b.Content, &b.EffectiveDate,
		&b.Active, &b.CreatedAt, &b.UpdatedAt, &b.AuthorID)
	return b, err
}

func (s *BylawStore) Create(ctx context.Context, in bylaws.CreateInput) (bylaws.Bylaw, error) {
	if err := bylaws.ValidateCreate(in); err != nil {
		return bylaws.Bylaw{}, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return bylaws.Bylaw{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `update bylaws set is_active = false, updated_at = now() where is_active`); err != nil {
		return bylaws.Bylaw{}, err
	}

	row := tx.QueryRowContext(ctx, `
		insert into bylaws (id, version, title, content, effective_date, is_active, author_id)
		values ($1, $2, $3, $4, $5, true, $6)
		returning `+bylawColumns+`
	`, ids.New(), strings.TrimSpace(in.Version), strings.TrimSpace(in.Title), in.Content, in.EffectiveDate, in.AuthorID)
	b, err := scanBylaw(row)
	if err != nil {
		return bylaws.Bylaw{}, err
	}
	if err := tx.Commit(); err != nil {
		return bylaws.Bylaw{}, err
	}
	return b, nil
}

func (s *BylawStore) Amend(ctx context.Context, id string, upd bylaws.Update) (bylaws.Bylaw, error) {
	if err := bylaws.ValidateUpdate(upd); err != nil {
		return bylaws.Bylaw{}, err
	}

	var (
		sets []string
		args []any
		idx  = 1
	)
	appendSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}
	if upd.Version != nil {
		appendSet("version", strings.TrimSpace(*upd.Version))
	}
	if upd.Title != nil {
		appendSet("title", strings.TrimSpace(*upd.Title))
	}
	if upd.Content != nil {
		appendSet("content", *upd.Content)
	}
	if upd.EffectiveDate != nil {
		appendSet("effective_date", *upd.EffectiveDate)
	}
	if len(sets) == 0 {
		return s.find(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	query := fmt.Sprintf(`update bylaws set %s where id = $%d returning `+bylawColumns,
		strings.Join(sets, ", "), idx)
	args = append(args, id)

	b, err := scanBylaw(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return bylaws.Bylaw{}, bylaws.ErrNotFound
	}
	if err != nil {
		return bylaws.Bylaw{}, err
	}
	return b, nil
}

func (s *BylawStore) Activate(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `update bylaws set is_active = false, updated_at = now() where is_active and id <> $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `update bylaws set is_active = true, updated_at = now() where id = $1`, id)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return bylaws.ErrNotFound
	}
	return tx.Commit()
}

func (s *BylawStore) GetActive(ctx context.Context) (bylaws.Bylaw, error) {
	b, err := scanBylaw(s.db.QueryRowContext(ctx, `
		select `+bylawColumns+`
		from bylaws
		where is_active
	`))
	if errors.Is(err, sql.ErrNoRows) {
		return bylaws.Bylaw{}, bylaws.ErrNoActive
	}
	if err != nil {
		return bylaws.Bylaw{}, err
	}
	return b, nil
}

func (s *BylawStore) ListHistory(ctx context.Context) ([]bylaws.Bylaw, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+bylawColumns+`
		from bylaws
		order by effective_date desc, created_at desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []bylaws.Bylaw
	for rows.Next() {
		b, err := scanBylaw(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (s *BylawStore) find(ctx context.Context, id string) (bylaws.Bylaw, error) {
	b, err := scanBylaw(s.db.QueryRowContext(ctx, `
		select `+bylawColumns+`
		from bylaws
		where id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return bylaws.Bylaw{}, bylaws.ErrNotFound
	}
	if err != nil {
		return bylaws.Bylaw{}, err
	}
	return b, nil
}

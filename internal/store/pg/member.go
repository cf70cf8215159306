package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dongmun.org/internal/ids"
	"dongmun.org/internal/member"
)

// MemberStore implements member.Store on PostgreSQL.
type MemberStore struct {
	db *sql.DB
}

var _ member.Store = (*MemberStore)(nil)

const memberColumns = `id, email, name, coalesce(phone,''), role, status, password_hash, joined_at, updated_at`

func scanMember(row interface{ Scan(...any) error }) (*member.Member, error) {
	var (
		m            member.Member
		role, status string
	)
	err := row.Scan(&m.ID, &m.Email, &m.Name, &m.Phone, &role, &status,
		&m.PasswordHash, &m.JoinedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Role = member.Role(role)
	m.Status = member.Status(status)
	return &m, nil
}

func (s *MemberStore) Create(ctx context.Context, m *member.Member) error {
	if m.ID == "" {
		m.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into members (id, email, name, phone, role, status, password_hash)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning joined_at, updated_at
	`, m.ID, m.Email, m.Name, nullIfEmpty(m.Phone), string(m.Role), string(m.Status), m.PasswordHash)
	if err := row.Scan(&m.JoinedAt, &m.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return member.ErrConflict
		}
		return err
	}
	return nil
}

func (s *MemberStore) Find(ctx context.Context, id string) (*member.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, `
		select `+memberColumns+`
		from members
		where id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, member.ErrNotFound
	}
	return m, err
}

func (s *MemberStore) FindByEmail(ctx context.Context, email string) (*member.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, `
		select `+memberColumns+`
		from members
		where email = $1
	`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, member.ErrNotFound
	}
	return m, err
}

func (s *MemberStore) List(ctx context.Context) ([]*member.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+memberColumns+`
		from members
		where status <> 'withdrawn'
		order by name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*member.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *MemberStore) UpdateProfile(ctx context.Context, id string, upd member.ProfileUpdate) (*member.Member, error) {
	var (
		sets []string
		args []any
		idx  = 1
	)
	if upd.Name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", idx))
		args = append(args, strings.TrimSpace(*upd.Name))
		idx++
	}
	if upd.Phone != nil {
		sets = append(sets, fmt.Sprintf("phone = $%d", idx))
		args = append(args, nullIfEmpty(*upd.Phone))
		idx++
	}
	if len(sets) == 0 {
		return s.Find(ctx, id)
	}

	sets = append(sets, "updated_at = now()")
	query := fmt.Sprintf(`update members set %s where id = $%d returning `+memberColumns,
		strings.Join(sets, ", "), idx)
	args = append(args, id)

	m, err := scanMember(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, member.ErrNotFound
	}
	return m, err
}

func (s *MemberStore) UpdateRole(ctx context.Context, id string, role member.Role) (*member.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, `
		update members set role = $2, updated_at = now()
		where id = $1
		returning `+memberColumns+`
	`, id, string(role)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, member.ErrNotFound
	}
	return m, err
}

func (s *MemberStore) UpdateStatus(ctx context.Context, id string, status member.Status) error {
	res, err := s.db.ExecContext(ctx, `
		update members set status = $2, updated_at = now()
		where id = $1
	`, id, string(status))
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return member.ErrNotFound
	}
	return nil
}

func (s *MemberStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.ExecContext(ctx, `
		update members set password_hash = $2, updated_at = now()
		where id = $1
	`, id, passwordHash)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return member.ErrNotFound
	}
	return nil
}

// Package pg implements the durable stores on PostgreSQL. Each operation is a
// single statement or a short transaction; failures surface verbatim to the
// caller, which reports them without retrying.
package pg

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const pgErrUniqueViolation = "23505"

// Store bundles the three domain stores over one connection pool.
type Store struct {
	db      *sql.DB
	ledger  *LedgerStore
	bylaws  *BylawStore
	members *MemberStore
}

// Open connects to PostgreSQL and tunes the pool.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return NewStore(db), nil
}

// NewStore wraps an existing connection (used by tests with sqlmock).
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		ledger:  &LedgerStore{db: db},
		bylaws:  &BylawStore{db: db},
		members: &MemberStore{db: db},
	}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// Ledger returns the treasury ledger store.
func (s *Store) Ledger() *LedgerStore { return s.ledger }

// Bylaws returns the bylaws revision store.
func (s *Store) Bylaws() *BylawStore { return s.bylaws }

// Members returns the roster store.
func (s *Store) Members() *MemberStore { return s.members }

// --- helpers ---

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func nullIfEmpty(s string) sql.NullString {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

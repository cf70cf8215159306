package bylaws

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("bylaws: revision not found")
	ErrNoActive     = errors.New("bylaws: no active revision")
	ErrInvalidInput = errors.New("bylaws: invalid input")
)

// Bylaw is one revision of the club's governing document. At most one
// revision is active at any time.
type Bylaw struct {
	ID            string    `json:"id"`
	Version       string    `json:"version"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	EffectiveDate time.Time `json:"effective_date"`
	Active        bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	AuthorID      string    `json:"author_id"`
}

// CreateInput carries the fields of a new revision.
type CreateInput struct {
	Version       string
	Title         string
	Content       string
	EffectiveDate time.Time
	AuthorID      string
}

// Update carries a partial amendment; nil fields are left untouched. The
// active flag is never changed by an amendment.
type Update struct {
	Version       *string
	Title         *string
	Content       *string
	EffectiveDate *time.Time
}

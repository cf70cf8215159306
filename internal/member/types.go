package member

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("member: not found")
	ErrConflict     = errors.New("member: already exists")
	ErrInvalidInput = errors.New("member: invalid input")
	ErrForbidden    = errors.New("member: operation not allowed")
)

// Role is the roster role assigned to a member. A freshly registered identity
// starts as a guest and is promoted by an administrator.
type Role string

const (
	RoleGuest     Role = "guest"
	RoleMember    Role = "member"
	RoleAdmin     Role = "admin"
	RolePresident Role = "president"
)

// ParseRole normalizes and validates a role string.
func ParseRole(raw string) (Role, bool) {
	switch Role(normalize(raw)) {
	case RoleGuest:
		return RoleGuest, true
	case RoleMember:
		return RoleMember, true
	case RoleAdmin:
		return RoleAdmin, true
	case RolePresident:
		return RolePresident, true
	}
	return "", false
}

// Status tracks the member lifecycle. Withdrawn members are soft-deleted so
// historical attribution on ledger and bylaw rows stays intact.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusWithdrawn Status = "withdrawn"
)

// ParseStatus normalizes and validates a status string.
func ParseStatus(raw string) (Status, bool) {
	switch Status(normalize(raw)) {
	case StatusActive:
		return StatusActive, true
	case StatusInactive:
		return StatusInactive, true
	case StatusWithdrawn:
		return StatusWithdrawn, true
	}
	return "", false
}

// Member is an identity record in the roster.
type Member struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	JoinedAt     time.Time `json:"joined_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	PasswordHash string    `json:"-"`
}

// ProfileUpdate carries the self-service mutable fields.
type ProfileUpdate struct {
	Name  *string
	Phone *string
}

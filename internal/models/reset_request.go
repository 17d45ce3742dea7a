package models

import "time"

// ResetStatus is the state of a password reset request.
type ResetStatus string

const (
	ResetPending  ResetStatus = "pending"
	ResetApproved ResetStatus = "approved"
	ResetRejected ResetStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ResetStatus) Valid() bool {
	return s == ResetPending || s == ResetApproved || s == ResetRejected
}

// Terminal reports whether no further transition is allowed from s.
func (s ResetStatus) Terminal() bool {
	return s == ResetApproved || s == ResetRejected
}

// PasswordResetRequest records a resident's request to have their credential rotated.
type PasswordResetRequest struct {
	ID         string      `json:"id" db:"id"`
	UserID     string      `json:"user_id" db:"user_id"`
	Status     ResetStatus `json:"status" db:"status"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	ResolvedAt *time.Time  `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy *string     `json:"resolved_by,omitempty" db:"resolved_by"`
	AdminNotes *string     `json:"admin_notes,omitempty" db:"admin_notes"`
}

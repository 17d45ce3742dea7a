package models

import "time"

// Account captures application-facing fields for a society member or staff identity.
type Account struct {
	ID                 string    `json:"id" db:"id"`
	Email              string    `json:"email" db:"email"`
	Phone              string    `json:"phone" db:"phone"`
	FullName           string    `json:"full_name" db:"full_name"`
	Role               Role      `json:"role" db:"role"`
	IsActive           bool      `json:"is_active" db:"is_active"`
	MustChangePassword bool      `json:"must_change_password" db:"must_change_password"`
	UnitID             *string   `json:"unit_id,omitempty" db:"unit_id"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// Unit is a housing unit that may be owned by an account.
type Unit struct {
	ID         string  `json:"id" db:"id"`
	UnitNumber string  `json:"unit_number" db:"unit_number"`
	OwnerID    *string `json:"owner_id,omitempty" db:"owner_id"`
}

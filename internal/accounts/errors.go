package accounts

import (
	"fmt"

	"github.com/hongminglow/society-be/internal/apperr"
)

// ProfileUpdateError means the identity exists and can sign in, but its
// profile fields were not saved.
type ProfileUpdateError struct {
	AccountID string
	Err       error
}

func (e *ProfileUpdateError) Error() string {
	return fmt.Sprintf("account %s was created but its profile could not be saved: %v", e.AccountID, e.Err)
}

func (e *ProfileUpdateError) Unwrap() []error { return []error{apperr.ErrUpstream, e.Err} }

// FlagUpdateError means the credential change took effect but the
// must_change_password flag could not be written.
type FlagUpdateError struct {
	AccountID string
	Value     bool
	Err       error
}

func (e *FlagUpdateError) Error() string {
	return fmt.Sprintf("password was changed but must_change_password could not be set to %t: %v", e.Value, e.Err)
}

func (e *FlagUpdateError) Unwrap() []error { return []error{apperr.ErrUpstream, e.Err} }

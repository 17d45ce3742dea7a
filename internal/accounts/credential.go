package accounts

import (
	"fmt"
	"strings"
)

// DefaultEmailDomain is used to synthesize placeholder emails from phone numbers.
const DefaultEmailDomain = "society.local"

// DefaultCredentialStrategy decides the initial secret for admin-created accounts.
type DefaultCredentialStrategy interface {
	DefaultCredential(input CreateAccountInput) string
}

// PhoneCredential uses the phone number verbatim. It is guessable, so accounts
// created with it are always flagged must_change_password.
type PhoneCredential struct{}

// DefaultCredential returns the input phone.
func (PhoneCredential) DefaultCredential(input CreateAccountInput) string {
	return input.Phone
}

// SyntheticEmail builds the placeholder login email for accounts without one.
func SyntheticEmail(phone, domain string) string {
	if domain == "" {
		domain = DefaultEmailDomain
	}
	return fmt.Sprintf("%s@%s", strings.TrimSpace(phone), domain)
}

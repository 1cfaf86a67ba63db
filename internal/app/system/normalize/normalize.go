// internal/app/system/normalize/normalize.go

// Package normalize centralizes field normalization so every store
// writes emails and names the same way.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lowercases and trims an email address. All lookups and
// uniqueness checks go through this, so "A@x.com" and "a@x.com " are
// the same account.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses internal whitespace runs to single spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fold returns the case-insensitive, diacritics-stripped form used for
// _ci fields and substring matching.
func Fold(s string) string {
	return text.Fold(s)
}

// Role lowercases a role value from a session or record.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

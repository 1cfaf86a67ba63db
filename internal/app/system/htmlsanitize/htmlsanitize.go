// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips markup from user-supplied free text
// before it is stored or exported.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML from s, leaving plain text.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

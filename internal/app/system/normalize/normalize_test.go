package normalize_test

import (
	"testing"

	"github.com/krcapps/orderdash/internal/app/system/normalize"
)

func TestEmail(t *testing.T) {
	cases := []struct{ in, want string }{
		{"A@X.com", "a@x.com"},
		{"  sari@krc.id  ", "sari@krc.id"},
		{"", ""},
	}
	for _, c := range cases {
		if got := normalize.Email(c.in); got != c.want {
			t.Errorf("Email(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

func TestName(t *testing.T) {
	if got := normalize.Name("  Budi   Santoso "); got != "Budi Santoso" {
		t.Errorf("Name: got %q", got)
	}
}

func TestRole(t *testing.T) {
	if got := normalize.Role(" Admin "); got != "admin" {
		t.Errorf("Role: got %q", got)
	}
}

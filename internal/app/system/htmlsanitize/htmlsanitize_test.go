package htmlsanitize_test

import (
	"testing"

	"github.com/krcapps/orderdash/internal/app/system/htmlsanitize"
)

func TestText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain description text", "plain description text"},
		{"<b>bold</b> move", "bold move"},
		{"<script>alert(1)</script>hello", "hello"},
		{"  padded  ", "padded"},
	}
	for _, c := range cases {
		if got := htmlsanitize.Text(c.in); got != c.want {
			t.Errorf("Text(%q): got %q, want %q", c.in, got, c.want)
		}
	}
}

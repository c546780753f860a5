package sanitize_test

import (
	"testing"

	"github.com/lumenlabs/profilehub/internal/app/system/sanitize"
)

func TestText_Empty(t *testing.T) {
	if got := sanitize.Text(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestText_PlainText(t *testing.T) {
	if got := sanitize.Text("Software engineer in Lisbon"); got != "Software engineer in Lisbon" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestText_RemovesScript(t *testing.T) {
	got := sanitize.Text("hello<script>alert('xss')</script>")
	if got != "hello" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestText_StripsAllMarkup(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`<b>bold</b>`, "bold"},
		{`<b onclick="alert('xss')">bold</b>`, "bold"},
		{`<img src=x onerror=alert(1)>Lisbon`, "Lisbon"},
	}
	for _, c := range cases {
		if got := sanitize.Text(c.in); got != c.want {
			t.Errorf("Text(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestText_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">me</a>`
	got := sanitize.Text(input)
	if got == input {
		t.Error("expected javascript: href to be removed")
	}
}

package render

import (
	"strings"
	"testing"
)

func TestMarkdownRendersBasics(t *testing.T) {
	out := Markdown("# Title\n\nSome **bold** text and a [link](https://example.com).")

	for _, want := range []string{"<h1", "Title</h1>", "<strong>bold</strong>", `href="https://example.com"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestMarkdownStripsScripts(t *testing.T) {
	out := Markdown("hello <script>alert(1)</script> <img src=x onerror=alert(2)>")

	if strings.Contains(out, "<script") || strings.Contains(out, "onerror") {
		t.Fatalf("unsafe html survived: %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("text lost: %q", out)
	}
}

func TestMarkdownEmpty(t *testing.T) {
	if got := Markdown(""); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

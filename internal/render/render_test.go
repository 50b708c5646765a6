package render

import (
	"strings"
	"testing"
)

func TestRenderGFM(t *testing.T) {
	r := New()
	out, err := r.Render("# Hero\n\n~~old~~ name\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{`<h1 id="hero">Hero</h1>`, "<del>old</del>", "<table>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderRawHTML(t *testing.T) {
	body := "<script>alert(1)</script>\n"

	safe, err := New().Render(body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(safe, "<script>") {
		t.Errorf("raw HTML leaked in default mode: %s", safe)
	}

	unsafe, err := New(WithUnsafeHTML()).Render(body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(unsafe, "<script>") {
		t.Errorf("raw HTML dropped in unsafe mode: %s", unsafe)
	}
}

func TestRenderHardWraps(t *testing.T) {
	body := "first line\nsecond line\n"

	soft, err := New().Render(body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(soft, "<br") {
		t.Errorf("soft wrap rendered as break: %s", soft)
	}

	hard, err := New(WithHardWraps()).Render(body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(hard, "<br") {
		t.Errorf("hard wrap missing <br>: %s", hard)
	}
}

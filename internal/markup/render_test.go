package markup

import (
	"strings"
	"testing"
)

func TestRenderEscapesHostileMarkup(t *testing.T) {
	got := Render("<script>alert(1)</script>")

	if strings.ContainsAny(got, "<>") {
		t.Errorf("Expected no raw angle brackets, got %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("Expected escaped script tag, got %q", got)
	}
}

func TestRenderEscapesAllSignificantChars(t *testing.T) {
	got := Render(`&<>"'`)
	want := "&amp;&lt;&gt;&quot;&#39;"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRenderBoldAndItalic(t *testing.T) {
	got := Render("**bold** and *italic*")
	want := "<strong>bold</strong> and <em>italic</em>"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRenderEscapesInsideEmphasis(t *testing.T) {
	got := Render("**<b>**")
	want := "<strong>&lt;b&gt;</strong>"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRenderNestedEmphasis(t *testing.T) {
	got := Render("**bold *inner* bold**")
	want := "<strong>bold <em>inner</em> bold</strong>"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRenderShortestMatchBold(t *testing.T) {
	got := Render("**a** x **b**")
	want := "<strong>a</strong> x <strong>b</strong>"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRenderOddAsterisksBestEffort(t *testing.T) {
	if got := Render("*a"); got != "*a" {
		t.Errorf("Expected unmatched delimiter kept, got %q", got)
	}
	if got := Render("a*b*c*"); got != "a<em>b</em>c*" {
		t.Errorf("Expected best-effort italic, got %q", got)
	}
}

func TestRenderLineBreaks(t *testing.T) {
	got := Render("a\r\nb\nc")
	want := "a<br>b<br>c"

	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestRenderEmptyInput(t *testing.T) {
	if got := Render(""); got != "" {
		t.Errorf("Expected empty output, got %q", got)
	}
}

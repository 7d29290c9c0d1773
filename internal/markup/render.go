// Package markup renders untrusted chat text into safe display markup
// with a minimal inline dialect: **bold**, *italic*, and line breaks.
package markup

import (
	"regexp"
	"strings"
)

// escaper neutralizes the five HTML-significant characters in a single
// pass, so already-produced entities are never re-escaped.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.+?)\*`)
)

// Render converts untrusted text into HTML-safe markup. Escaping runs
// before any emphasis substitution so injected tags cannot survive.
// Bold consumes its delimiters before italic runs, which keeps a former
// bold span from being re-split; an odd number of asterisks yields a
// best-effort result. Total over all inputs, empty in gives empty out.
func Render(s string) string {
	if s == "" {
		return ""
	}
	out := escaper.Replace(s)
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicPattern.ReplaceAllString(out, "<em>$1</em>")
	out = strings.ReplaceAll(out, "\r\n", "<br>")
	out = strings.ReplaceAll(out, "\n", "<br>")
	return out
}

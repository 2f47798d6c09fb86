package cifraclub

import (
	"regexp"
	"strings"
	"unicode"
)

// markupRules run in order over the chord sheet body
var markupRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`<span class="tablatura">([\s\S]*?)</span>`), "${1}"},
	{regexp.MustCompile(`<span class="cnt">([\s\S]*?)</span>`), "${1}"},
	{regexp.MustCompile(`<b>([^<]*)</b>`), "${1}"},
	{regexp.MustCompile(`<[^>]+>`), ""},
}

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&#x27;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
)

// DecodeEntities decodes the entities the site emits. It repeats until nothing
// changes, so double-escaped input such as "&amp;lt;" is fully decoded.
func DecodeEntities(s string) string {
	for {
		next := entityReplacer.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

// NormalizeContent turns the inner HTML of the sheet's <pre> block into plain text
func NormalizeContent(raw string) string {
	s := raw
	for _, rule := range markupRules {
		s = rule.re.ReplaceAllString(s, rule.repl)
	}
	s = DecodeEntities(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

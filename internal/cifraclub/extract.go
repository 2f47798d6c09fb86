package cifraclub

import (
	"regexp"
	"strconv"
	"strings"
)

// strategy pulls the first capture group out of a page
type strategy struct {
	name string
	re   *regexp.Regexp
}

// strategies are tried in order; the first match wins
type strategies []strategy

func (s strategies) first(page string) (value, name string, ok bool) {
	for _, st := range s {
		if m := st.re.FindStringSubmatch(page); m != nil {
			return m[1], st.name, true
		}
	}
	return "", "", false
}

func newStrategy(name, pattern string) strategy {
	return strategy{name: name, re: regexp.MustCompile(pattern)}
}

var (
	titleStrategies = strategies{
		newStrategy("h1.t1", `<h1 class="t1">([^<]+)</h1>`),
	}

	artistStrategies = strategies{
		newStrategy("h2.t3 link", `<h2 class="t3">[^>]*>([^<]+)</a></h2>`),
	}

	toneStrategies = strategies{
		newStrategy("cifra_tom id", `(?i)id="cifra_tom"[^>]*>\s*Tom:\s*<a[^>]*>([A-G][#b]?m?)</a>`),
		newStrategy("cifra_tom span", `(?i)<span[^>]*id="cifra_tom"[^>]*>Tom:\s*<a[^>]*>([A-G][#b]?m?)</a>`),
		newStrategy("cifra_tom loose", `(?i)cifra_tom[^>]*>Tom:\s*<a[^>]*>([A-G][#b]?m?)`),
	}

	capoStrategies = strategies{
		newStrategy("cifra_capo link", `id="cifra_capo"[^>]*>[\s\S]*?Capotraste na\s*<a[^>]*>(\d+)ª?\s*casa</a>`),
		newStrategy("cifra_capo text", `id="cifra_capo"[^>]*>[\s\S]*?Capotraste na\s*(\d+)ª?\s*casa`),
	}

	contentStrategies = strategies{
		newStrategy("cifra_cnt pre", `<div class="cifra_cnt[^"]*"[^>]*>[\s\S]*?<pre>([\s\S]*?)</pre>`),
	}
)

func extractTitle(page string) string {
	v, _, _ := titleStrategies.first(page)
	return strings.TrimSpace(DecodeEntities(strings.TrimSpace(v)))
}

func extractArtist(page string) string {
	v, _, _ := artistStrategies.first(page)
	return strings.TrimSpace(DecodeEntities(strings.TrimSpace(v)))
}

func extractTone(page string) string {
	v, _, _ := toneStrategies.first(page)
	return v
}

// extractCapo returns nil when the page has no capo instruction
func extractCapo(page string) *int {
	v, _, ok := capoStrategies.first(page)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func extractContent(page string) string {
	v, _, ok := contentStrategies.first(page)
	if !ok {
		return ""
	}
	return NormalizeContent(v)
}

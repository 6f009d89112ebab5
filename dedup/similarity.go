package dedup

import (
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// TitleSimilarity liefert die Ratcliff-Obershelp-Ähnlichkeit 2*M/T zweier Titel,
// verglichen Zeichen für Zeichen.
func TitleSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

// titleScanner vergleicht einen festen Titel gegen viele Kandidaten. Die Zeichenindizes
// des festen Titels werden nur einmal aufgebaut.
type titleScanner struct {
	length  int
	matcher *difflib.SequenceMatcher
}

func newTitleScanner(title string) *titleScanner {
	return &titleScanner{
		length:  utf8.RuneCountInString(title),
		matcher: difflib.NewMatcher(nil, splitRunes(title)),
	}
}

// atLeast meldet, ob candidate mindestens threshold ähnlich ist.
func (ts *titleScanner) atLeast(candidate string, threshold float64) bool {
	n := utf8.RuneCountInString(candidate)
	if lengthBound(ts.length, n) < threshold {
		return false
	}
	ts.matcher.SetSeq1(splitRunes(candidate))
	if ts.matcher.QuickRatio() < threshold {
		return false
	}
	return ts.matcher.Ratio() >= threshold
}

// lengthBound ist die obere Schranke 2*min/(la+lb) des Verhältnisses.
func lengthBound(la, lb int) float64 {
	if la+lb == 0 {
		return 1
	}
	return 2 * float64(min(la, lb)) / float64(la+lb)
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

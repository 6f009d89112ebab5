package providers

import (
	"html"
	"regexp"
	"strings"
)

var markupTag = regexp.MustCompile(`<[^>]+>`)

// StripMarkup entfernt XML/JATS-Tags, dekodiert HTML-Entities und fasst Leerraum zusammen.
func StripMarkup(s string) string {
	s = markupTag.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(html.UnescapeString(s)), " ")
}

package pubmed

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	yearRegex   = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)
	monthTokens = map[string]int{
		"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
		"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
		// Jahreszeiten in MedlineDate ("2019 Spring")
		"spring": 3, "summer": 6, "fall": 9, "autumn": 9, "winter": 12,
	}
)

// ParsePubDate wandelt ein PubDate in ein ISO-Datum (YYYY-MM-DD) und das Jahr um.
// Fehlende Monate oder Tage werden mit 01 aufgefüllt; ohne erkennbares Jahr bleiben beide leer.
func ParsePubDate(d PubDate) (date, year string) {
	year = strings.TrimSpace(d.Year)
	month := strings.TrimSpace(d.Month)
	day := strings.TrimSpace(d.Day)

	if year == "" && d.MedlineDate != "" {
		m := yearRegex.FindStringIndex(d.MedlineDate)
		if m == nil {
			return "", ""
		}
		year = d.MedlineDate[m[0]:m[1]]
		// Der erste Token nach dem Jahr ist der Monat ("2019 Jan-Feb", "2019 Dec 12-25")
		rest := strings.Fields(strings.NewReplacer("-", " ", "/", " ").Replace(d.MedlineDate[m[1]:]))
		if len(rest) > 0 {
			month = rest[0]
		}
		if len(rest) > 1 {
			if _, err := strconv.Atoi(rest[1]); err == nil {
				day = rest[1]
			}
		}
	}
	if _, err := strconv.Atoi(year); err != nil || len(year) != 4 {
		return "", ""
	}
	return fmt.Sprintf("%s-%02d-%02d", year, parseMonth(month), parseDay(day)), year
}

func parseMonth(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 1
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 1
	}
	if len(s) >= 3 {
		if n, ok := monthTokens[s[:3]]; ok {
			return n
		}
	}
	if n, ok := monthTokens[s]; ok {
		return n
	}
	return 1
}

func parseDay(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 31 {
		return 1
	}
	return n
}

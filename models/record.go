package models

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Feldnamen folgen den Zotero-Spalten, damit der Zotero-Export eine reine Projektion bleibt.
const (
	FieldKey                 = "Key"
	FieldItemType            = "Item Type"
	FieldYear                = "Publication Year"
	FieldAuthor              = "Author"
	FieldPublicationTitle    = "Publication Title"
	FieldISSN                = "ISSN"
	FieldURL                 = "Url"
	FieldAbstract            = "Abstract Note"
	FieldDate                = "Date"
	FieldPages               = "Pages"
	FieldIssue               = "Issue"
	FieldVolume              = "Volume"
	FieldJournalAbbreviation = "Journal Abbreviation"
	FieldPublisher           = "Publisher"
	FieldLanguage            = "Language"
	FieldLibraryCatalog      = "Library Catalog"
	FieldExtra               = "Extra"
	FieldType                = "Type"
	FieldCountry             = "Country"
)

// Record repräsentiert einen bibliografischen Eintrag oder eine Studie aus einer beliebigen Quelle.
type Record struct {
	Title   string            `json:"title"`
	DOI     string            `json:"doi,omitempty"`
	PMID    string            `json:"pmid,omitempty"`
	TrialID string            `json:"trial_id,omitempty"`
	Source  string            `json:"source"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Clone liefert eine tiefe Kopie, die sich keine Map mit dem Original teilt.
func (r Record) Clone() Record {
	out := r
	if r.Fields != nil {
		out.Fields = make(map[string]string, len(r.Fields))
		for k, v := range r.Fields {
			out.Fields[k] = v
		}
	}
	return out
}

// Normalize liefert eine Kopie mit bereinigten Identifikatoren und Feldern.
func (r Record) Normalize() Record {
	out := Record{
		Title:   strings.TrimSpace(r.Title),
		DOI:     NormalizeDOI(r.DOI),
		PMID:    NormalizePMID(r.PMID),
		TrialID: NormalizeTrialID(r.TrialID),
		Source:  strings.TrimSpace(r.Source),
	}
	for k, v := range r.Fields {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if out.Fields == nil {
			out.Fields = make(map[string]string, len(r.Fields))
		}
		out.Fields[k] = v
	}
	return out
}

// Field gibt den Wert eines Metadatenfeldes zurück ("" wenn nicht vorhanden).
func (r Record) Field(name string) string {
	return r.Fields[name]
}

// SetField setzt ein Metadatenfeld; leere Werte werden ignoriert.
func (r *Record) SetField(name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[name] = value
}

// NormalizedTitle ist der Vergleichsschlüssel für die unscharfe Titelsuche.
func (r Record) NormalizedTitle() string {
	return NormalizeTitle(r.Title)
}

// TitleHash ist der SHA-1 des normalisierten Titels, leer bei leerem Titel.
func (r Record) TitleHash() string {
	return TitleHash(r.Title)
}

// CanonicalID wählt doi > pmid > trial_id > Titel-Hash.
func (r Record) CanonicalID() string {
	switch {
	case r.DOI != "":
		return r.DOI
	case r.PMID != "":
		return r.PMID
	case r.TrialID != "":
		return r.TrialID
	default:
		return r.TitleHash()
	}
}

// HasIdentifier meldet, ob doi, pmid oder trial_id gesetzt sind.
func (r Record) HasIdentifier() bool {
	return r.DOI != "" || r.PMID != "" || r.TrialID != ""
}

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi.org/",
	"doi:",
}

// NormalizeDOI schreibt eine DOI klein, trimmt sie und entfernt Resolver-Präfixe.
func NormalizeDOI(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range doiPrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}
	return s
}

// NormalizePMID reduziert eine PMID auf ihre Ziffern.
func NormalizePMID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeTrialID trimmt Registernummern wie NCT01234567 und schreibt sie groß.
func NormalizeTrialID(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

var ligatures = strings.NewReplacer(
	"œ", "oe",
	"Œ", "OE",
	"æ", "ae",
	"Æ", "AE",
	"ß", "ss",
)

// NormalizeTitle dekodiert HTML-Entities, faltet Diakritika und Ligaturen, schreibt klein
// und fasst jede Folge nicht-alphanumerischer Zeichen zu einem Leerzeichen zusammen.
func NormalizeTitle(title string) string {
	s := html.UnescapeString(title)
	s = ligatures.Replace(s)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// TitleHash liefert den SHA-1 (hex) des normalisierten Titels.
func TitleHash(title string) string {
	nt := NormalizeTitle(title)
	if nt == "" {
		return ""
	}
	sum := sha1.Sum([]byte(nt))
	return hex.EncodeToString(sum[:])
}

package services

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// PICOExtraPrefix leitet die gefundenen Stichwörter im Extra-Feld ein.
const PICOExtraPrefix = "PICO_keywords_found: "

// DefaultPICOKeywords liefert die Stichwörter des Cardio-Onkologie-Protokolls.
func DefaultPICOKeywords() map[string][]string {
	return map[string][]string{
		models.PICOInterventions: {
			"dexrazoxane", "beta-blocker", "beta blocker", "ace inhibitor", "arb", "acei",
			"angiotensin receptor blocker", "angiotensin converting enzyme inhibitor",
			"arni", "valsartan", "sacubitril", "mineralocorticoid receptor antagonist",
			"spironolactone", "eplerenone", "statin",
		},
		models.PICOExposures: {
			"anthracyclin", "anthracycline", "doxorubicin", "daunorubicin", "epirubicin", "idarubicin",
			"trastuzumab", "her2", "her-2", "chemotherapy", "cytotoxic",
		},
		models.PICOComparators: {
			"placebo", "usual care", "no intervention", "standard care", "control", "comparative",
		},
		models.PICOStudyDesigns: {
			"randomized", "randomised", "randomized controlled trial", "randomised controlled trial", "rct",
			"cohort", "case-control", "case control", "observational", "prospective", "retrospective",
			"phase ii", "phase iii", "phase iv",
		},
	}
}

// LoadPICOFile liest Stichwörter aus einer YAML-Datei der Form "kategorie: [begriff, ...]".
func LoadPICOFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var keywords map[string][]string
	if err := yaml.Unmarshal(data, &keywords); err != nil {
		return nil, err
	}
	return keywords, nil
}

// PICOKeywordsFromRows gruppiert gespeicherte Stichwörter nach Kategorie.
func PICOKeywordsFromRows(rows []models.PICOKeyword) map[string][]string {
	out := map[string][]string{}
	for _, r := range rows {
		out[r.Category] = append(out[r.Category], r.Term)
	}
	return out
}

// PICOFilter prüft Titel und Abstract auf PICO-Stichwörter.
type PICOFilter struct {
	Keywords map[string][]string
	pattern  *regexp.Regexp
}

// NewPICOFilter kompiliert die Stichwörter. Ohne Stichwörter passt jeder Record.
func NewPICOFilter(keywords map[string][]string) *PICOFilter {
	f := &PICOFilter{Keywords: keywords}

	seen := map[string]bool{}
	var terms []string
	for _, list := range keywords {
		for _, t := range list {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" && !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}
	if len(terms) == 0 {
		return f
	}
	// Längere Begriffe zuerst, damit "randomized controlled trial" vor "randomized" greift.
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	f.pattern = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)(?:e?s)?\b`)
	return f
}

// Match liefert die gefundenen Stichwörter (klein, sortiert, ohne Duplikate).
func (f *PICOFilter) Match(rec models.Record) []string {
	if f == nil || f.pattern == nil {
		return nil
	}
	text := rec.Title + "\n" + rec.Field(models.FieldAbstract)
	found := map[string]bool{}
	for _, m := range f.pattern.FindAllStringSubmatch(text, -1) {
		found[strings.ToLower(m[1])] = true
	}
	out := make([]string, 0, len(found))
	for t := range found {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Enabled meldet, ob der Filter überhaupt Stichwörter hat.
func (f *PICOFilter) Enabled() bool {
	return f != nil && f.pattern != nil
}

// Tag prüft rec und hängt die Treffer an Extra an. false heißt: kein Stichwort gefunden.
func (f *PICOFilter) Tag(rec *models.Record) bool {
	if !f.Enabled() {
		return true
	}
	terms := f.Match(*rec)
	if len(terms) == 0 {
		return false
	}
	tag := PICOExtraPrefix + strings.Join(terms, ", ")
	if extra := rec.Field(models.FieldExtra); extra != "" {
		tag = extra + " | " + tag
	}
	rec.SetField(models.FieldExtra, tag)
	return true
}

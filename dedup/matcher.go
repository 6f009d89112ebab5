// Package dedup enthält den Kern der Deduplizierung: Matcher, Merger und RecordStore.
package dedup

import (
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// DefaultThreshold ist die Mindestähnlichkeit normalisierter Titel für einen Titel-Treffer.
const DefaultThreshold = 0.92

// Rule benennt die Regel, über die ein Treffer gefunden wurde.
type Rule int

const (
	RuleNone Rule = iota
	RuleDOI
	RulePMID
	RuleTrialID
	RuleTitle
)

func (r Rule) String() string {
	switch r {
	case RuleDOI:
		return "doi"
	case RulePMID:
		return "pmid"
	case RuleTrialID:
		return "trial_id"
	case RuleTitle:
		return "title"
	default:
		return "none"
	}
}

// Index ist die Lesesicht des Matchers auf die gespeicherten Records.
type Index interface {
	HandleByDOI(doi string) (Handle, bool)
	HandleByPMID(pmid string) (Handle, bool)
	HandleByTrialID(trialID string) (Handle, bool)
	// ScanTitles ruft fn in Einfügereihenfolge für jeden nicht-leeren normalisierten Titel auf,
	// bis fn false liefert.
	ScanTitles(fn func(h Handle, normalizedTitle string) bool)
}

// Matcher entscheidet, ob ein eingehender Record bereits gespeichert ist.
type Matcher struct {
	Threshold float64
}

// NewMatcher erstellt einen Matcher; Werte außerhalb (0, 1] fallen auf DefaultThreshold zurück.
func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold}
}

// FindMatch prüft doi, pmid, trial_id und zuletzt den ersten ähnlichen Titel in Einfügereihenfolge.
func (m Matcher) FindMatch(incoming models.Record, ix Index) (Handle, Rule, bool) {
	if doi := models.NormalizeDOI(incoming.DOI); doi != "" {
		if h, ok := ix.HandleByDOI(doi); ok {
			return h, RuleDOI, true
		}
	}
	if pmid := models.NormalizePMID(incoming.PMID); pmid != "" {
		if h, ok := ix.HandleByPMID(pmid); ok {
			return h, RulePMID, true
		}
	}
	if trialID := models.NormalizeTrialID(incoming.TrialID); trialID != "" {
		if h, ok := ix.HandleByTrialID(trialID); ok {
			return h, RuleTrialID, true
		}
	}

	title := incoming.NormalizedTitle()
	if title == "" {
		return 0, RuleNone, false
	}
	threshold := m.Threshold
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}

	scanner := newTitleScanner(title)
	found, ok := Handle(0), false
	ix.ScanTitles(func(h Handle, candidate string) bool {
		if candidate == "" {
			return true
		}
		if candidate == title || scanner.atLeast(candidate, threshold) {
			found, ok = h, true
			return false
		}
		return true
	})
	if !ok {
		return 0, RuleNone, false
	}
	return found, RuleTitle, true
}

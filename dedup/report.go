package dedup

import "fmt"

// EntryKind unterscheidet Einträge im Merge-Report.
type EntryKind string

const (
	// EntryMerged protokolliert jedes Zusammenführen.
	EntryMerged EntryKind = "merged"
	// EntrySharedIdentifier: ein Identifikator gehörte bereits einem anderen Record.
	EntrySharedIdentifier EntryKind = "shared_identifier"
	// EntrySupersededIdentifier: ein gespeicherter Identifikator wurde durch einen neuen ersetzt.
	EntrySupersededIdentifier EntryKind = "superseded_identifier"
)

// ReportEntry ist eine Zeile des Merge-Reports.
type ReportEntry struct {
	Kind       EntryKind `json:"kind"`
	Handle     Handle    `json:"handle"`
	Identifier string    `json:"identifier,omitempty"`
	Rule       string    `json:"rule,omitempty"`
	Source     string    `json:"source,omitempty"`
	URL        string    `json:"url,omitempty"`

	// Nur für Konflikte
	Field       string `json:"field,omitempty"`
	Value       string `json:"value,omitempty"`
	Other       Handle `json:"other,omitempty"`
	Replacement string `json:"replacement,omitempty"`
}

// IsConflict meldet, ob der Eintrag einen Identifikator-Konflikt beschreibt.
func (e ReportEntry) IsConflict() bool {
	return e.Kind == EntrySharedIdentifier || e.Kind == EntrySupersededIdentifier
}

func (e ReportEntry) String() string {
	switch e.Kind {
	case EntryMerged:
		from := e.URL
		if from == "" {
			from = e.Source
		}
		return fmt.Sprintf("MERGED: %s from %s (matched by %s)", e.Identifier, from, e.Rule)
	case EntrySharedIdentifier:
		return fmt.Sprintf("CONFLICT: %s %s claimed by #%d and #%d; kept #%d", e.Field, e.Value, e.Other, e.Handle, e.Handle)
	case EntrySupersededIdentifier:
		return fmt.Sprintf("SUPERSEDED: %s %s on #%d replaced by %s", e.Field, e.Value, e.Handle, e.Replacement)
	default:
		return string(e.Kind)
	}
}

package dedup

import (
	"sort"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// Spezielle Quellfelder eines Schemas; alle anderen Namen lesen aus Record.Fields.
const (
	FieldTitle       = "title"
	FieldDOI         = "doi"
	FieldPMID        = "pmid"
	FieldTrialID     = "trial_id"
	FieldSource      = "source"
	FieldCanonicalID = "canonical_id"
)

// Column bildet eine Ausgabespalte auf ein Record-Feld ab. Ein leeres Field ergibt immer "".
type Column struct {
	Name  string `json:"name" yaml:"name"`
	Field string `json:"field" yaml:"field"`
}

// Schema ist eine geordnete Liste von Ausgabespalten.
type Schema []Column

// Row ist eine flache Exportzeile.
type Row map[string]string

// SchemaFromMap baut ein Schema aus einer ungeordneten Zuordnung; Spalten werden nach Namen sortiert.
func SchemaFromMap(m map[string]string) Schema {
	s := make(Schema, 0, len(m))
	for name, field := range m {
		s = append(s, Column{Name: name, Field: field})
	}
	sort.Slice(s, func(i, j int) bool { return s[i].Name < s[j].Name })
	return s
}

// Header liefert die Spaltennamen in Schema-Reihenfolge.
func (s Schema) Header() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Name
	}
	return out
}

// Project formt einen Record in eine Zeile um. Jede Spalte ist vorhanden, notfalls leer.
func (s Schema) Project(r models.Record) Row {
	row := make(Row, len(s))
	for _, c := range s {
		row[c.Name] = fieldValue(r, c.Field)
	}
	return row
}

// Values liefert die Werte einer Zeile in der Reihenfolge von header.
func (r Row) Values(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = r[h]
	}
	return out
}

func fieldValue(r models.Record, field string) string {
	switch field {
	case "":
		return ""
	case FieldTitle:
		return r.Title
	case FieldDOI:
		return r.DOI
	case FieldPMID:
		return r.PMID
	case FieldTrialID:
		return r.TrialID
	case FieldSource:
		return r.Source
	case FieldCanonicalID:
		return r.CanonicalID()
	default:
		return r.Field(field)
	}
}

// Package export schreibt den Datenbestand in Ausgabeformate (CSV, JSON, XLSX, Zotero, Referenzliste).
package export

import (
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/dedup"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// ZoteroHeader sind die Spalten des Zotero-CSV-Imports in Import-Reihenfolge.
var ZoteroHeader = []string{
	"Key", "Item Type", "Publication Year", "Author", "Title", "Publication Title",
	"ISBN", "ISSN", "DOI", "Url", "Abstract Note", "Date", "Date Added", "Date Modified",
	"Access Date", "Pages", "Num Pages", "Issue", "Volume", "Number Of Volumes",
	"Journal Abbreviation", "Short Title", "Series", "Series Number", "Series Text",
	"Series Title", "Publisher", "Place", "Language", "Rights", "Type", "Archive",
	"Archive Location", "Library Catalog", "Call Number", "Extra", "Meeting Name",
	"Conference Name", "Country",
}

// zoteroSpecial sind Spalten, die nicht gleichnamig aus Record.Fields kommen.
var zoteroSpecial = map[string]string{
	models.FieldKey: dedup.FieldCanonicalID,
	"Title":         dedup.FieldTitle,
	"DOI":           dedup.FieldDOI,
	"Archive":       dedup.FieldSource,
	"Call Number":   dedup.FieldTrialID,
}

// ZoteroSchema bildet die Zotero-Spalten auf die Record-Felder ab.
func ZoteroSchema() dedup.Schema {
	s := make(dedup.Schema, 0, len(ZoteroHeader))
	for _, name := range ZoteroHeader {
		field, ok := zoteroSpecial[name]
		if !ok {
			field = name
		}
		s = append(s, dedup.Column{Name: name, Field: field})
	}
	return s
}

// DefaultSchema ist das kompakte Schema für records.csv und die API.
func DefaultSchema() dedup.Schema {
	return dedup.Schema{
		{Name: "canonical_id", Field: dedup.FieldCanonicalID},
		{Name: "title", Field: dedup.FieldTitle},
		{Name: "doi", Field: dedup.FieldDOI},
		{Name: "pmid", Field: dedup.FieldPMID},
		{Name: "trial_id", Field: dedup.FieldTrialID},
		{Name: "source", Field: dedup.FieldSource},
		{Name: "authors", Field: models.FieldAuthor},
		{Name: "year", Field: models.FieldYear},
		{Name: "journal", Field: models.FieldPublicationTitle},
		{Name: "url", Field: models.FieldURL},
		{Name: "abstract", Field: models.FieldAbstract},
		{Name: "extra", Field: models.FieldExtra},
	}
}

// SchemaByName liefert ein benanntes Schema ("default" oder "zotero").
func SchemaByName(name string) (dedup.Schema, bool) {
	switch name {
	case "", "default":
		return DefaultSchema(), true
	case "zotero":
		return ZoteroSchema(), true
	default:
		return nil, false
	}
}

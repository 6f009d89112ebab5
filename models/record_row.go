package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// RecordRow ist die persistierte Form eines Records in PostgreSQL.
type RecordRow struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Position in Einfügereihenfolge, stabil über die Lebensdauer des Stores
	Position int `json:"position" gorm:"uniqueIndex;not null"`

	CanonicalID     string `json:"canonical_id" gorm:"index;size:512"`
	DOI             string `json:"doi,omitempty" gorm:"column:doi;index;size:512;default:''"`
	PMID            string `json:"pmid,omitempty" gorm:"column:pmid;index;size:64;default:''"`
	TrialID         string `json:"trial_id,omitempty" gorm:"column:trial_id;index;size:64;default:''"`
	Title           string `json:"title" gorm:"type:text"`
	NormalizedTitle string `json:"normalized_title" gorm:"type:text"`
	Source          string `json:"source"`

	Fields datatypes.JSONMap `json:"fields" gorm:"type:jsonb"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (RecordRow) TableName() string {
	return "records"
}

// NewRecordRow wandelt einen Record an Position pos in seine Tabellenform um.
func NewRecordRow(pos int, r Record) RecordRow {
	fields := make(datatypes.JSONMap, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return RecordRow{
		Position:        pos,
		CanonicalID:     r.CanonicalID(),
		DOI:             r.DOI,
		PMID:            r.PMID,
		TrialID:         r.TrialID,
		Title:           r.Title,
		NormalizedTitle: r.NormalizedTitle(),
		Source:          r.Source,
		Fields:          fields,
	}
}

// Record baut aus der Tabellenzeile wieder einen Record.
func (row RecordRow) Record() Record {
	r := Record{
		Title:   row.Title,
		DOI:     row.DOI,
		PMID:    row.PMID,
		TrialID: row.TrialID,
		Source:  row.Source,
	}
	for k, v := range row.Fields {
		switch t := v.(type) {
		case string:
			r.SetField(k, t)
		case nil:
		default:
			r.SetField(k, fmt.Sprint(t))
		}
	}
	return r
}

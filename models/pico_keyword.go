package models

// PICO-Kategorien für den Relevanzfilter.
const (
	PICOInterventions = "interventions"
	PICOExposures     = "exposures"
	PICOComparators   = "comparators"
	PICOStudyDesigns  = "study_designs"
)

// PICOKeyword ist ein einzelnes Stichwort des PICO-Relevanzfilters.
type PICOKeyword struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Category string `json:"category" gorm:"index;not null"` // z.B. "interventions"
	Term     string `json:"term" gorm:"uniqueIndex;not null"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (PICOKeyword) TableName() string {
	return "pico_keywords"
}

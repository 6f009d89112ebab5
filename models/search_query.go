package models

// SearchQuery repräsentiert einen Suchbegriff, der bei jedem Harvest an alle Provider geht.
type SearchQuery struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Term  string `json:"term" gorm:"uniqueIndex;not null"` // z.B. "dexrazoxane anthracycline cardiotoxicity"
	Label string `json:"label"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (SearchQuery) TableName() string {
	return "search_queries"
}

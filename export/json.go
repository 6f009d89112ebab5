package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// WriteJSON schreibt die Records als eingerücktes JSON-Array.
func WriteJSON(w io.Writer, recs []models.Record) error {
	if recs == nil {
		recs = []models.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(recs), "failed to encode records")
}

// ReadJSON liest ein mit WriteJSON geschriebenes Array.
func ReadJSON(r io.Reader) ([]models.Record, error) {
	var recs []models.Record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, eris.Wrap(err, "failed to decode records")
	}
	return recs, nil
}

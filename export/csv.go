package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/dedup"
)

// WriteCSV schreibt Kopfzeile und Zeilen in Schema-Reihenfolge.
func WriteCSV(w io.Writer, schema dedup.Schema, rows []dedup.Row) error {
	header := schema.Header()
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "failed to write csv header")
	}
	for i, row := range rows {
		if err := cw.Write(row.Values(header)); err != nil {
			return eris.Wrapf(err, "failed to write csv row %d", i)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "failed to flush csv")
}

package export

import (
	"encoding/csv"
	"io"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// ErrColumnNotFound wird geliefert, wenn die Titelspalte in der CSV fehlt.
var ErrColumnNotFound = eris.New("column not found")

// DuplicateSet sind alle Zeilen einer CSV, deren Titel mehr als einmal vorkommt.
type DuplicateSet struct {
	Header []string
	Rows   [][]string
	// Groups ist die Anzahl verschiedener doppelter Titel.
	Groups int
}

// FindDuplicateTitles liest eine CSV und sammelt alle Zeilen mit mehrfach vorkommendem Wert
// in column, sortiert nach diesem Wert. Mit normalized wird über NormalizeTitle verglichen.
// Leere Titel zählen nicht als Duplikat.
func FindDuplicateTitles(r io.Reader, column string, normalized bool) (*DuplicateSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, eris.New("input csv is empty")
	}
	if err != nil {
		return nil, eris.Wrap(err, "failed to read csv header")
	}
	col := -1
	for i, h := range header {
		if h == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, eris.Wrapf(ErrColumnNotFound, "column %q (available: %v)", column, header)
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "failed to read csv rows")
	}

	keyOf := func(row []string) string {
		if col >= len(row) {
			return ""
		}
		if normalized {
			return models.NormalizeTitle(row[col])
		}
		return row[col]
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		if k := keyOf(row); k != "" {
			counts[k]++
		}
	}

	set := &DuplicateSet{Header: header}
	for _, row := range rows {
		if k := keyOf(row); k != "" && counts[k] > 1 {
			set.Rows = append(set.Rows, row)
		}
	}
	for _, n := range counts {
		if n > 1 {
			set.Groups++
		}
	}
	sort.SliceStable(set.Rows, func(i, j int) bool {
		return keyOf(set.Rows[i]) < keyOf(set.Rows[j])
	})
	return set, nil
}

// Empty meldet, ob keine Duplikate gefunden wurden.
func (d *DuplicateSet) Empty() bool {
	return len(d.Rows) == 0
}

// WriteCSV schreibt die Duplikate mit der ursprünglichen Kopfzeile.
func (d *DuplicateSet) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Header); err != nil {
		return eris.Wrap(err, "failed to write csv header")
	}
	if err := cw.WriteAll(d.Rows); err != nil {
		return eris.Wrap(err, "failed to write duplicate rows")
	}
	return nil
}

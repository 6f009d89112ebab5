package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/dedup"
)

// SheetName ist der Name des Arbeitsblatts im XLSX-Export.
const SheetName = "Records"

// WriteXLSX schreibt die Zeilen als Arbeitsmappe mit einem Blatt.
func WriteXLSX(w io.Writer, schema dedup.Schema, rows []dedup.Row) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "failed to add sheet")
	}

	header := schema.Header()
	addRow(sheet, header)
	for _, row := range rows {
		addRow(sheet, row.Values(header))
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "failed to write xlsx")
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values []string) {
	r := sheet.AddRow()
	for _, v := range values {
		r.AddCell().SetString(v)
	}
}

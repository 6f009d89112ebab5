package export

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/dedup"
)

// Dateinamen eines Export-Bundles.
const (
	RecordsJSONFile   = "records.json"
	RecordsCSVFile    = "records.csv"
	ZoteroCSVFile     = "zotero.csv"
	RecordsXLSXFile   = "records.xlsx"
	MergeReportFile   = "merge_report.txt"
	ReferencesTxtFile = "references.txt"
)

// WriteBundle schreibt alle Exportformate des Bestands nach dir und liefert die Dateipfade.
func WriteBundle(dir string, store *dedup.RecordStore) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "failed to create export dir %s", dir)
	}

	recs := store.All()
	def := DefaultSchema()
	zot := ZoteroSchema()

	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{RecordsJSONFile, func(w io.Writer) error { return WriteJSON(w, recs) }},
		{RecordsCSVFile, func(w io.Writer) error { return WriteCSV(w, def, store.Export(def)) }},
		{ZoteroCSVFile, func(w io.Writer) error { return WriteCSV(w, zot, store.Export(zot)) }},
		{RecordsXLSXFile, func(w io.Writer) error { return WriteXLSX(w, def, store.Export(def)) }},
		{MergeReportFile, func(w io.Writer) error { return WriteMergeReport(w, store.Report()) }},
		{ReferencesTxtFile, func(w io.Writer) error { return WriteReferences(w, recs) }},
	}

	paths := make([]string, 0, len(writers))
	for _, wr := range writers {
		path := filepath.Join(dir, wr.name)
		if err := writeFile(path, wr.write); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "failed to create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "failed to close %s", path)
		}
	}()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		return eris.Wrapf(err, "failed to write %s", path)
	}
	return eris.Wrapf(bw.Flush(), "failed to flush %s", path)
}

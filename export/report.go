package export

import (
	"bufio"
	"io"

	"github.com/rotisserie/eris"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/dedup"
)

// WriteMergeReport schreibt den Merge-Report als Text, eine Zeile pro Eintrag.
func WriteMergeReport(w io.Writer, entries []dedup.ReportEntry) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("Merge Report:\n")
	for _, e := range entries {
		bw.WriteString(e.String())
		bw.WriteByte('\n')
	}
	return eris.Wrap(bw.Flush(), "failed to write merge report")
}

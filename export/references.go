package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/dedup"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// maxReferenceAuthors begrenzt die Autorenliste, danach folgt "et al.".
const maxReferenceAuthors = 6

// FormatReference rendert einen Record als kompakte Literaturangabe.
func FormatReference(r models.Record) string {
	names := dedup.SplitAuthors(r.Field(models.FieldAuthor))
	if len(names) > maxReferenceAuthors {
		names = append(names[:maxReferenceAuthors:maxReferenceAuthors], "et al.")
	}
	authors := strings.Join(names, "; ")
	if authors == "" {
		authors = "Unknown Authors"
	}
	year := r.Field(models.FieldYear)
	if year == "" {
		year = "n.d."
	}
	title := strings.TrimSuffix(r.Title, ".")
	if title == "" {
		title = "Untitled"
	}

	var tail []string
	if r.DOI != "" {
		tail = append(tail, "doi:"+r.DOI)
	}
	if r.PMID != "" {
		tail = append(tail, "pmid:"+r.PMID)
	}
	if r.TrialID != "" {
		tail = append(tail, r.TrialID)
	}
	tailStr := ""
	if len(tail) > 0 {
		tailStr = " " + strings.Join(tail, " ")
	}

	if journal := r.Field(models.FieldPublicationTitle); journal != "" {
		return fmt.Sprintf("%s (%s). %s. %s.%s", authors, year, title, journal, tailStr)
	}
	return fmt.Sprintf("%s (%s). %s.%s", authors, year, title, tailStr)
}

// WriteReferences schreibt eine nummerierte Referenzliste in Bestandsreihenfolge.
func WriteReferences(w io.Writer, recs []models.Record) error {
	bw := bufio.NewWriter(w)
	for i, r := range recs {
		fmt.Fprintf(bw, "[%d] %s\n", i+1, FormatReference(r))
	}
	return eris.Wrap(bw.Flush(), "failed to write references")
}

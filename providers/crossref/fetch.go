package crossref

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers"
)

const maxRows = 1000

// Fetcher implementiert das Provider-Interface für CrossRef.
type Fetcher struct {
	Config *config.Config
	Client *providers.Client
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen CrossRef-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	client := providers.NewClient(providers.ClientOptions{
		Interval:      100 * time.Millisecond,
		MaxAttempts:   cfg.HTTPMaxRetries,
		RespectRobots: cfg.RespectRobots,
	}, logger)
	return &Fetcher{Config: cfg, Client: client, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "crossref"
}

// Search führt die Suche auf CrossRef aus und blättert per offset bis MaxResultsPerSource.
func (f *Fetcher) Search(ctx context.Context, term string) ([]*models.Record, error) {
	log := f.Logger.With(zap.String("term", term))
	log.Info("Starte Suche auf CrossRef.")

	limit := f.Config.MaxResultsPerSource
	if limit <= 0 {
		limit = 100
	}

	var records []*models.Record
	for offset := 0; len(records) < limit; {
		rows := min(limit-len(records), maxRows)
		var resp WorksResponse
		if err := f.Client.GetJSON(ctx, f.buildURL(term, rows, offset), &resp); err != nil {
			return records, fmt.Errorf("crossref works: %w", err)
		}
		items := resp.Message.Items
		for i := range items {
			records = append(records, mapWorkToRecord(&items[i]))
		}
		offset += len(items)
		if len(items) < rows || offset >= resp.Message.TotalResults {
			break
		}
	}

	log.Info("Suche auf CrossRef abgeschlossen", zap.Int("found_records", len(records)))
	return records, nil
}

func (f *Fetcher) buildURL(term string, rows, offset int) string {
	q := url.Values{}
	q.Set("query", term)
	q.Set("rows", strconv.Itoa(rows))
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	var filters []string
	if f.Config.FromYear > 0 {
		filters = append(filters, fmt.Sprintf("from-pub-date:%d", f.Config.FromYear))
	}
	if f.Config.ToYear > 0 {
		filters = append(filters, fmt.Sprintf("until-pub-date:%d", f.Config.ToYear))
	}
	if len(filters) > 0 {
		q.Set("filter", strings.Join(filters, ","))
	}
	if f.Config.CrossRefMailto != "" {
		q.Set("mailto", f.Config.CrossRefMailto)
	}
	return f.Config.CrossRefBaseURL + "/works?" + q.Encode()
}

// mapWorkToRecord konvertiert ein CrossRef-Werk in einen Record.
func mapWorkToRecord(w *Work) *models.Record {
	rec := &models.Record{
		Title:  providers.StripMarkup(first(w.Title)),
		DOI:    w.DOI,
		Source: "crossref",
	}

	var authors []string
	for _, a := range w.Author {
		switch {
		case a.Family != "" && a.Given != "":
			authors = append(authors, a.Family+", "+a.Given)
		case a.Family != "":
			authors = append(authors, a.Family)
		case a.Name != "":
			authors = append(authors, a.Name)
		}
	}

	date := w.Issued
	if w.PublishedPrint != nil && len(w.PublishedPrint.DateParts) > 0 {
		date = *w.PublishedPrint
	}
	iso, year := date.ISO()

	rec.SetField(models.FieldItemType, itemType(w.Type))
	rec.SetField(models.FieldAuthor, strings.Join(authors, "; "))
	rec.SetField(models.FieldPublicationTitle, first(w.ContainerTitle))
	rec.SetField(models.FieldJournalAbbreviation, first(w.ShortContainer))
	rec.SetField(models.FieldISSN, strings.Join(w.ISSN, ", "))
	rec.SetField(models.FieldVolume, w.Volume)
	rec.SetField(models.FieldIssue, w.Issue)
	rec.SetField(models.FieldPages, w.Page)
	rec.SetField(models.FieldPublisher, w.Publisher)
	rec.SetField(models.FieldLanguage, w.Language)
	rec.SetField(models.FieldURL, w.URL)
	rec.SetField(models.FieldAbstract, providers.StripMarkup(w.Abstract))
	rec.SetField(models.FieldDate, iso)
	rec.SetField(models.FieldYear, year)
	rec.SetField(models.FieldLibraryCatalog, "Crossref")
	return rec
}

// ISO liefert das Datum als YYYY-MM-DD (fehlende Teile = 01) und das Jahr.
func (d DateParts) ISO() (date, year string) {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0] == nil {
		return "", ""
	}
	parts := [3]int{*d.DateParts[0][0], 1, 1}
	for i := 1; i < 3 && i < len(d.DateParts[0]); i++ {
		if p := d.DateParts[0][i]; p != nil {
			parts[i] = *p
		}
	}
	return fmt.Sprintf("%04d-%02d-%02d", parts[0], parts[1], parts[2]), strconv.Itoa(parts[0])
}

func itemType(crossrefType string) string {
	switch crossrefType {
	case "journal-article", "":
		return "journalArticle"
	case "book":
		return "book"
	case "book-chapter":
		return "bookSection"
	case "proceedings-article":
		return "conferencePaper"
	case "posted-content":
		return "preprint"
	default:
		return "document"
	}
}

package europepmc

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

const maxPageSize = 1000

// Fetcher implementiert das Provider-Interface für Europe PMC.
type Fetcher struct {
	Config *config.Config
	Client *providers.Client
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Europe PMC Fetcher.
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
	return "europepmc"
}

// Search führt die Suche auf Europe PMC aus und folgt dem cursorMark.
func (f *Fetcher) Search(ctx context.Context, term string) ([]*models.Record, error) {
	log := f.Logger.With(zap.String("term", term))
	log.Info("Starte Suche auf Europe PMC.")

	limit := f.Config.MaxResultsPerSource
	if limit <= 0 {
		limit = 100
	}

	var records []*models.Record
	cursor := "*"
	for len(records) < limit {
		var resp SearchResponse
		if err := f.Client.GetJSON(ctx, f.buildURL(term, min(limit-len(records), maxPageSize), cursor), &resp); err != nil {
			return records, fmt.Errorf("europepmc search: %w", err)
		}
		results := resp.ResultList.Result
		for i := range results {
			records = append(records, mapArticleToRecord(&results[i]))
		}
		if len(results) == 0 || resp.NextCursorMark == "" || resp.NextCursorMark == cursor {
			break
		}
		cursor = resp.NextCursorMark
	}
	if len(records) > limit {
		records = records[:limit]
	}

	log.Info("Suche auf Europe PMC abgeschlossen", zap.Int("found_records", len(records)))
	return records, nil
}

func (f *Fetcher) buildURL(term string, pageSize int, cursor string) string {
	query := term
	if f.Config.FromYear > 0 || f.Config.ToYear > 0 {
		from, to := 1800, 3000
		if f.Config.FromYear > 0 {
			from = f.Config.FromYear
		}
		if f.Config.ToYear > 0 {
			to = f.Config.ToYear
		}
		query = fmt.Sprintf("(%s) AND PUB_YEAR:[%d TO %d]", term, from, to)
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("format", "json")
	q.Set("resultType", "core")
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("cursorMark", cursor)
	return f.Config.EuropePMCBaseURL + "/search?" + q.Encode()
}

// mapArticleToRecord konvertiert ein Europe PMC Article-Objekt in einen Record.
func mapArticleToRecord(article *Article) *models.Record {
	rec := &models.Record{
		Title:  strings.TrimSpace(article.Title),
		PMID:   article.PMID,
		DOI:    article.DOI,
		Source: "europepmc",
	}

	pubType := "Journal Article"
	for _, t := range article.PubTypeList.PubType {
		if strings.EqualFold(t, "preprint") {
			pubType = "Preprint"
			break
		}
	}

	// AuthorString ist "Smith J, Doe A." und wird auf das Semikolon-Format gebracht.
	authors := strings.TrimSuffix(strings.TrimSpace(article.AuthorString), ".")
	authors = strings.ReplaceAll(authors, ", ", "; ")

	rec.SetField(models.FieldItemType, "journalArticle")
	rec.SetField(models.FieldAuthor, authors)
	rec.SetField(models.FieldPublicationTitle, article.JournalTitle)
	rec.SetField(models.FieldVolume, article.JournalVolume)
	rec.SetField(models.FieldIssue, article.Issue)
	rec.SetField(models.FieldPages, article.PageInfo)
	rec.SetField(models.FieldAbstract, providers.StripMarkup(article.AbstractText))
	rec.SetField(models.FieldDate, article.FirstPublicationDate)
	rec.SetField(models.FieldYear, article.PubYear)
	rec.SetField(models.FieldLanguage, article.Language)
	rec.SetField(models.FieldType, pubType)
	rec.SetField(models.FieldLibraryCatalog, "Europe PMC")
	if article.PMID != "" {
		rec.SetField(models.FieldURL, fmt.Sprintf("https://europepmc.org/article/MED/%s", article.PMID))
	}
	if article.PMCID != "" {
		rec.SetField(models.FieldExtra, "PMCID: "+article.PMCID)
	}

	for _, u := range article.FullTextURLList.FullTextURL {
		if u.DocumentStyle == "pdf" && u.AvailabilityCode == "OA" && rec.Field(models.FieldURL) == "" {
			rec.SetField(models.FieldURL, u.URL)
			break
		}
	}
	return rec
}

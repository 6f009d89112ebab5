package pubmed

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

// NCBI erlaubt 3 Anfragen/s ohne und 10 Anfragen/s mit API-Key.
const (
	intervalAnonymous = 340 * time.Millisecond
	intervalWithKey   = 120 * time.Millisecond
)

// Fetcher ist eine Struktur, die die Logik zur Interaktion mit PubMed kapselt.
type Fetcher struct {
	Config *config.Config
	Client *providers.Client
	Logger *zap.Logger
}

// NewFetcher erstellt eine neue Instanz des PubMed-Fetchers.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	interval := intervalAnonymous
	if cfg.PubMedAPIKey != "" {
		interval = intervalWithKey
	}
	client := providers.NewClient(providers.ClientOptions{
		Interval:    interval,
		MaxAttempts: cfg.HTTPMaxRetries,
	}, logger)
	return &Fetcher{Config: cfg, Client: client, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "pubmed"
}

// Search führt eine vollständige Suche auf PubMed durch: holt IDs und dann die Details in Batches.
func (f *Fetcher) Search(ctx context.Context, term string) ([]*models.Record, error) {
	ids, err := f.searchIDs(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("pubmed esearch: %w", err)
	}

	batch := f.batchSize()
	records := make([]*models.Record, 0, len(ids))
	for start := 0; start < len(ids); start += batch {
		end := min(start+batch, len(ids))
		recs, err := f.fetchBatch(ctx, ids[start:end])
		if err != nil {
			return records, fmt.Errorf("pubmed efetch: %w", err)
		}
		records = append(records, recs...)
	}
	f.Logger.Info("PubMed-Suche abgeschlossen",
		zap.String("term", term),
		zap.Int("ids", len(ids)),
		zap.Int("records", len(records)))
	return records, nil
}

// searchIDs führt eine paginierte ESearch-Abfrage durch und gibt höchstens MaxResultsPerSource PMIDs zurück.
func (f *Fetcher) searchIDs(ctx context.Context, term string) ([]string, error) {
	log := f.Logger.With(zap.String("term", term))
	log.Info("Starte PubMed ESearch für IDs.")

	limit := f.Config.MaxResultsPerSource
	if limit <= 0 {
		limit = 100
	}
	page := min(limit, f.batchSize())

	var allIDs []string
	for offset := 0; len(allIDs) < limit; offset += page {
		searchURL := f.buildEsearchURL(term, min(page, limit-len(allIDs)), offset)
		log.Debug("Rufe ESearch-URL auf", zap.Int("offset", offset))

		var esearchResp ESearchResponse
		if err := f.Client.GetJSON(ctx, searchURL, &esearchResp); err != nil {
			return nil, err
		}

		ids := esearchResp.ESearchResult.IdList
		if len(ids) == 0 {
			break
		}
		allIDs = append(allIDs, ids...)

		total, _ := strconv.Atoi(esearchResp.ESearchResult.Count)
		if len(ids) < page || (total > 0 && offset+len(ids) >= total) {
			break
		}
	}
	if len(allIDs) > limit {
		allIDs = allIDs[:limit]
	}
	log.Info("PubMed ESearch abgeschlossen", zap.Int("total_ids", len(allIDs)))
	return allIDs, nil
}

// fetchBatch holt Metadaten für mehrere PMIDs mit einer EFetch-Anfrage.
func (f *Fetcher) fetchBatch(ctx context.Context, pmids []string) ([]*models.Record, error) {
	q := f.baseParams()
	q.Set("id", strings.Join(pmids, ","))
	q.Set("retmode", "xml")
	efetchURL := f.Config.PubMedBaseURL + "/efetch.fcgi?" + q.Encode()
	f.Logger.Debug("Rufe EFetch auf", zap.Int("ids", len(pmids)))

	var articleSet PubmedArticleSet
	if err := f.Client.GetXML(ctx, efetchURL, &articleSet); err != nil {
		return nil, err
	}

	records := make([]*models.Record, 0, len(articleSet.PubmedArticle))
	for i := range articleSet.PubmedArticle {
		records = append(records, mapArticleToRecord(&articleSet.PubmedArticle[i]))
	}
	return records, nil
}

// buildEsearchURL baut die URL für eine ESearch-Anfrage.
func (f *Fetcher) buildEsearchURL(term string, retmax, retstart int) string {
	q := f.baseParams()
	q.Set("term", term)
	q.Set("retmode", "json")
	q.Set("retmax", strconv.Itoa(retmax))
	q.Set("retstart", strconv.Itoa(retstart))
	if f.Config.FromYear > 0 || f.Config.ToYear > 0 {
		from, to := "1800", "3000"
		if f.Config.FromYear > 0 {
			from = strconv.Itoa(f.Config.FromYear)
		}
		if f.Config.ToYear > 0 {
			to = strconv.Itoa(f.Config.ToYear)
		}
		q.Set("datetype", "pdat")
		q.Set("mindate", from)
		q.Set("maxdate", to)
	}
	return f.Config.PubMedBaseURL + "/esearch.fcgi?" + q.Encode()
}

func (f *Fetcher) baseParams() url.Values {
	q := url.Values{}
	q.Set("db", "pubmed")
	if f.Config.PubMedAPIKey != "" {
		q.Set("api_key", f.Config.PubMedAPIKey)
	}
	if f.Config.PubMedEmail != "" {
		q.Set("email", f.Config.PubMedEmail)
	}
	if f.Config.PubMedTool != "" {
		q.Set("tool", f.Config.PubMedTool)
	}
	return q
}

func (f *Fetcher) batchSize() int {
	if f.Config.PubMedBatchSize > 0 {
		return f.Config.PubMedBatchSize
	}
	return 200
}

// mapArticleToRecord wandelt ein XML-Article-Objekt in einen Record um.
func mapArticleToRecord(article *PubmedArticle) *models.Record {
	mc := &article.MedlineCitation
	a := &mc.Article

	rec := &models.Record{
		Title:  a.Title.Text(),
		PMID:   strings.TrimSpace(mc.PMID),
		DOI:    articleDOI(article),
		Source: "pubmed",
	}

	var authors []string
	for _, au := range a.Authors {
		switch {
		case au.LastName != "" && au.Initials != "":
			authors = append(authors, au.LastName+", "+au.Initials)
		case au.LastName != "":
			authors = append(authors, au.LastName)
		case au.CollectiveName != "":
			authors = append(authors, au.CollectiveName)
		}
	}

	var abstract []string
	for _, part := range a.Abstract.Text {
		text := part.Text()
		if text == "" {
			continue
		}
		if part.Label != "" {
			text = part.Label + ": " + text
		}
		abstract = append(abstract, text)
	}

	date, year := ParsePubDate(a.Journal.JournalIssue.PubDate)

	rec.SetField(models.FieldItemType, "journalArticle")
	rec.SetField(models.FieldAuthor, strings.Join(authors, "; "))
	rec.SetField(models.FieldAbstract, strings.Join(abstract, "\n"))
	rec.SetField(models.FieldPublicationTitle, a.Journal.Title)
	rec.SetField(models.FieldJournalAbbreviation, a.Journal.ISOAbbreviation)
	rec.SetField(models.FieldISSN, a.Journal.ISSN)
	rec.SetField(models.FieldVolume, a.Journal.JournalIssue.Volume)
	rec.SetField(models.FieldIssue, a.Journal.JournalIssue.Issue)
	rec.SetField(models.FieldPages, a.Pagination.MedlinePgn)
	rec.SetField(models.FieldDate, date)
	rec.SetField(models.FieldYear, year)
	rec.SetField(models.FieldLanguage, strings.Join(a.Language, ", "))
	rec.SetField(models.FieldLibraryCatalog, "PubMed")
	if len(a.PublicationTypes) > 0 {
		rec.SetField(models.FieldType, a.PublicationTypes[0])
	}
	if rec.PMID != "" {
		rec.SetField(models.FieldURL, fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", rec.PMID))
		extra := "PMID: " + rec.PMID
		if pmc := articleID(article, "pmc"); pmc != "" {
			extra += " | PMCID: " + pmc
		}
		rec.SetField(models.FieldExtra, extra)
	}
	return rec
}

// articleDOI bevorzugt die gültige ELocationID und fällt auf die ArticleIdList zurück.
func articleDOI(article *PubmedArticle) string {
	for _, id := range article.MedlineCitation.Article.ELocationID {
		if id.IDType == "doi" && id.ValidYN != "N" && strings.TrimSpace(id.Value) != "" {
			return strings.TrimSpace(id.Value)
		}
	}
	return articleID(article, "doi")
}

func articleID(article *PubmedArticle, idType string) string {
	for _, id := range article.PubmedData.ArticleIDs {
		if id.IDType == idType {
			return strings.TrimSpace(id.Value)
		}
	}
	return ""
}

package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/dedup"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/storage"
)

type fakeProvider struct {
	name  string
	recs  []models.Record
	err   error
	calls atomic.Int32
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Search(ctx context.Context, term string) ([]*models.Record, error) {
	p.calls.Add(1)
	out := make([]*models.Record, len(p.recs))
	for i := range p.recs {
		r := p.recs[i].Clone()
		out[i] = &r
	}
	return out, p.err
}

type fakeEnricher struct {
	links map[string]string
	calls []string
}

func (e *fakeEnricher) Enabled() bool { return true }

func (e *fakeEnricher) PDFLink(ctx context.Context, doi string) (string, error) {
	e.calls = append(e.calls, doi)
	return e.links[doi], nil
}

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLite(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() }) //nolint:errcheck
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func newTestHarvester(t *testing.T, provs []providers.Provider, enricher Enricher, pico *PICOFilter) (*HarvestService, *storage.SQLiteRepository) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	repo := newTestRepo(t)
	store := dedup.NewRecordStore(dedup.NewMatcher(dedup.DefaultThreshold), logger)
	cfg := &config.Config{ProviderConcurrency: 2, SearchQueries: "dexrazoxane;statin"}
	return NewHarvestService(cfg, store, repo, provs, enricher, pico, logger), repo
}

func TestHarvest_DeduplicatesAcrossProviders(t *testing.T) {
	pm := &fakeProvider{name: "pubmed", recs: []models.Record{
		{Title: "Dexrazoxane for anthracycline cardiotoxicity", PMID: "1", DOI: "10.1/dex", Source: "pubmed"},
		{Title: "Statins in breast cancer", PMID: "2", Source: "pubmed"},
	}}
	cr := &fakeProvider{name: "crossref", recs: []models.Record{
		{Title: "Dexrazoxane for Anthracycline Cardiotoxicity.", DOI: "10.1/DEX", Source: "crossref",
			Fields: map[string]string{models.FieldURL: "https://doi.org/10.1/dex"}},
	}}
	ct := &fakeProvider{name: "clinicaltrials", err: errors.New("boom")}

	h, repo := newTestHarvester(t, []providers.Provider{pm, cr, ct}, nil, nil)
	summary, err := h.Run(context.Background(), []string{"dexrazoxane"})
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 3, summary.Fetched)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Merged)
	assert.Equal(t, map[string]int{"pubmed": 2, "crossref": 1, "clinicaltrials": 0}, summary.PerProvider)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "clinicaltrials")

	all := h.Store.All()
	require.Len(t, all, 2)
	assert.Equal(t, "crossref, pubmed", all[0].Source)

	persisted, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, all, persisted)
}

func TestHarvest_PICOFilterDropsIrrelevantRecords(t *testing.T) {
	p := &fakeProvider{name: "pubmed", recs: []models.Record{
		{Title: "Dexrazoxane cohort", PMID: "1"},
		{Title: "Gardening tips", PMID: "2"},
	}}
	h, _ := newTestHarvester(t, []providers.Provider{p}, nil, NewPICOFilter(DefaultPICOKeywords()))

	summary, err := h.Run(context.Background(), []string{"q"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Filtered)
	assert.Equal(t, 1, summary.Inserted)

	all := h.Store.All()
	require.Len(t, all, 1)
	assert.Equal(t, "PICO_keywords_found: cohort, dexrazoxane", all[0].Field(models.FieldExtra))
}

func TestHarvest_EnrichesDOIRecordsWithoutURL(t *testing.T) {
	p := &fakeProvider{name: "crossref", recs: []models.Record{
		{Title: "Open access study", DOI: "10.1/oa"},
		{Title: "Closed study", DOI: "10.1/closed"},
		{Title: "Linked study", DOI: "10.1/linked", Fields: map[string]string{models.FieldURL: "https://x.org"}},
	}}
	enricher := &fakeEnricher{links: map[string]string{"10.1/oa": "https://oa.org/a.pdf"}}
	h, _ := newTestHarvester(t, []providers.Provider{p}, enricher, nil)

	summary, err := h.Run(context.Background(), []string{"q"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Enriched)
	assert.Equal(t, []string{"10.1/oa", "10.1/closed"}, enricher.calls)

	_, rec, ok := h.Store.Lookup("10.1/oa")
	require.True(t, ok)
	assert.Equal(t, "https://oa.org/a.pdf", rec.Field(models.FieldURL))
	assert.Equal(t, "Open access study", rec.Title)
	assert.Equal(t, 3, h.Store.Len())
}

func TestHarvest_RejectsConcurrentRuns(t *testing.T) {
	h, _ := newTestHarvester(t, nil, nil, nil)
	assert.False(t, h.Running())
	h.running.Lock()
	defer h.running.Unlock()
	assert.True(t, h.Running())

	_, err := h.Run(context.Background(), []string{"q"})
	assert.ErrorIs(t, err, ErrHarvestRunning)
}

func TestHarvest_DefaultQueries(t *testing.T) {
	h, repo := newTestHarvester(t, nil, nil, nil)
	ctx := context.Background()

	queries, err := h.DefaultQueries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dexrazoxane", "statin"}, queries)

	require.NoError(t, repo.AddSearchQuery(ctx, &models.SearchQuery{Term: "trastuzumab cardiotoxicity"}))
	queries, err = h.DefaultQueries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"trastuzumab cardiotoxicity"}, queries)
}

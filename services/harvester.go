package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/dedup"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/storage"
)

// ErrHarvestRunning wird geliefert, wenn bereits ein Harvest läuft.
var ErrHarvestRunning = errors.New("harvest already running")

// Enricher liefert freie Volltext-Links zu einer DOI.
type Enricher interface {
	Enabled() bool
	PDFLink(ctx context.Context, doi string) (string, error)
}

// HarvestSummary fasst einen Harvest-Lauf zusammen.
type HarvestSummary struct {
	RunID       string         `json:"run_id"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	Queries     []string       `json:"queries"`
	Fetched     int            `json:"fetched"`
	Inserted    int            `json:"inserted"`
	Merged      int            `json:"merged"`
	Filtered    int            `json:"filtered"`
	Enriched    int            `json:"enriched"`
	Conflicts   int            `json:"conflicts"`
	PerProvider map[string]int `json:"per_provider"`
	Errors      []string       `json:"errors,omitempty"`
}

// HarvestService kümmert sich um die Orchestrierung des gesamten Harvest-Prozesses:
// Provider abfragen, PICO-Filter anwenden, deduplizieren, anreichern und persistieren.
type HarvestService struct {
	Config    *config.Config
	Store     *dedup.RecordStore
	Repo      storage.RecordRepository
	Catalog   storage.CatalogRepository
	Providers []providers.Provider
	Enricher  Enricher
	PICO      *PICOFilter
	Logger    *zap.Logger

	running sync.Mutex
}

// NewHarvestService erstellt eine neue Instanz des HarvestService.
func NewHarvestService(cfg *config.Config, store *dedup.RecordStore, repo storage.Repository, provs []providers.Provider, enricher Enricher, pico *PICOFilter, logger *zap.Logger) *HarvestService {
	h := &HarvestService{
		Config:    cfg,
		Store:     store,
		Providers: provs,
		Enricher:  enricher,
		PICO:      pico,
		Logger:    logger,
	}
	if repo != nil {
		h.Repo = repo
		h.Catalog = repo
	}
	return h
}

// LoadPICOFilter baut den Filter aus PICO_FILE, den gespeicherten Stichwörtern oder den Standardwerten.
// Bei PICO_FILTER_ENABLED=false wird nil geliefert.
func LoadPICOFilter(ctx context.Context, cfg *config.Config, catalog storage.CatalogRepository, logger *zap.Logger) (*PICOFilter, error) {
	if !cfg.PICOFilterEnabled {
		return nil, nil
	}
	if cfg.PICOFile != "" {
		keywords, err := LoadPICOFile(cfg.PICOFile)
		if err != nil {
			return nil, fmt.Errorf("load pico file %s: %w", cfg.PICOFile, err)
		}
		logger.Info("PICO-Stichwörter aus Datei geladen", zap.String("file", cfg.PICOFile))
		return NewPICOFilter(keywords), nil
	}
	if catalog != nil {
		rows, err := catalog.PICOKeywords(ctx)
		if err != nil {
			return nil, fmt.Errorf("load pico keywords: %w", err)
		}
		if len(rows) > 0 {
			logger.Info("PICO-Stichwörter aus der Datenbank geladen", zap.Int("count", len(rows)))
			return NewPICOFilter(PICOKeywordsFromRows(rows)), nil
		}
	}
	return NewPICOFilter(DefaultPICOKeywords()), nil
}

// DefaultQueries liefert die gespeicherten Suchbegriffe oder, falls keine existieren, SEARCH_QUERIES.
func (h *HarvestService) DefaultQueries(ctx context.Context) ([]string, error) {
	if h.Catalog != nil {
		stored, err := h.Catalog.SearchQueries(ctx)
		if err != nil {
			return nil, err
		}
		if len(stored) > 0 {
			out := make([]string, len(stored))
			for i, q := range stored {
				out[i] = q.Term
			}
			return out, nil
		}
	}
	return h.Config.Queries(), nil
}

// Running meldet, ob gerade ein Harvest läuft.
func (h *HarvestService) Running() bool {
	if h.running.TryLock() {
		h.running.Unlock()
		return false
	}
	return true
}

// Run führt einen Harvest für alle queries aus. Fehler einzelner Provider brechen den Lauf nicht ab,
// sie landen in HarvestSummary.Errors.
func (h *HarvestService) Run(ctx context.Context, queries []string) (*HarvestSummary, error) {
	if !h.running.TryLock() {
		return nil, ErrHarvestRunning
	}
	defer h.running.Unlock()

	summary := &HarvestSummary{
		RunID:       uuid.New().String(),
		StartedAt:   time.Now().UTC(),
		Queries:     queries,
		PerProvider: map[string]int{},
	}
	log := h.Logger.With(zap.String("run_id", summary.RunID))
	log.Info("Starte Harvest", zap.Strings("queries", queries), zap.Int("providers", len(h.Providers)))

	var toEnrich []string
	queued := map[string]bool{}

	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		results := h.searchAll(ctx, log, query, summary)

		// Einfügen in Provider-Reihenfolge, damit der Bestand reproduzierbar bleibt.
		for _, recs := range results {
			for _, rec := range recs {
				res, ok := h.ingest(*rec, summary)
				if !ok {
					continue
				}
				doi := res.Record.DOI
				if doi != "" && res.Record.Field(models.FieldURL) == "" && !queued[doi] {
					queued[doi] = true
					toEnrich = append(toEnrich, doi)
				}
			}
		}
	}

	h.enrich(ctx, log, toEnrich, summary)

	if h.Repo != nil {
		if err := h.Repo.SaveAll(ctx, h.Store.All()); err != nil {
			return summary, fmt.Errorf("persist records: %w", err)
		}
	}

	summary.FinishedAt = time.Now().UTC()
	log.Info("Harvest abgeschlossen",
		zap.Int("fetched", summary.Fetched),
		zap.Int("inserted", summary.Inserted),
		zap.Int("merged", summary.Merged),
		zap.Int("filtered", summary.Filtered),
		zap.Int("enriched", summary.Enriched),
		zap.Int("conflicts", summary.Conflicts),
		zap.Int("store_size", h.Store.Len()))
	return summary, nil
}

// searchAll fragt alle Provider nebenläufig ab; das Ergebnis ist nach Provider-Index geordnet.
func (h *HarvestService) searchAll(ctx context.Context, log *zap.Logger, query string, summary *HarvestSummary) [][]*models.Record {
	results := make([][]*models.Record, len(h.Providers))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	limit := h.Config.ProviderConcurrency
	if limit <= 0 {
		limit = len(h.Providers)
	}
	g.SetLimit(max(limit, 1))

	for i, p := range h.Providers {
		g.Go(func() error {
			plog := log.With(zap.String("provider", p.Name()), zap.String("query", query))
			recs, err := p.Search(gctx, query)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				plog.Error("Provider-Suche fehlgeschlagen", zap.Error(err))
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", p.Name(), err))
			}
			// Teilergebnisse vor einem Fehler werden trotzdem übernommen.
			results[i] = recs
			summary.Fetched += len(recs)
			summary.PerProvider[p.Name()] += len(recs)
			recordsFetched.WithLabelValues(p.Name()).Add(float64(len(recs)))
			plog.Info("Provider hat Ergebnisse geliefert", zap.Int("count", len(recs)))
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (h *HarvestService) ingest(rec models.Record, summary *HarvestSummary) (dedup.UpsertResult, bool) {
	if !h.PICO.Tag(&rec) {
		summary.Filtered++
		recordsFiltered.Inc()
		h.Logger.Debug("Record ohne PICO-Stichwort verworfen",
			zap.String("title", rec.Title),
			zap.String("source", rec.Source))
		return dedup.UpsertResult{}, false
	}

	res := h.Store.Upsert(rec)
	switch res.Outcome {
	case dedup.Inserted:
		summary.Inserted++
		recordsInserted.Inc()
	case dedup.Merged:
		summary.Merged++
		recordsMerged.Inc()
	}
	if n := len(res.Conflicts); n > 0 {
		summary.Conflicts += n
		recordConflicts.Add(float64(n))
	}
	return res, true
}

// enrich ergänzt DOI-Records ohne Url über Unpaywall, jeweils als weiterer Upsert.
func (h *HarvestService) enrich(ctx context.Context, log *zap.Logger, dois []string, summary *HarvestSummary) {
	if h.Enricher == nil || !h.Enricher.Enabled() || len(dois) == 0 {
		return
	}
	for _, doi := range dois {
		if ctx.Err() != nil {
			return
		}
		// Ein späterer Merge kann die Url bereits gesetzt haben.
		if _, rec, ok := h.Store.Lookup(doi); !ok || rec.Field(models.FieldURL) != "" {
			continue
		}
		link, err := h.Enricher.PDFLink(ctx, doi)
		if err != nil {
			log.Warn("Unpaywall-Anreicherung fehlgeschlagen", zap.String("doi", doi), zap.Error(err))
			continue
		}
		if link == "" {
			continue
		}
		res := h.Store.Upsert(models.Record{DOI: doi, Fields: map[string]string{models.FieldURL: link}})
		summary.Enriched++
		if n := len(res.Conflicts); n > 0 {
			summary.Conflicts += n
			recordConflicts.Add(float64(n))
		}
	}
	log.Info("Unpaywall-Anreicherung abgeschlossen", zap.Int("enriched", summary.Enriched))
}

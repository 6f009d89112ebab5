package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/dedup"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/export"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers/unpaywall"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/services"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/storage"
)

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	logging, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	ctx := context.Background()

	// Setup Repository
	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		logging.Fatal("Failed to open repository", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer repo.Close()
	logging.Info("Repository geöffnet", zap.String("backend", cfg.StorageBackend))

	// Seeding
	seedDefaultSearchQueries(ctx, repo, cfg, logging)
	seedDefaultPICOKeywords(ctx, repo, cfg, logging)

	// Store aus dem Snapshot wiederherstellen
	store := dedup.NewRecordStore(dedup.NewMatcher(cfg.FuzzyThreshold), logging)
	snapshot, err := repo.LoadAll(ctx)
	if err != nil {
		logging.Fatal("Failed to load record snapshot", zap.Error(err))
	}
	for _, entry := range store.Restore(snapshot) {
		logging.Warn("Konflikt beim Wiederherstellen", zap.String("entry", entry.String()))
	}
	logging.Info("Record-Bestand wiederhergestellt", zap.Int("records", store.Len()))

	// Setup Providers & Services
	enabledProviders, err := services.BuildProviders(cfg, logging)
	if err != nil {
		logging.Fatal("Provider setup failed", zap.Error(err))
	}
	logging.Info("Active providers loaded", zap.Strings("providers", cfg.Providers()))

	enricher, err := unpaywall.NewEnricher(cfg, logging)
	if err != nil {
		logging.Fatal("Unpaywall enricher creation failed", zap.Error(err))
	}
	pico, err := services.LoadPICOFilter(ctx, cfg, repo, logging)
	if err != nil {
		logging.Fatal("PICO filter setup failed", zap.Error(err))
	}
	harvester := services.NewHarvestService(cfg, store, repo, enabledProviders, enricher, pico, logging)

	var uploader *storage.Uploader
	if cfg.S3Enabled() {
		uploader, err = storage.NewUploader(ctx, cfg, logging)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
	}

	pipeline := &harvestPipeline{
		Harvester: harvester,
		Uploader:  uploader,
		ExportDir: cfg.ExportDir,
		Logger:    logging,
	}

	router := newRouter(cfg, store, repo, pipeline, logging)

	// Setup Cron
	cronScheduler := cron.New()
	_, err = cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled harvest job...")
		summary, err := pipeline.Run(context.Background(), nil)
		if err != nil {
			logging.Error("Cron job failed", zap.Error(err))
			return
		}
		logging.Info("Cron job completed", zap.String("run_id", summary.RunID), zap.Int("inserted", summary.Inserted))
	})
	if err != nil {
		logging.Fatal("Invalid CRON_SCHEDULE", zap.String("schedule", cfg.CronSchedule), zap.Error(err))
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// newRouter verdrahtet Middleware und alle Routen.
func newRouter(cfg *config.Config, store *dedup.RecordStore, repo storage.Repository, pipeline *harvestPipeline, log *zap.Logger) *gin.Engine {
	router := gin.Default()
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupRecordRoutes(router, store, repo, log)
	setupReportRoutes(router, store)
	setupHarvestRoutes(router, pipeline)
	setupSearchQueryRoutes(router, repo, log)
	setupPICOKeywordRoutes(router, repo, log)
	return router
}

// harvestPipeline führt einen Harvest aus, schreibt das Export-Bundle und lädt es optional nach S3.
type harvestPipeline struct {
	Harvester *services.HarvestService
	Uploader  *storage.Uploader
	ExportDir string
	Logger    *zap.Logger
}

// Run nutzt queries oder, wenn leer, die gespeicherten bzw. konfigurierten Suchbegriffe.
func (p *harvestPipeline) Run(ctx context.Context, queries []string) (*services.HarvestSummary, error) {
	if len(queries) == 0 {
		var err error
		queries, err = p.Harvester.DefaultQueries(ctx)
		if err != nil {
			return nil, err
		}
	}
	summary, err := p.Harvester.Run(ctx, queries)
	if err != nil {
		return summary, err
	}
	if p.ExportDir == "" {
		return summary, nil
	}

	dir := filepath.Join(p.ExportDir, summary.RunID)
	if _, err := export.WriteBundle(dir, p.Harvester.Store); err != nil {
		return summary, err
	}
	p.Logger.Info("Export-Bundle geschrieben", zap.String("dir", dir))

	if p.Uploader != nil {
		if _, err := p.Uploader.UploadDir(ctx, "exports/"+summary.RunID, dir); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func seedDefaultSearchQueries(ctx context.Context, repo storage.CatalogRepository, cfg *config.Config, logger *zap.Logger) {
	existing, err := repo.SearchQueries(ctx)
	if err != nil {
		logger.Warn("Failed to read search queries", zap.Error(err))
		return
	}
	if len(existing) > 0 {
		return
	}
	for _, term := range cfg.Queries() {
		if err := repo.AddSearchQuery(ctx, &models.SearchQuery{Term: term}); err != nil && !errors.Is(err, storage.ErrDuplicate) {
			logger.Warn("Failed to seed default search query", zap.String("term", term), zap.Error(err))
			return
		}
	}
	logger.Info("Default search queries seeded.")
}

func seedDefaultPICOKeywords(ctx context.Context, repo storage.CatalogRepository, cfg *config.Config, logger *zap.Logger) {
	if !cfg.PICOFilterEnabled || cfg.PICOFile != "" {
		return
	}
	existing, err := repo.PICOKeywords(ctx)
	if err != nil {
		logger.Warn("Failed to read PICO keywords", zap.Error(err))
		return
	}
	if len(existing) > 0 {
		return
	}
	for category, terms := range services.DefaultPICOKeywords() {
		for _, term := range terms {
			k := &models.PICOKeyword{Category: category, Term: term}
			if err := repo.AddPICOKeyword(ctx, k); err != nil && !errors.Is(err, storage.ErrDuplicate) {
				logger.Warn("Failed to seed default PICO keywords", zap.Error(err))
				return
			}
		}
	}
	logger.Info("Default PICO keywords seeded.")
}

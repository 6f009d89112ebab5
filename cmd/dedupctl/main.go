// Command dedupctl führt Harvest, Export und Duplikat-Prüfung ohne laufenden Server aus.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/dedup"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/storage"
)

var rootCmd = &cobra.Command{
	Use:   "dedupctl",
	Short: "Harvest, deduplicate and export literature records",
	Long: `dedupctl sucht in PubMed, Crossref, ClinicalTrials.gov und Europe PMC,
führt doppelte Records zusammen und schreibt Exporte (JSON, CSV, Zotero, XLSX,
Merge-Report, Referenzliste).

Konfiguration kommt wie beim Server aus der Umgebung bzw. .env.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup lädt Konfiguration und Logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config load error: %w", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}
	return cfg, logger, nil
}

// openStore öffnet das Repository und stellt den Bestand daraus wieder her.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.Repository, *dedup.RecordStore, error) {
	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	recs, err := repo.LoadAll(ctx)
	if err != nil {
		repo.Close() //nolint:errcheck
		return nil, nil, err
	}
	store := dedup.NewRecordStore(dedup.NewMatcher(cfg.FuzzyThreshold), logger)
	for _, entry := range store.Restore(recs) {
		logger.Warn("Konflikt beim Wiederherstellen", zap.String("entry", entry.String()))
	}
	return repo, store, nil
}

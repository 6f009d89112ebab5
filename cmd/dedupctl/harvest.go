package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/export"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers/unpaywall"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/services"
)

var (
	harvestQueries   []string
	harvestOut       string
	harvestProviders string
	harvestLimit     int
	harvestFromYear  int
	harvestToYear    int
	harvestNoPICO    bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Run one harvest and write the export bundle",
	Long: `Fragt alle aktivierten Provider ab, dedupliziert die Treffer in den
gespeicherten Bestand und schreibt das Export-Bundle nach --out.

Beispiele:
  dedupctl harvest --query "dexrazoxane cardiotoxicity" --out results
  dedupctl harvest --providers pubmed,crossref --from 2015 --limit 50`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		if harvestProviders != "" {
			cfg.EnabledProviders = harvestProviders
		}
		if harvestLimit > 0 {
			cfg.MaxResultsPerSource = harvestLimit
		}
		if harvestFromYear > 0 {
			cfg.FromYear = harvestFromYear
		}
		if harvestToYear > 0 {
			cfg.ToYear = harvestToYear
		}
		if harvestNoPICO {
			cfg.PICOFilterEnabled = false
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		repo, store, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer repo.Close() //nolint:errcheck

		provs, err := services.BuildProviders(cfg, logger)
		if err != nil {
			return err
		}
		enricher, err := unpaywall.NewEnricher(cfg, logger)
		if err != nil {
			return err
		}
		pico, err := services.LoadPICOFilter(ctx, cfg, repo, logger)
		if err != nil {
			return err
		}
		harvester := services.NewHarvestService(cfg, store, repo, provs, enricher, pico, logger)

		queries := harvestQueries
		if len(queries) == 0 {
			if queries, err = harvester.DefaultQueries(ctx); err != nil {
				return err
			}
		}
		summary, err := harvester.Run(ctx, queries)
		if err != nil {
			return err
		}

		out := harvestOut
		if out == "" {
			out = cfg.ExportDir
		}
		paths, err := export.WriteBundle(out, store)
		if err != nil {
			return err
		}
		logger.Info("Export-Bundle geschrieben", zap.String("dir", out), zap.Strings("files", paths))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		return nil
	},
}

func init() {
	harvestCmd.Flags().StringSliceVarP(&harvestQueries, "query", "q", nil, "search term (repeatable); default: stored or SEARCH_QUERIES")
	harvestCmd.Flags().StringVarP(&harvestOut, "out", "o", "", "output directory for the export bundle (default EXPORT_DIR)")
	harvestCmd.Flags().StringVar(&harvestProviders, "providers", "", "comma-separated providers (default ENABLED_PROVIDERS)")
	harvestCmd.Flags().IntVar(&harvestLimit, "limit", 0, "max results per source")
	harvestCmd.Flags().IntVar(&harvestFromYear, "from", 0, "earliest publication year")
	harvestCmd.Flags().IntVar(&harvestToYear, "to", 0, "latest publication year")
	harvestCmd.Flags().BoolVar(&harvestNoPICO, "no-pico", false, "disable the PICO relevance filter")
	rootCmd.AddCommand(harvestCmd)
}

package services

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers/clinicaltrials"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers/crossref"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers/europepmc"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers/pubmed"
)

// BuildProviders erstellt die in ENABLED_PROVIDERS genannten Provider in dieser Reihenfolge.
func BuildProviders(cfg *config.Config, logger *zap.Logger) ([]providers.Provider, error) {
	var enabled []providers.Provider
	for _, name := range cfg.Providers() {
		switch name {
		case "pubmed":
			enabled = append(enabled, pubmed.NewFetcher(cfg, logger))
		case "crossref":
			enabled = append(enabled, crossref.NewFetcher(cfg, logger))
		case "clinicaltrials":
			enabled = append(enabled, clinicaltrials.NewFetcher(cfg, logger))
		case "europepmc":
			enabled = append(enabled, europepmc.NewFetcher(cfg, logger))
		default:
			logger.Warn("Unknown provider in config", zap.String("provider_name", name))
		}
	}
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no valid providers enabled, check ENABLED_PROVIDERS")
	}
	return enabled, nil
}

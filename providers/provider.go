package providers

import (
	"context"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// Provider ist das Interface, das jeder Such-Provider (z.B. PubMed, CrossRef) implementieren muss.
type Provider interface {
	// Search führt eine Suche für einen gegebenen Term durch und gibt standardisierte Records zurück.
	// Unbekannte Identifikatoren bleiben leer.
	Search(ctx context.Context, term string) ([]*models.Record, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "pubmed").
	Name() string
}

// Package storage persistiert den Record-Bestand und lädt Exporte nach S3 hoch.
package storage

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// ErrDuplicate wird geliefert, wenn ein Suchbegriff oder Stichwort bereits existiert.
var ErrDuplicate = eris.New("already exists")

// RecordRepository speichert Records in Einfügereihenfolge; die Position ist der Handle des Stores.
type RecordRepository interface {
	// SaveAll ersetzt den gespeicherten Bestand durch recs.
	SaveAll(ctx context.Context, recs []models.Record) error
	// Save schreibt den Record an Position pos (Insert oder Update).
	Save(ctx context.Context, pos int, rec models.Record) error
	// LoadAll liefert alle Records sortiert nach Position.
	LoadAll(ctx context.Context) ([]models.Record, error)
	Close() error
}

// CatalogRepository verwaltet Suchbegriffe und PICO-Stichwörter.
type CatalogRepository interface {
	SearchQueries(ctx context.Context) ([]models.SearchQuery, error)
	AddSearchQuery(ctx context.Context, q *models.SearchQuery) error
	PICOKeywords(ctx context.Context) ([]models.PICOKeyword, error)
	AddPICOKeyword(ctx context.Context, k *models.PICOKeyword) error
}

// Repository vereint beide Rollen; SQLite und PostgreSQL implementieren es.
type Repository interface {
	RecordRepository
	CatalogRepository
}

// Open öffnet das in STORAGE_BACKEND gewählte Backend und migriert das Schema.
func Open(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.StorageBackend {
	case "postgres":
		repo, err := NewGorm(cfg.DSN())
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			repo.Close() //nolint:errcheck
			return nil, err
		}
		return repo, nil
	case "sqlite", "":
		repo, err := NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			repo.Close() //nolint:errcheck
			return nil, err
		}
		return repo, nil
	default:
		return nil, eris.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}

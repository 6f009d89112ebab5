package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

func newTestSQLiteRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() }) //nolint:errcheck
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestSQLite_SaveAllAndLoadAll(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	recs := []models.Record{
		{Title: "One", DOI: "10.1/one", Source: "crossref", Fields: map[string]string{"Author": "Smith, J"}},
		{Title: "Two", PMID: "2", Source: "pubmed"},
		{Title: "Three", TrialID: "NCT3"},
	}
	require.NoError(t, repo.SaveAll(ctx, recs))

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, recs, got)

	// Kürzerer Bestand entfernt überzählige Positionen
	require.NoError(t, repo.SaveAll(ctx, recs[:1]))
	got, err = repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLite_SaveUpdatesPosition(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, 0, models.Record{Title: "Draft"}))
	require.NoError(t, repo.Save(ctx, 0, models.Record{Title: "Final", DOI: "10.1/f"}))
	require.NoError(t, repo.Save(ctx, 1, models.Record{Title: "Second"}))

	got, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Final", got[0].Title)
	assert.Equal(t, "10.1/f", got[0].DOI)

	assert.Error(t, repo.Save(ctx, -1, models.Record{}))
}

func TestSQLite_LoadAllEmpty(t *testing.T) {
	got, err := newTestSQLiteRepository(t).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLite_SearchQueries(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	q := &models.SearchQuery{Term: "dexrazoxane cardiotoxicity", Label: "dexrazoxane"}
	require.NoError(t, repo.AddSearchQuery(ctx, q))
	assert.NotZero(t, q.ID)

	err := repo.AddSearchQuery(ctx, &models.SearchQuery{Term: "dexrazoxane cardiotoxicity"})
	assert.True(t, errors.Is(err, ErrDuplicate))

	all, err := repo.SearchQueries(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "dexrazoxane", all[0].Label)
}

func TestSQLite_PICOKeywords(t *testing.T) {
	repo := newTestSQLiteRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AddPICOKeyword(ctx, &models.PICOKeyword{Category: models.PICOInterventions, Term: "statin"}))
	require.NoError(t, repo.AddPICOKeyword(ctx, &models.PICOKeyword{Category: models.PICOComparators, Term: "placebo"}))
	assert.ErrorIs(t, repo.AddPICOKeyword(ctx, &models.PICOKeyword{Category: models.PICOInterventions, Term: "statin"}), ErrDuplicate)

	all, err := repo.PICOKeywords(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "placebo", all[1].Term)
}

func TestOpen_SQLiteBackend(t *testing.T) {
	cfg := &config.Config{StorageBackend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "records.db")}
	repo, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer repo.Close()

	require.NoError(t, repo.Save(context.Background(), 0, models.Record{Title: "x"}))

	_, err = Open(context.Background(), &config.Config{StorageBackend: "mongo"})
	assert.Error(t, err)
}

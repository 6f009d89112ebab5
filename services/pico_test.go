package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

func TestPICOFilter_Match(t *testing.T) {
	f := NewPICOFilter(DefaultPICOKeywords())

	tests := []struct {
		name string
		rec  models.Record
		want []string
	}{
		{
			"title and abstract",
			models.Record{
				Title:  "Dexrazoxane in anthracycline-treated patients",
				Fields: map[string]string{models.FieldAbstract: "A randomized controlled trial versus placebo."},
			},
			[]string{"anthracycline", "dexrazoxane", "placebo", "randomized controlled trial"},
		},
		{"plural forms", models.Record{Title: "Statins and beta-blockers after anthracyclines"}, []string{"anthracycline", "beta-blocker", "statin"}},
		{"case insensitive", models.Record{Title: "TRASTUZUMAB COHORT"}, []string{"cohort", "trastuzumab"}},
		{"word boundaries", models.Record{Title: "Carbon dating of barbiturates"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Match(tt.rec))
		})
	}
}

func TestPICOFilter_Tag(t *testing.T) {
	f := NewPICOFilter(map[string][]string{models.PICOInterventions: {"statin"}})

	rec := models.Record{Title: "Statin therapy", Fields: map[string]string{models.FieldExtra: "PMID: 1"}}
	assert.True(t, f.Tag(&rec))
	assert.Equal(t, "PMID: 1 | PICO_keywords_found: statin", rec.Field(models.FieldExtra))

	other := models.Record{Title: "Unrelated"}
	assert.False(t, f.Tag(&other))
	assert.Empty(t, other.Field(models.FieldExtra))
}

func TestPICOFilter_DisabledPassesEverything(t *testing.T) {
	var nilFilter *PICOFilter
	rec := models.Record{Title: "Anything"}
	assert.True(t, nilFilter.Tag(&rec))
	assert.True(t, NewPICOFilter(nil).Tag(&rec))
	assert.Empty(t, rec.Field(models.FieldExtra))
}

func TestLoadPICOFilter_Sources(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	f, err := LoadPICOFilter(ctx, &config.Config{PICOFilterEnabled: false}, nil, logger)
	require.NoError(t, err)
	assert.Nil(t, f)

	path := filepath.Join(t.TempDir(), "pico.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interventions:\n  - carvedilol\ncomparators: [placebo]\n"), 0o644))
	f, err = LoadPICOFilter(ctx, &config.Config{PICOFilterEnabled: true, PICOFile: path}, nil, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"carvedilol"}, f.Match(models.Record{Title: "Carvedilol trial"}))

	repo := newTestRepo(t)
	require.NoError(t, repo.AddPICOKeyword(ctx, &models.PICOKeyword{Category: models.PICOExposures, Term: "epirubicin"}))
	f, err = LoadPICOFilter(ctx, &config.Config{PICOFilterEnabled: true}, repo, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"epirubicin"}, f.Match(models.Record{Title: "Epirubicin and dexrazoxane"}))

	_, err = LoadPICOFilter(ctx, &config.Config{PICOFilterEnabled: true, PICOFile: "/does/not/exist.yaml"}, nil, logger)
	assert.Error(t, err)
}

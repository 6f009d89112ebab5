package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

func TestMerge_Identifiers(t *testing.T) {
	existing := models.Record{Title: "Foo", DOI: "10.1/x", PMID: "111"}
	incoming := models.Record{Title: "Bar", DOI: "10.1/X", TrialID: "nct0001"}

	got := Merge(existing, incoming)

	assert.Equal(t, "Foo", got.Title)
	assert.Equal(t, "10.1/x", got.DOI)
	assert.Equal(t, "111", got.PMID)
	assert.Equal(t, "NCT0001", got.TrialID)
}

func TestMerge_IncomingIdentifierWins(t *testing.T) {
	got := Merge(models.Record{DOI: "10.1/old"}, models.Record{DOI: "10.1/new"})
	assert.Equal(t, "10.1/new", got.DOI)
}

func TestMerge_TitleOnlyFilledWhenEmpty(t *testing.T) {
	got := Merge(models.Record{Title: ""}, models.Record{Title: "Late Title"})
	assert.Equal(t, "Late Title", got.Title)

	got = Merge(models.Record{Title: "Kept"}, models.Record{Title: "Ignored"})
	assert.Equal(t, "Kept", got.Title)
}

func TestMerge_Sources(t *testing.T) {
	got := Merge(
		models.Record{Source: "pubmed, crossref"},
		models.Record{Source: "clinicaltrials"},
	)
	assert.Equal(t, "clinicaltrials, crossref, pubmed", got.Source)

	got = Merge(models.Record{Source: "pubmed"}, models.Record{Source: "pubmed"})
	assert.Equal(t, "pubmed", got.Source)

	got = Merge(models.Record{Source: "pubmed"}, models.Record{})
	assert.Equal(t, "pubmed", got.Source)
}

func TestMerge_AuthorsAreAdditive(t *testing.T) {
	got := Merge(
		models.Record{Fields: map[string]string{"Author": "Smith, J"}},
		models.Record{Fields: map[string]string{"Author": "Doe, A"}},
	)
	assert.Equal(t, "Doe, A; Smith, J", got.Fields["Author"])
}

func TestMerge_AuthorsCaseInsensitiveDedup(t *testing.T) {
	got := Merge(
		models.Record{Fields: map[string]string{"Author": "Smith, J; Lee, K"}},
		models.Record{Fields: map[string]string{"Author": "SMITH, J;  doe, a"}},
	)
	assert.Equal(t, "doe, a; Lee, K; Smith, J", got.Fields["Author"])
}

func TestSplitAuthors(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Smith, J", []string{"Smith, J"}},
		{"Smith, J; Doe, A", []string{"Smith, J", "Doe, A"}},
		{"J Smith, A Doe", []string{"J Smith", "A Doe"}},
		{"Smith J, Doe A;Lee K", []string{"Smith J", "Doe A", "Lee K"}},
		{"  ;  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitAuthors(tt.in))
		})
	}
}

func TestMerge_Annotations(t *testing.T) {
	got := Merge(
		models.Record{Fields: map[string]string{"Extra": "PMID: 1"}},
		models.Record{Fields: map[string]string{"Extra": "PICO: statin"}},
	)
	assert.Equal(t, "PMID: 1 | PICO: statin", got.Fields["Extra"])

	got = Merge(
		models.Record{Fields: map[string]string{"Extra": "PMID: 1 | PICO: statin"}},
		models.Record{Fields: map[string]string{"Extra": "PICO: statin"}},
	)
	assert.Equal(t, "PMID: 1 | PICO: statin", got.Fields["Extra"])

	got = Merge(
		models.Record{},
		models.Record{Fields: map[string]string{"Notes": "only incoming"}},
	)
	assert.Equal(t, "only incoming", got.Fields["Notes"])
}

func TestMerge_OtherFieldsIncomingWinsIfNonEmpty(t *testing.T) {
	got := Merge(
		models.Record{Fields: map[string]string{"Volume": "12", "Issue": "3"}},
		models.Record{Fields: map[string]string{"Volume": "13", "Issue": "  "}},
	)
	assert.Equal(t, "13", got.Fields["Volume"])
	assert.Equal(t, "3", got.Fields["Issue"])
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	existing := models.Record{Title: "A", Fields: map[string]string{"Author": "Smith, J"}}
	incoming := models.Record{Title: "B", Fields: map[string]string{"Author": "Doe, A", "Volume": "1"}}

	got := Merge(existing, incoming)
	got.Fields["Volume"] = "changed"

	assert.Equal(t, map[string]string{"Author": "Smith, J"}, existing.Fields)
	assert.Equal(t, map[string]string{"Author": "Doe, A", "Volume": "1"}, incoming.Fields)
}

func TestMerge_SelfIsContentIdempotent(t *testing.T) {
	r := models.Record{
		Title:  "Dexrazoxane in Breast Cancer",
		DOI:    "10.1/x",
		Source: "pubmed",
		Fields: map[string]string{"Author": "Doe, A; Smith, J", "Extra": "PMID: 1", "Volume": "2"},
	}
	once := Merge(r, r)
	assert.Equal(t, r, once)
	assert.Equal(t, once, Merge(once, once))
}

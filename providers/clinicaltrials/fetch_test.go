package clinicaltrials

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers"
)

const page1 = `{
  "studies": [{
    "protocolSection": {
      "identificationModule": {"nctId": "NCT01234567", "briefTitle": "Carvedilol for Prevention of Anthracycline Cardiotoxicity"},
      "statusModule": {"overallStatus": "COMPLETED", "startDateStruct": {"date": "2019-03"}},
      "descriptionModule": {"briefSummary": "Randomized trial of carvedilol."},
      "conditionsModule": {"conditions": ["Breast Cancer", "Cardiotoxicity"]},
      "designModule": {"studyType": "INTERVENTIONAL", "phases": ["PHASE3"]},
      "sponsorCollaboratorsModule": {"leadSponsor": {"name": "University Hospital"}},
      "contactsLocationsModule": {"locations": [{"country": "Brazil"}, {"country": "Brazil"}]}
    }
  }, {
    "protocolSection": {
      "identificationModule": {"nctId": "NCT00000001", "briefTitle": "Old trial"},
      "statusModule": {"startDateStruct": {"date": "2001-01-15"}}
    }
  }],
  "nextPageToken": "tok2"
}`

const page2 = `{
  "studies": [{
    "protocolSection": {
      "identificationModule": {"nctId": "NCT07654321", "officialTitle": "Statins and Trastuzumab"},
      "statusModule": {"startDateStruct": {"date": "2021-06-01"}}
    }
  }]
}`

func TestSearch_FollowsPageTokenAndFiltersYears(t *testing.T) {
	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/studies", r.URL.Path)
		assert.Equal(t, "cardiotoxicity", r.URL.Query().Get("query.term"))
		tok := r.URL.Query().Get("pageToken")
		tokens = append(tokens, tok)
		if tok == "" {
			w.Write([]byte(page1))
			return
		}
		w.Write([]byte(page2))
	}))
	defer srv.Close()

	cfg := &config.Config{ClinicalTrialsBaseURL: srv.URL, MaxResultsPerSource: 10, FromYear: 2015}
	f := NewFetcher(cfg, zaptest.NewLogger(t))
	f.Client = providers.NewClient(providers.ClientOptions{MaxAttempts: 1}, zaptest.NewLogger(t))

	recs, err := f.Search(context.Background(), "cardiotoxicity")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "tok2"}, tokens)
	require.Len(t, recs, 2)

	r := recs[0]
	assert.Equal(t, "NCT01234567", r.TrialID)
	assert.Equal(t, "Carvedilol for Prevention of Anthracycline Cardiotoxicity", r.Title)
	assert.Equal(t, "clinicaltrials", r.Source)
	assert.Equal(t, "2019-03-01", r.Field(models.FieldDate))
	assert.Equal(t, "2019", r.Field(models.FieldYear))
	assert.Equal(t, "Status: COMPLETED | Conditions: Breast Cancer, Cardiotoxicity | Phases: PHASE3", r.Field(models.FieldExtra))
	assert.Equal(t, "Brazil", r.Field(models.FieldCountry))
	assert.Equal(t, "https://clinicaltrials.gov/study/NCT01234567", r.Field(models.FieldURL))

	assert.Equal(t, "Statins and Trastuzumab", recs[1].Title)
}

func TestSearch_StopsAtLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page1))
	}))
	defer srv.Close()

	cfg := &config.Config{ClinicalTrialsBaseURL: srv.URL, MaxResultsPerSource: 1}
	f := NewFetcher(cfg, zaptest.NewLogger(t))
	f.Client = providers.NewClient(providers.ClientOptions{MaxAttempts: 1}, zaptest.NewLogger(t))

	recs, err := f.Search(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

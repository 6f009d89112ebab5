package clinicaltrials

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers"
)

const maxPageSize = 1000

// Fetcher implementiert das Provider-Interface für ClinicalTrials.gov.
type Fetcher struct {
	Config *config.Config
	Client *providers.Client
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen ClinicalTrials.gov-Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	client := providers.NewClient(providers.ClientOptions{
		Interval:      200 * time.Millisecond,
		MaxAttempts:   cfg.HTTPMaxRetries,
		RespectRobots: cfg.RespectRobots,
	}, logger)
	return &Fetcher{Config: cfg, Client: client, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "clinicaltrials"
}

// Search folgt nextPageToken, bis MaxResultsPerSource Studien im Jahresfenster gesammelt sind.
func (f *Fetcher) Search(ctx context.Context, term string) ([]*models.Record, error) {
	log := f.Logger.With(zap.String("term", term))
	log.Info("Starte Suche auf ClinicalTrials.gov.")

	limit := f.Config.MaxResultsPerSource
	if limit <= 0 {
		limit = 100
	}

	var records []*models.Record
	skipped := 0
	token := ""
	for len(records) < limit {
		var resp StudiesResponse
		if err := f.Client.GetJSON(ctx, f.buildURL(term, min(limit, maxPageSize), token), &resp); err != nil {
			return records, fmt.Errorf("clinicaltrials studies: %w", err)
		}
		for i := range resp.Studies {
			rec := mapStudyToRecord(&resp.Studies[i])
			if !f.inYearRange(rec.Field(models.FieldYear)) {
				skipped++
				continue
			}
			records = append(records, rec)
			if len(records) == limit {
				break
			}
		}
		if resp.NextPageToken == "" || len(resp.Studies) == 0 {
			break
		}
		token = resp.NextPageToken
	}

	log.Info("Suche auf ClinicalTrials.gov abgeschlossen",
		zap.Int("found_records", len(records)),
		zap.Int("outside_year_range", skipped))
	return records, nil
}

func (f *Fetcher) buildURL(term string, pageSize int, token string) string {
	q := url.Values{}
	q.Set("query.term", term)
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("format", "json")
	if token != "" {
		q.Set("pageToken", token)
	}
	return f.Config.ClinicalTrialsBaseURL + "/studies?" + q.Encode()
}

// inYearRange prüft das Startjahr; Studien ohne Startdatum bleiben erhalten.
func (f *Fetcher) inYearRange(year string) bool {
	y, err := strconv.Atoi(year)
	if err != nil {
		return true
	}
	if f.Config.FromYear > 0 && y < f.Config.FromYear {
		return false
	}
	if f.Config.ToYear > 0 && y > f.Config.ToYear {
		return false
	}
	return true
}

// mapStudyToRecord konvertiert eine Studie in einen Record.
func mapStudyToRecord(s *Study) *models.Record {
	p := &s.ProtocolSection
	nct := p.IdentificationModule.NCTID

	title := p.IdentificationModule.BriefTitle
	if title == "" {
		title = p.IdentificationModule.OfficialTitle
	}
	rec := &models.Record{
		Title:   title,
		TrialID: nct,
		Source:  "clinicaltrials",
	}

	date := p.StatusModule.StartDateStruct.Date
	var year string
	if len(date) >= 4 {
		year = date[:4]
		if len(date) == 7 {
			date += "-01"
		}
	}

	var extra []string
	if st := p.StatusModule.OverallStatus; st != "" {
		extra = append(extra, "Status: "+st)
	}
	if c := p.ConditionsModule.Conditions; len(c) > 0 {
		extra = append(extra, "Conditions: "+strings.Join(c, ", "))
	}
	if ph := p.DesignModule.Phases; len(ph) > 0 {
		extra = append(extra, "Phases: "+strings.Join(ph, ", "))
	}

	var countries []string
	seen := map[string]bool{}
	for _, loc := range p.ContactsLocationsModule.Locations {
		if loc.Country != "" && !seen[loc.Country] {
			seen[loc.Country] = true
			countries = append(countries, loc.Country)
		}
	}

	rec.SetField(models.FieldItemType, "report")
	rec.SetField(models.FieldAbstract, p.DescriptionModule.BriefSummary)
	rec.SetField(models.FieldPublicationTitle, "ClinicalTrials.gov")
	rec.SetField(models.FieldLibraryCatalog, "ClinicalTrials.gov")
	rec.SetField(models.FieldPublisher, p.SponsorCollaboratorsModule.LeadSponsor.Name)
	rec.SetField(models.FieldType, p.DesignModule.StudyType)
	rec.SetField(models.FieldDate, date)
	rec.SetField(models.FieldYear, year)
	rec.SetField(models.FieldCountry, strings.Join(countries, ", "))
	rec.SetField(models.FieldExtra, strings.Join(extra, " | "))
	if nct != "" {
		rec.SetField(models.FieldURL, "https://clinicaltrials.gov/study/"+nct)
	}
	return rec
}

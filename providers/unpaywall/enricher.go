// Package unpaywall ergänzt Records mit DOI um freie Volltext-Links.
package unpaywall

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/providers"
)

// ErrNotConfigured wird geliefert, wenn keine Kontakt-E-Mail gesetzt ist.
var ErrNotConfigured = errors.New("unpaywall email ist nicht konfiguriert")

// Response repräsentiert die JSON-Antwort der Unpaywall-API.
type Response struct {
	IsOA           bool `json:"is_oa"`
	BestOALocation *struct {
		URL       string `json:"url"`
		URLForPDF string `json:"url_for_pdf"`
	} `json:"best_oa_location"`
}

// Enricher kapselt die Logik für Unpaywall. Ergebnisse (auch leere) werden pro DOI gecacht.
type Enricher struct {
	Config *config.Config
	Client *providers.Client
	Logger *zap.Logger

	cache *lru.Cache
}

// NewEnricher erstellt einen neuen Unpaywall-Enricher.
func NewEnricher(cfg *config.Config, logger *zap.Logger) (*Enricher, error) {
	size := cfg.UnpaywallCacheSize
	if size <= 0 {
		size = 4096
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("unpaywall cache: %w", err)
	}
	client := providers.NewClient(providers.ClientOptions{
		Timeout:       30 * time.Second,
		Interval:      100 * time.Millisecond,
		MaxAttempts:   cfg.HTTPMaxRetries,
		RespectRobots: cfg.RespectRobots,
	}, logger)
	return &Enricher{Config: cfg, Client: client, Logger: logger, cache: cache}, nil
}

// Enabled meldet, ob Anfragen an Unpaywall möglich sind.
func (e *Enricher) Enabled() bool {
	return e.Config.UnpaywallEmail != ""
}

// PDFLink holt einen freien Volltext-Link anhand der DOI. Bevorzugt wird das PDF,
// sonst die Landingpage der besten OA-Location. "" heißt: kein freier Volltext bekannt.
func (e *Enricher) PDFLink(ctx context.Context, doi string) (string, error) {
	if !e.Enabled() {
		return "", ErrNotConfigured
	}
	if v, ok := e.cache.Get(doi); ok {
		return v.(string), nil
	}

	reqURL := fmt.Sprintf("%s/%s?email=%s", e.Config.UnpaywallBaseURL, doi, url.QueryEscape(e.Config.UnpaywallEmail))
	log := e.Logger.With(zap.String("doi", doi))
	log.Debug("Rufe Unpaywall API auf.")

	var ur Response
	if err := e.Client.GetJSON(ctx, reqURL, &ur); err != nil {
		var httpErr *providers.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			e.cache.Add(doi, "")
			return "", nil
		}
		return "", err
	}

	link := ""
	if ur.BestOALocation != nil {
		link = ur.BestOALocation.URLForPDF
		if link == "" {
			link = ur.BestOALocation.URL
		}
	}
	if link != "" {
		log.Info("Volltext-Link über Unpaywall gefunden.")
	} else {
		log.Debug("Kein Volltext-Link in Unpaywall-Antwort gefunden.")
	}
	e.cache.Add(doi, link)
	return link, nil
}

package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
)

// ErrDisallowedByRobots wird geliefert, wenn robots.txt des Hosts die URL sperrt.
var ErrDisallowedByRobots = errors.New("disallowed by robots.txt")

const robotsCacheSize = 64

// RobotsChecker prüft URLs gegen die robots.txt ihres Hosts.
// Die geparste Datei wird pro Host in einem LRU-Cache gehalten.
type RobotsChecker struct {
	HTTP   *http.Client
	Agent  string
	Logger *zap.Logger

	cache *lru.Cache
}

// NewRobotsChecker erstellt einen Checker; agent ist das Produkt-Token aus dem User-Agent.
func NewRobotsChecker(httpClient *http.Client, agent string, logger *zap.Logger) *RobotsChecker {
	// lru.New schlägt nur bei Größe <= 0 fehl
	cache, _ := lru.New(robotsCacheSize)
	return &RobotsChecker{HTTP: httpClient, Agent: agent, Logger: logger, cache: cache}
}

// skipRobots meldet Hosts, deren APIs ohne robots.txt-Prüfung abgefragt werden (NCBI E-Utilities).
func skipRobots(host string) bool {
	host = strings.ToLower(host)
	return host == "ncbi.nlm.nih.gov" || strings.HasSuffix(host, ".ncbi.nlm.nih.gov")
}

// Allowed meldet, ob rawURL abgerufen werden darf. Ist robots.txt nicht
// erreichbar, gilt die URL als erlaubt.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || skipRobots(u.Hostname()) {
		return true
	}
	key := u.Scheme + "://" + u.Host

	var data *robotstxt.RobotsData
	if v, ok := r.cache.Get(key); ok {
		data = v.(*robotstxt.RobotsData)
	} else {
		data, err = r.fetch(ctx, key+"/robots.txt")
		if err != nil {
			r.Logger.Warn("robots.txt nicht verfügbar", zap.String("host", u.Host), zap.Error(err))
			return true
		}
		r.cache.Add(key, data)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, r.Agent)
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512<<10))
	if err != nil {
		return nil, err
	}
	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}

// productToken liefert den ersten Teil eines User-Agent wie "evidence-dedup/1.0 (...)".
func productToken(userAgent string) string {
	token, _, _ := strings.Cut(userAgent, " ")
	token, _, _ = strings.Cut(token, "/")
	return token
}

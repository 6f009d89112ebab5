package providers

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultUserAgent wird gesendet, wenn kein eigener User-Agent gesetzt ist.
const DefaultUserAgent = "evidence-dedup/1.0 (+https://github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project)"

// ErrRateLimited wird geliefert, wenn die API auch nach allen Versuchen mit 429 antwortet.
var ErrRateLimited = errors.New("rate limited")

// HTTPError beschreibt eine Antwort mit Nicht-2xx-Status.
type HTTPError struct {
	Status     int
	URL        string
	Body       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
}

// Unwrap ordnet 429 dem Sentinel ErrRateLimited zu.
func (e *HTTPError) Unwrap() error {
	if e.Status == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// Temporary meldet, ob ein erneuter Versuch sinnvoll ist (429 und 5xx).
func (e *HTTPError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// userAgentTransport fügt jeder Anfrage einen User-Agent-Header hinzu.
type userAgentTransport struct {
	Transport http.RoundTripper
	UserAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.UserAgent)
	return t.Transport.RoundTrip(req)
}

// ClientOptions konfiguriert einen Client.
type ClientOptions struct {
	Timeout        time.Duration
	UserAgent      string
	Interval       time.Duration // Mindestabstand zwischen Anfragen, 0 = unbegrenzt
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RespectRobots  bool // robots.txt des Hosts vor jeder Anfrage prüfen
}

// Client ist der gemeinsame, höfliche HTTP-Client aller Provider:
// er drosselt über einen rate.Limiter und wiederholt 429/5xx mit exponentiellem Backoff.
type Client struct {
	HTTP    *http.Client
	Limiter *rate.Limiter
	Logger  *zap.Logger
	Robots  *RobotsChecker // nil = keine robots.txt-Prüfung

	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewClient erstellt einen Client mit Standardwerten für fehlende Optionen.
func NewClient(opts ClientOptions, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 4
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = time.Second
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if opts.Interval > 0 {
		limit = rate.Every(opts.Interval)
	}
	c := &Client{
		HTTP: &http.Client{
			Timeout:   opts.Timeout,
			Transport: &userAgentTransport{Transport: http.DefaultTransport, UserAgent: opts.UserAgent},
		},
		Limiter:        rate.NewLimiter(limit, 1),
		Logger:         logger,
		maxAttempts:    opts.MaxAttempts,
		initialBackoff: opts.InitialBackoff,
		maxBackoff:     opts.MaxBackoff,
	}
	if opts.RespectRobots {
		c.Robots = NewRobotsChecker(c.HTTP, productToken(opts.UserAgent), logger)
	}
	return c
}

// Get ruft url ab und liefert den Body. 429 und 5xx werden wiederholt,
// andere 4xx brechen sofort ab. Von robots.txt gesperrte URLs liefern ErrDisallowedByRobots.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.Robots != nil && !c.Robots.Allowed(ctx, url) {
		return nil, fmt.Errorf("GET %s: %w", url, ErrDisallowedByRobots)
	}
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
		body, err := c.do(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, lastErr
		}
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.Temporary() {
			return nil, err
		}
		if attempt == c.maxAttempts-1 {
			break
		}

		delay := c.backoff(attempt)
		if httpErr != nil && httpErr.RetryAfter > 0 {
			delay = min(httpErr.RetryAfter, c.maxBackoff)
		}
		c.Logger.Warn("HTTP-Anfrage fehlgeschlagen, neuer Versuch",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, lastErr
		case <-timer.C:
		}
	}
	return nil, lastErr
}

// GetJSON ruft url ab und dekodiert die Antwort nach v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode json from %s: %w", url, err)
	}
	return nil
}

// GetXML ruft url ab und dekodiert die Antwort nach v.
func (c *Client) GetXML(ctx context.Context, url string, v any) error {
	body, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode xml from %s: %w", url, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(body)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		return nil, &HTTPError{
			Status:     resp.StatusCode,
			URL:        url,
			Body:       snippet,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return body, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.initialBackoff) * math.Pow(2, float64(attempt))
	if delay > float64(c.maxBackoff) {
		delay = float64(c.maxBackoff)
	}
	// ±25 % Jitter
	delay += (rand.Float64()*2 - 1) * delay * 0.25
	return time.Duration(delay)
}

// parseRetryAfter versteht Sekundenangaben und HTTP-Datumswerte.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

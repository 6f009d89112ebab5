package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	HTTPPort     string `envconfig:"HTTP_PORT" default:"4242"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`

	// Persistenz: "sqlite" (Standard) oder "postgres"
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"sqlite"`
	SQLitePath     string `envconfig:"SQLITE_PATH" default:"records.db"`

	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`

	PubMedBaseURL   string `envconfig:"PUBMED_BASE_URL" default:"https://eutils.ncbi.nlm.nih.gov/entrez/eutils"`
	PubMedAPIKey    string `envconfig:"PUBMED_API_KEY"`
	PubMedEmail     string `envconfig:"PUBMED_EMAIL"`
	PubMedTool      string `envconfig:"PUBMED_TOOL" default:"evidence-dedup"`
	PubMedBatchSize int    `envconfig:"PUBMED_BATCH_SIZE" default:"200"`

	CrossRefBaseURL string `envconfig:"CROSSREF_BASE_URL" default:"https://api.crossref.org"`
	CrossRefMailto  string `envconfig:"CROSSREF_MAILTO"`

	ClinicalTrialsBaseURL string `envconfig:"CLINICALTRIALS_BASE_URL" default:"https://clinicaltrials.gov/api/v2"`
	EuropePMCBaseURL      string `envconfig:"EUROPEPMC_BASE_URL" default:"https://www.ebi.ac.uk/europepmc/webservices/rest"`

	// Unpaywall-API für freie Volltext-Links
	UnpaywallBaseURL   string `envconfig:"UNPAYWALL_BASE_URL" default:"https://api.unpaywall.org/v2"`
	UnpaywallEmail     string `envconfig:"UNPAYWALL_EMAIL"`
	UnpaywallCacheSize int    `envconfig:"UNPAYWALL_CACHE_SIZE" default:"4096"`

	// Provider-Konfiguration
	EnabledProviders    string `envconfig:"ENABLED_PROVIDERS" default:"pubmed,crossref,clinicaltrials"`
	MaxResultsPerSource int    `envconfig:"MAX_RESULTS_PER_SOURCE" default:"100"`
	FromYear            int    `envconfig:"FROM_YEAR"`
	ToYear              int    `envconfig:"TO_YEAR"`
	HTTPMaxRetries      int    `envconfig:"HTTP_MAX_RETRIES" default:"4"`
	ProviderConcurrency int    `envconfig:"PROVIDER_CONCURRENCY" default:"3"`
	RespectRobots       bool   `envconfig:"RESPECT_ROBOTS" default:"true"`

	SearchQueries     string  `envconfig:"SEARCH_QUERIES" default:"dexrazoxane anthracycline cardiotoxicity;beta-blocker trastuzumab cardiotoxicity;statin anthracycline cardioprotection"`
	PICOFilterEnabled bool    `envconfig:"PICO_FILTER_ENABLED" default:"true"`
	PICOFile          string  `envconfig:"PICO_FILE"`
	FuzzyThreshold    float64 `envconfig:"FUZZY_TITLE_THRESHOLD" default:"0.92"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 0 * * *"`
	ExportDir    string `envconfig:"EXPORT_DIR" default:"exports"`

	StratoS3Key    string `envconfig:"STRATO_S3_KEY"`
	StratoS3Secret string `envconfig:"STRATO_S3_SECRET"`
	StratoS3URL    string `envconfig:"STRATO_S3_URL"`
	StratoS3Region string `envconfig:"STRATO_S3_REGION" default:"eu-central-1"`
	StratoS3Bucket string `envconfig:"STRATO_S3_BUCKET"`

	// Backups des Record-Bestands (cmd/backup)
	BackupPrefix string `envconfig:"BACKUP_PREFIX" default:"backups/"`
	KeepBackups  int    `envconfig:"KEEP_BACKUPS" default:"7"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Providers liefert die aktivierten Provider-Namen in Kleinschreibung.
func (c *Config) Providers() []string {
	return splitList(c.EnabledProviders, ",", true)
}

// Queries liefert die konfigurierten Suchbegriffe (Semikolon-getrennt).
func (c *Config) Queries() []string {
	return splitList(c.SearchQueries, ";", false)
}

// S3Enabled meldet, ob ein Export-Upload konfiguriert ist.
func (c *Config) S3Enabled() bool {
	return c.StratoS3Bucket != "" && c.StratoS3URL != ""
}

// Validate prüft Kombinationen, die envconfig allein nicht abdeckt.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must be set for the sqlite backend")
		}
	case "postgres":
		if c.DBHost == "" || c.DBUser == "" || c.DBName == "" {
			return fmt.Errorf("DB_HOST, DB_USER and DB_NAME must be set for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.FromYear != 0 && c.ToYear != 0 && c.FromYear > c.ToYear {
		return fmt.Errorf("FROM_YEAR %d is after TO_YEAR %d", c.FromYear, c.ToYear)
	}
	if c.FuzzyThreshold <= 0 || c.FuzzyThreshold > 1 {
		return fmt.Errorf("FUZZY_TITLE_THRESHOLD must be in (0, 1], got %v", c.FuzzyThreshold)
	}
	if c.PubMedBatchSize <= 0 {
		c.PubMedBatchSize = 200
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func splitList(s, sep string, lower bool) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lower {
			part = strings.ToLower(part)
		}
		out = append(out, part)
	}
	return out
}

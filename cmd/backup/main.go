package main

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/export"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/storage"
)

var rootCmd = &cobra.Command{
	Use:   "backup",
	Short: "Sichert alle Records als gzip-JSON nach S3 und rotiert alte Backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBackup(cmd.Context())
	},
	SilenceUsage: true,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Ersetzt den gespeicherten Bestand durch ein Backup (.json.gz) oder records.json",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRestore(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config load error: %w", err)
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}
	return cfg, logger, nil
}

func runBackup(ctx context.Context) error {
	log.Println("Starte Backup-Prozess...")

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck
	if !cfg.S3Enabled() {
		return errors.New("STRATO_S3_URL und STRATO_S3_BUCKET müssen gesetzt sein")
	}

	// 1. Snapshot laden
	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error("Fehler beim Öffnen des Repositorys", zap.Error(err))
		return err
	}
	defer repo.Close()

	recs, err := repo.LoadAll(ctx)
	if err != nil {
		logger.Error("Fehler beim Laden der Records", zap.Error(err))
		return err
	}

	// 2. Backup erstellen
	data, err := createDump(recs)
	if err != nil {
		logger.Error("Fehler beim Erstellen des Backups", zap.Error(err))
		return err
	}

	// 3. Backup nach S3 hochladen
	uploader, err := storage.NewUploader(ctx, cfg, logger)
	if err != nil {
		logger.Error("Fehler beim Erstellen des S3-Clients", zap.Error(err))
		return err
	}
	key := backupKey(cfg.BackupPrefix, time.Now())
	if _, err := uploader.Upload(ctx, key, data); err != nil {
		logger.Error("Fehler beim Hochladen nach S3", zap.Error(err))
		return err
	}
	logger.Info("Backup hochgeladen", zap.String("bucket", cfg.StratoS3Bucket), zap.String("key", key), zap.Int("records", len(recs)))

	// 4. Alte Backups rotieren
	deleted, err := uploader.Rotate(ctx, cfg.BackupPrefix, cfg.KeepBackups)
	if err != nil {
		logger.Error("Fehler bei der Rotation alter Backups", zap.Error(err))
		return err
	}
	logger.Info("Backup-Prozess erfolgreich abgeschlossen.", zap.Int("rotated", len(deleted)))
	return nil
}

func runRestore(ctx context.Context, path string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	recs, err := readDump(f)
	if err != nil {
		logger.Error("Fehler beim Lesen des Backups", zap.String("file", path), zap.Error(err))
		return err
	}

	repo, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error("Fehler beim Öffnen des Repositorys", zap.Error(err))
		return err
	}
	defer repo.Close()

	if err := repo.SaveAll(ctx, recs); err != nil {
		logger.Error("Fehler beim Schreiben der Records", zap.Error(err))
		return err
	}
	logger.Info("Backup wiederhergestellt", zap.String("file", path), zap.Int("records", len(recs)))
	return nil
}

// createDump schreibt die Records als gzip-komprimiertes JSON.
func createDump(recs []models.Record) ([]byte, error) {
	if recs == nil {
		recs = []models.Record{}
	}
	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if err := export.WriteJSON(gzipWriter, recs); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return buf.Bytes(), nil
}

// readDump liest ein gzip-komprimiertes Backup oder ein unkomprimiertes records.json.
func readDump(r io.Reader) ([]models.Record, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		return export.ReadJSON(zr)
	}
	return export.ReadJSON(br)
}

// backupKey liefert einen chronologisch sortierbaren Objektnamen.
func backupKey(prefix string, now time.Time) string {
	return fmt.Sprintf("%sbackup-%s.json.gz", prefix, now.UTC().Format("2006-01-02T15-04-05Z"))
}

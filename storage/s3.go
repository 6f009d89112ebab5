package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/config"
)

// NewS3Client erstellt einen S3-Client für Strato HiDrive.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.StratoS3URL,
				SigningRegion:     cfg.StratoS3Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.StratoS3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.StratoS3Key, cfg.StratoS3Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, eris.Wrap(err, "s3: load config")
	}

	return s3.NewFromConfig(awsCfg), nil
}

// ObjectAPI ist der Teil des S3-Clients, den der Uploader braucht.
type ObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Uploader lädt Exporte und Backups in einen Bucket.
type Uploader struct {
	Client  ObjectAPI
	Bucket  string
	BaseURL string
	Logger  *zap.Logger
}

// NewUploader erstellt einen Uploader für den konfigurierten Bucket.
func NewUploader(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Uploader, error) {
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Uploader{Client: client, Bucket: cfg.StratoS3Bucket, BaseURL: cfg.StratoS3URL, Logger: logger}, nil
}

// Upload lädt data unter key hoch und gibt den Link zurück.
func (u *Uploader) Upload(ctx context.Context, key string, data []byte) (string, error) {
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(key)),
	})
	if err != nil {
		return "", eris.Wrapf(err, "s3: put %s", key)
	}
	link := fmt.Sprintf("%s/%s/%s", u.BaseURL, u.Bucket, key)
	u.Logger.Debug("Objekt hochgeladen", zap.String("key", key))
	return link, nil
}

// UploadDir lädt alle regulären Dateien aus dir (nicht rekursiv) unter prefix hoch.
func (u *Uploader) UploadDir(ctx context.Context, prefix, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "s3: read dir %s", dir)
	}
	var links []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return links, eris.Wrapf(err, "s3: read %s", e.Name())
		}
		link, err := u.Upload(ctx, strings.TrimSuffix(prefix, "/")+"/"+e.Name(), data)
		if err != nil {
			return links, err
		}
		links = append(links, link)
	}
	u.Logger.Info("Export hochgeladen", zap.String("prefix", prefix), zap.Int("files", len(links)))
	return links, nil
}

// Rotate behält unter prefix die keep neuesten Objekte (nach Schlüssel sortiert) und löscht den Rest.
// Schlüssel mit Zeitstempel im Namen sortieren damit chronologisch.
func (u *Uploader) Rotate(ctx context.Context, prefix string, keep int) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := u.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(u.Bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "s3: list %s", prefix)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	if keep < 0 {
		keep = 0
	}
	if len(keys) <= keep {
		return nil, nil
	}
	sort.Strings(keys)
	stale := keys[:len(keys)-keep]
	for _, key := range stale {
		if _, err := u.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(u.Bucket),
			Key:    aws.String(key),
		}); err != nil {
			return nil, eris.Wrapf(err, "s3: delete %s", key)
		}
		u.Logger.Info("Altes Objekt gelöscht", zap.String("key", key))
	}
	return stale, nil
}

func contentType(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".gz":
		return "application/gzip"
	default:
		return "application/octet-stream"
	}
}

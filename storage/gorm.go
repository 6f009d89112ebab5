package storage

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// GormRepository implementiert Repository auf PostgreSQL über GORM.
type GormRepository struct {
	DB *gorm.DB
}

// NewGorm verbindet sich mit der PostgreSQL-Datenbank unter dsn.
func NewGorm(dsn string) (*GormRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, eris.Wrap(err, "postgres: open")
	}
	return &GormRepository{DB: db}, nil
}

// Migrate führt die Auto-Migration für alle Tabellen aus.
func (r *GormRepository) Migrate(ctx context.Context) error {
	err := r.DB.WithContext(ctx).AutoMigrate(&models.RecordRow{}, &models.SearchQuery{}, &models.PICOKeyword{})
	return eris.Wrap(err, "postgres: migrate")
}

func (r *GormRepository) Close() error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return eris.Wrap(err, "postgres: underlying db")
	}
	return sqlDB.Close()
}

func upsertRows(db *gorm.DB, rows []models.RecordRow) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "position"}},
		DoUpdates: clause.AssignmentColumns([]string{"canonical_id", "doi", "pmid", "trial_id", "title", "normalized_title", "source", "fields", "updated_at"}),
	}).CreateInBatches(rows, 500).Error
}

func (r *GormRepository) Save(ctx context.Context, pos int, rec models.Record) error {
	if pos < 0 {
		return eris.Errorf("postgres: invalid position %d", pos)
	}
	row := models.NewRecordRow(pos, rec)
	return eris.Wrapf(upsertRows(r.DB.WithContext(ctx), []models.RecordRow{row}), "postgres: upsert record %d", pos)
}

func (r *GormRepository) SaveAll(ctx context.Context, recs []models.Record) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(recs) > 0 {
			rows := make([]models.RecordRow, len(recs))
			for i, rec := range recs {
				rows[i] = models.NewRecordRow(i, rec)
			}
			if err := upsertRows(tx, rows); err != nil {
				return err
			}
		}
		return tx.Where("position >= ?", len(recs)).Delete(&models.RecordRow{}).Error
	})
	return eris.Wrap(err, "postgres: save all")
}

func (r *GormRepository) LoadAll(ctx context.Context) ([]models.Record, error) {
	var rows []models.RecordRow
	if err := r.DB.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, eris.Wrap(err, "postgres: load records")
	}
	out := make([]models.Record, len(rows))
	for i, row := range rows {
		out[i] = row.Record()
	}
	return out, nil
}

func (r *GormRepository) SearchQueries(ctx context.Context) ([]models.SearchQuery, error) {
	var out []models.SearchQuery
	err := r.DB.WithContext(ctx).Order("id").Find(&out).Error
	return out, eris.Wrap(err, "postgres: load search queries")
}

func (r *GormRepository) AddSearchQuery(ctx context.Context, q *models.SearchQuery) error {
	if err := r.DB.WithContext(ctx).Create(q).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return eris.Wrapf(ErrDuplicate, "search query %q", q.Term)
		}
		return eris.Wrap(err, "postgres: create search query")
	}
	return nil
}

func (r *GormRepository) PICOKeywords(ctx context.Context) ([]models.PICOKeyword, error) {
	var out []models.PICOKeyword
	err := r.DB.WithContext(ctx).Order("id").Find(&out).Error
	return out, eris.Wrap(err, "postgres: load pico keywords")
}

func (r *GormRepository) AddPICOKeyword(ctx context.Context, k *models.PICOKeyword) error {
	if err := r.DB.WithContext(ctx).Create(k).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return eris.Wrapf(ErrDuplicate, "pico keyword %q", k.Term)
		}
		return eris.Wrap(err, "postgres: create pico keyword")
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
)

// SQLiteRepository implementiert Repository mit modernc.org/sqlite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLite öffnet eine SQLite-Datenbank unter dsn und aktiviert den WAL-Modus.
func NewSQLite(dsn string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteRepository{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS records (
	position         INTEGER PRIMARY KEY,
	canonical_id     TEXT NOT NULL,
	doi              TEXT NOT NULL DEFAULT '',
	pmid             TEXT NOT NULL DEFAULT '',
	trial_id         TEXT NOT NULL DEFAULT '',
	title            TEXT NOT NULL DEFAULT '',
	normalized_title TEXT NOT NULL DEFAULT '',
	source           TEXT NOT NULL DEFAULT '',
	fields           TEXT NOT NULL DEFAULT '{}',
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS search_queries (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	term  TEXT NOT NULL UNIQUE,
	label TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS pico_keywords (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	category TEXT NOT NULL,
	term     TEXT NOT NULL UNIQUE
);

CREATE INDEX IF NOT EXISTS idx_records_canonical_id ON records(canonical_id);
CREATE INDEX IF NOT EXISTS idx_records_doi ON records(doi);
CREATE INDEX IF NOT EXISTS idx_records_pmid ON records(pmid);
CREATE INDEX IF NOT EXISTS idx_pico_keywords_category ON pico_keywords(category);
`

// Migrate legt die Tabellen an, falls sie fehlen.
func (s *SQLiteRepository) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteRepository) Close() error {
	return s.db.Close()
}

const upsertRecordSQL = `
INSERT INTO records (position, canonical_id, doi, pmid, trial_id, title, normalized_title, source, fields, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(position) DO UPDATE SET
	canonical_id = excluded.canonical_id,
	doi = excluded.doi,
	pmid = excluded.pmid,
	trial_id = excluded.trial_id,
	title = excluded.title,
	normalized_title = excluded.normalized_title,
	source = excluded.source,
	fields = excluded.fields,
	updated_at = excluded.updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertRecord(ctx context.Context, db execer, pos int, rec models.Record) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal fields of record %d", pos)
	}
	if rec.Fields == nil {
		fields = []byte("{}")
	}
	_, err = db.ExecContext(ctx, upsertRecordSQL,
		pos, rec.CanonicalID(), rec.DOI, rec.PMID, rec.TrialID, rec.Title,
		rec.NormalizedTitle(), rec.Source, string(fields), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert record %d", pos)
}

func (s *SQLiteRepository) Save(ctx context.Context, pos int, rec models.Record) error {
	if pos < 0 {
		return eris.Errorf("sqlite: invalid position %d", pos)
	}
	return upsertRecord(ctx, s.db, pos, rec)
}

func (s *SQLiteRepository) SaveAll(ctx context.Context, recs []models.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	for i, rec := range recs {
		if err := upsertRecord(ctx, tx, i, rec); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE position >= ?`, len(recs)); err != nil {
		return eris.Wrap(err, "sqlite: trim records")
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

func (s *SQLiteRepository) LoadAll(ctx context.Context) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doi, pmid, trial_id, title, source, fields FROM records ORDER BY position`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query records")
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		var rec models.Record
		var fields string
		if err := rows.Scan(&rec.DOI, &rec.PMID, &rec.TrialID, &rec.Title, &rec.Source, &fields); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		if fields != "" && fields != "{}" && fields != "null" {
			if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal fields")
			}
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate records")
}

func (s *SQLiteRepository) SearchQueries(ctx context.Context) ([]models.SearchQuery, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, term, label FROM search_queries ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query search_queries")
	}
	defer rows.Close()

	var out []models.SearchQuery
	for rows.Next() {
		var q models.SearchQuery
		if err := rows.Scan(&q.ID, &q.Term, &q.Label); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan search_query")
		}
		out = append(out, q)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate search_queries")
}

func (s *SQLiteRepository) AddSearchQuery(ctx context.Context, q *models.SearchQuery) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO search_queries (term, label) VALUES (?, ?)`, q.Term, q.Label)
	if err != nil {
		if isUniqueViolation(err) {
			return eris.Wrapf(ErrDuplicate, "search query %q", q.Term)
		}
		return eris.Wrap(err, "sqlite: insert search_query")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return eris.Wrap(err, "sqlite: last insert id")
	}
	q.ID = uint(id)
	return nil
}

func (s *SQLiteRepository) PICOKeywords(ctx context.Context) ([]models.PICOKeyword, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, category, term FROM pico_keywords ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query pico_keywords")
	}
	defer rows.Close()

	var out []models.PICOKeyword
	for rows.Next() {
		var k models.PICOKeyword
		if err := rows.Scan(&k.ID, &k.Category, &k.Term); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan pico_keyword")
		}
		out = append(out, k)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate pico_keywords")
}

func (s *SQLiteRepository) AddPICOKeyword(ctx context.Context, k *models.PICOKeyword) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pico_keywords (category, term) VALUES (?, ?)`, k.Category, k.Term)
	if err != nil {
		if isUniqueViolation(err) {
			return eris.Wrapf(ErrDuplicate, "pico keyword %q", k.Term)
		}
		return eris.Wrap(err, "sqlite: insert pico_keyword")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return eris.Wrap(err, "sqlite: last insert id")
	}
	k.ID = uint(id)
	return nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

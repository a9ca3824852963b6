package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"macro-observer/src/logger"
	"macro-observer/src/models"

	_ "modernc.org/sqlite"
)

// SQLite batch constants
const (
	sqliteMaxVars   = 32000
	paramsPerRow    = 5
	sqliteBatchSize = sqliteMaxVars / paramsPerRow // ~6400 rows
)

// -----------------------------------------------------------------------------

// SQLiteCacheStore holds raw-dataset snapshots for the fetch cache. The
// default DSN is ":memory:", so the store lives and dies with the process;
// it exists for transactional snapshot semantics, not durability.
type SQLiteCacheStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteCacheStore(cfg *models.MConfig, log *logger.Logger) *SQLiteCacheStore {
	return &SQLiteCacheStore{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *SQLiteCacheStore) Initialize() error {
	dsn := d.Config.Cache.DSN
	if dsn == "" {
		dsn = ":memory:"
	}

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	// A snapshot write and its reader must see one consistent database;
	// a second connection to :memory: would see a different one.
	db.SetMaxOpenConns(1)

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteCacheStore) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			cache_key  TEXT PRIMARY KEY,
			fetched_at INTEGER,
			failures   TEXT
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create snapshots: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS observations (
			cache_key TEXT,
			code      TEXT,
			name      TEXT,
			date      INTEGER,
			value     REAL,
			PRIMARY KEY (cache_key, code, date)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create observations: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// SaveSnapshot replaces the snapshot under key in one transaction. Readers
// either see the previous snapshot or the new one, never a mix.
func (d *SQLiteCacheStore) SaveSnapshot(key string, dataset models.MRawDataset) error {
	failuresJSON, err := json.Marshal(dataset.Failures)
	if err != nil {
		return fmt.Errorf("failed to encode failures: %w", err)
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM observations WHERE cache_key = ?", key); err != nil {
		return fmt.Errorf("failed to clear observations: %w", err)
	}

	// Flatten for batched insert
	type row struct {
		code  string
		name  string
		date  int64
		value float64
	}
	var rows []row
	for code, series := range dataset.Series {
		for _, obs := range series.Obs {
			rows = append(rows, row{code: code, name: series.Name, date: obs.Date.Unix(), value: obs.Value})
		}
	}

	for start := 0; start < len(rows); start += sqliteBatchSize {
		end := start + sqliteBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		placeholders := make([]string, len(batch))
		args := make([]interface{}, 0, len(batch)*paramsPerRow)
		for i, r := range batch {
			placeholders[i] = "(?, ?, ?, ?, ?)"
			args = append(args, key, r.code, r.name, r.date, r.value)
		}

		query := "INSERT INTO observations (cache_key, code, name, date, value) VALUES " +
			strings.Join(placeholders, ", ")
		if _, err := tx.Exec(query, args...); err != nil {
			return fmt.Errorf("failed to insert observations: %w", err)
		}
	}

	// Meta row last: a snapshot without it does not exist for readers.
	_, err = tx.Exec(`
		INSERT INTO snapshots (cache_key, fetched_at, failures) VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET fetched_at = excluded.fetched_at, failures = excluded.failures
	`, key, dataset.FetchedAt.Unix(), string(failuresJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot meta: %w", err)
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

// LoadSnapshot reads the snapshot under key in one transaction.
func (d *SQLiteCacheStore) LoadSnapshot(key string) (models.MRawDataset, bool, error) {
	tx, err := d.DB.Begin()
	if err != nil {
		return models.MRawDataset{}, false, err
	}
	defer tx.Rollback()

	var fetchedAt int64
	var failuresJSON string
	err = tx.QueryRow("SELECT fetched_at, failures FROM snapshots WHERE cache_key = ?", key).
		Scan(&fetchedAt, &failuresJSON)
	if err == sql.ErrNoRows {
		return models.MRawDataset{}, false, nil
	}
	if err != nil {
		return models.MRawDataset{}, false, fmt.Errorf("failed to read snapshot meta: %w", err)
	}

	dataset := models.MRawDataset{
		Series:    make(map[string]models.MSeries),
		FetchedAt: time.Unix(fetchedAt, 0).UTC(),
	}
	if err := json.Unmarshal([]byte(failuresJSON), &dataset.Failures); err != nil {
		return models.MRawDataset{}, false, fmt.Errorf("failed to decode failures: %w", err)
	}

	rows, err := tx.Query(
		"SELECT code, name, date, value FROM observations WHERE cache_key = ? ORDER BY code, date", key)
	if err != nil {
		return models.MRawDataset{}, false, fmt.Errorf("failed to read observations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code, name string
		var date int64
		var value float64
		if err := rows.Scan(&code, &name, &date, &value); err != nil {
			return models.MRawDataset{}, false, err
		}

		series := dataset.Series[code]
		if series.Code == "" {
			series.Code = code
			series.Name = name
		}
		series.Obs = append(series.Obs, models.MObservation{
			Date:  time.Unix(date, 0).UTC(),
			Value: value,
		})
		dataset.Series[code] = series
	}
	if err := rows.Err(); err != nil {
		return models.MRawDataset{}, false, err
	}

	return dataset, true, tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteCacheStore) DeleteSnapshot(key string) error {
	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM observations WHERE cache_key = ?", key); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM snapshots WHERE cache_key = ?", key); err != nil {
		return err
	}
	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteCacheStore) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

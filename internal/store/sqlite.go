package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// isBusyError reports whether the error is a transient SQLITE_BUSY or
// SQLITE_LOCKED condition worth retrying.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "SQLITE_BUSY")
}

// execRetry runs a write statement, retrying briefly when another
// connection holds the write lock.
func (s *SQLiteDB) execRetry(query string, args ...interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(10*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			if isBusyError(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate() error {
	// First, create base tables
	baseMigrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed TEXT NOT NULL,
			status TEXT NOT NULL,
			floor INTEGER NOT NULL DEFAULT 1,
			player_hp INTEGER NOT NULL DEFAULT 0,
			player_max_hp INTEGER NOT NULL DEFAULT 0,
			state_json TEXT NOT NULL,
			engine_version TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS scans (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL DEFAULT '',
			base_seed TEXT NOT NULL,
			policy_name TEXT NOT NULL DEFAULT '',
			run_count INTEGER NOT NULL DEFAULT 0,
			victories INTEGER NOT NULL DEFAULT 0,
			defeats INTEGER NOT NULL DEFAULT 0,
			avg_floor REAL NOT NULL DEFAULT 0,
			avg_final_hp REAL NOT NULL DEFAULT 0,
			params_json TEXT NOT NULL DEFAULT '{}',
			engine_version TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS scan_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id TEXT NOT NULL,
			seed TEXT NOT NULL,
			status TEXT NOT NULL,
			floor_reached INTEGER NOT NULL,
			final_hp INTEGER NOT NULL,
			turns INTEGER NOT NULL,
			FOREIGN KEY (scan_id) REFERENCES scans(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_scan_id ON scan_samples(scan_id)`,
		`CREATE INDEX IF NOT EXISTS idx_samples_status ON scan_samples(scan_id, status)`,
	}

	for _, migration := range baseMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("base migration failed: %w", err)
		}
	}

	// Then, add new columns if they don't exist
	alterMigrations := []string{
		`ALTER TABLE runs ADD COLUMN difficulty_id TEXT DEFAULT ''`,
		`ALTER TABLE runs ADD COLUMN condition_id TEXT DEFAULT ''`,
	}

	for _, migration := range alterMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			// Duplicate column errors are expected on re-migration
			if !isDuplicateColumnError(err) {
				return fmt.Errorf("alter migration failed: %w", err)
			}
		}
	}

	// Finally, create performance indexes
	indexMigrations := []string{
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_status_created ON runs(status, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at DESC)`,
	}

	for _, migration := range indexMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("index migration failed: %w", err)
		}
	}

	return nil
}

// isDuplicateColumnError checks if the error is a duplicate column error
func isDuplicateColumnError(err error) bool {
	return strings.Contains(err.Error(), "duplicate column name")
}

// SaveRun saves a run record to the database
func (s *SQLiteDB) SaveRun(run *RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	query := `INSERT INTO runs (
		id, seed, status, difficulty_id, condition_id, floor,
		player_hp, player_max_hp, state_json, engine_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.execRetry(query,
		run.ID, run.Seed, run.Status, run.DifficultyID, run.ConditionID,
		run.Floor, run.PlayerHP, run.PlayerMaxHP, run.StateJSON, run.EngineVersion,
	)
}

// UpdateRun updates an existing run record
func (s *SQLiteDB) UpdateRun(run *RunRecord) error {
	query := `UPDATE runs SET
		status = ?, difficulty_id = ?, condition_id = ?, floor = ?,
		player_hp = ?, player_max_hp = ?, state_json = ?, engine_version = ?,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	return s.execRetry(query,
		run.Status, run.DifficultyID, run.ConditionID, run.Floor,
		run.PlayerHP, run.PlayerMaxHP, run.StateJSON, run.EngineVersion,
		run.ID,
	)
}

const runColumns = `id, seed, status, difficulty_id, condition_id, floor,
	player_hp, player_max_hp, state_json, engine_version, created_at, updated_at`

func scanRunRow(scan func(dest ...interface{}) error) (*RunRecord, error) {
	var run RunRecord
	var difficultyID, conditionID sql.NullString

	err := scan(
		&run.ID, &run.Seed, &run.Status, &difficultyID, &conditionID,
		&run.Floor, &run.PlayerHP, &run.PlayerMaxHP, &run.StateJSON,
		&run.EngineVersion, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if difficultyID.Valid {
		run.DifficultyID = difficultyID.String
	}
	if conditionID.Valid {
		run.ConditionID = conditionID.String
	}
	return &run, nil
}

// GetRun retrieves a run record by ID
func (s *SQLiteDB) GetRun(id string) (*RunRecord, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRunRow(row.Scan)
}

// ListRuns retrieves runs with pagination and status filtering
func (s *SQLiteDB) ListRuns(query RunsQuery) (*RunsList, error) {
	whereClause := ""
	args := []interface{}{}

	if query.Status != "" {
		whereClause = "WHERE status = ?"
		args = append(args, query.Status)
	}

	countQuery := "SELECT COUNT(*) FROM runs " + whereClause
	var totalCount int
	if err := s.db.QueryRow(countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	if query.PerPage <= 0 {
		query.PerPage = 50
	}
	if query.Page <= 0 {
		query.Page = 1
	}

	totalPages := (totalCount + query.PerPage - 1) / query.PerPage
	offset := (query.Page - 1) * query.PerPage

	mainQuery := `SELECT ` + runColumns + ` FROM runs ` + whereClause + `
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`
	args = append(args, query.PerPage, offset)

	rows, err := s.db.Query(mainQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRunRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return &RunsList{
		Runs:       runs,
		TotalCount: totalCount,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages,
	}, nil
}

// DeleteRun removes a run record by ID
func (s *SQLiteDB) DeleteRun(id string) error {
	res, err := s.db.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SaveScan saves a scan summary to the database
func (s *SQLiteDB) SaveScan(scan *ScanRecord) error {
	if scan.ID == "" {
		scan.ID = uuid.New().String()
	}
	if scan.ParamsJSON == "" {
		scan.ParamsJSON = "{}"
	}

	query := `INSERT INTO scans (
		id, label, base_seed, policy_name, run_count, victories, defeats,
		avg_floor, avg_final_hp, params_json, engine_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.execRetry(query,
		scan.ID, scan.Label, scan.BaseSeed, scan.PolicyName, scan.RunCount,
		scan.Victories, scan.Defeats, scan.AvgFloor, scan.AvgFinalHP,
		scan.ParamsJSON, scan.EngineVersion,
	)
}

// SaveSamples saves scan samples in one transaction
func (s *SQLiteDB) SaveSamples(scanID string, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO scan_samples
		(scan_id, seed, status, floor_reached, final_hp, turns)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sample := range samples {
		if _, err := stmt.Exec(scanID, sample.Seed, sample.Status,
			sample.FloorReached, sample.FinalHP, sample.Turns); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetScan retrieves a scan summary by ID
func (s *SQLiteDB) GetScan(id string) (*ScanRecord, error) {
	query := `SELECT id, label, base_seed, policy_name, run_count, victories,
		defeats, avg_floor, avg_final_hp, params_json, engine_version, created_at
		FROM scans WHERE id = ?`

	var scan ScanRecord
	err := s.db.QueryRow(query, id).Scan(
		&scan.ID, &scan.Label, &scan.BaseSeed, &scan.PolicyName, &scan.RunCount,
		&scan.Victories, &scan.Defeats, &scan.AvgFloor, &scan.AvgFinalHP,
		&scan.ParamsJSON, &scan.EngineVersion, &scan.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

// ListScans retrieves scan summaries with pagination
func (s *SQLiteDB) ListScans(page, perPage int) (*ScansList, error) {
	var totalCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM scans").Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get scans count: %w", err)
	}

	if perPage <= 0 {
		perPage = 50
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (totalCount + perPage - 1) / perPage
	offset := (page - 1) * perPage

	query := `SELECT id, label, base_seed, policy_name, run_count, victories,
		defeats, avg_floor, avg_final_hp, params_json, engine_version, created_at
		FROM scans ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := s.db.Query(query, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query scans: %w", err)
	}
	defer rows.Close()

	var scans []ScanRecord
	for rows.Next() {
		var scan ScanRecord
		if err := rows.Scan(
			&scan.ID, &scan.Label, &scan.BaseSeed, &scan.PolicyName, &scan.RunCount,
			&scan.Victories, &scan.Defeats, &scan.AvgFloor, &scan.AvgFinalHP,
			&scan.ParamsJSON, &scan.EngineVersion, &scan.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scans: %w", err)
	}

	return &ScansList{
		Scans:      scans,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// GetScanSamples retrieves samples for a scan with server-side pagination
func (s *SQLiteDB) GetScanSamples(scanID string, page, perPage int) (*SamplesPage, error) {
	var totalCount int
	err := s.db.QueryRow("SELECT COUNT(*) FROM scan_samples WHERE scan_id = ?", scanID).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to get samples count: %w", err)
	}

	if perPage <= 0 {
		perPage = 100
	}
	if page <= 0 {
		page = 1
	}
	totalPages := (totalCount + perPage - 1) / perPage
	offset := (page - 1) * perPage

	query := `SELECT id, scan_id, seed, status, floor_reached, final_hp, turns
		FROM scan_samples WHERE scan_id = ?
		ORDER BY id
		LIMIT ? OFFSET ?`

	rows, err := s.db.Query(query, scanID, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var sample Sample
		if err := rows.Scan(&sample.ID, &sample.ScanID, &sample.Seed,
			&sample.Status, &sample.FloorReached, &sample.FinalHP, &sample.Turns); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating samples: %w", err)
	}

	return &SamplesPage{
		Samples:    samples,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

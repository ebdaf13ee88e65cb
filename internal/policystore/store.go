// Package policystore provides SQLite persistence for saved autoplay policies.
package policystore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a policy id does not exist.
var ErrNotFound = errors.New("policy not found")

// Policy is a saved autoplay script that scans can reference by id.
type Policy struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	ScanCount   int        `json:"scanCount"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
}

// PolicyPage is a paginated policy listing.
type PolicyPage struct {
	Policies   []Policy `json:"policies"`
	TotalCount int      `json:"totalCount"`
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalPages int      `json:"totalPages"`
}

// Store provides SQLite persistence for policies.
type Store struct {
	db *sql.DB
}

// New creates a new policy store using the given SQLite database path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("policystore: open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("policystore: enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("policystore: enable foreign keys: %w", err)
	}
	return &Store{db: db}, nil
}

// NewFromDB wraps an existing sql.DB.
func NewFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate runs the policy table migrations.
func (s *Store) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS policies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			scan_count INTEGER NOT NULL DEFAULT 0,
			last_used_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_policies_name ON policies(name)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("policystore: migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new policy and returns its ID.
func (s *Store) Create(p *Policy) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.Exec(
		`INSERT INTO policies (id, name, description, source) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Source,
	)
	if err != nil {
		return "", fmt.Errorf("policystore: create policy: %w", err)
	}
	return p.ID, nil
}

// Update replaces a policy's name, description and source.
func (s *Store) Update(p *Policy) error {
	res, err := s.db.Exec(
		`UPDATE policies SET name = ?, description = ?, source = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, p.Source, time.Now(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("policystore: update policy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("policystore: update policy: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("policystore: policy %q: %w", p.ID, ErrNotFound)
	}
	return nil
}

// Get fetches a policy by ID.
func (s *Store) Get(id string) (*Policy, error) {
	p := &Policy{}
	err := s.db.QueryRow(
		`SELECT id, name, description, source, created_at, updated_at, scan_count, last_used_at
		 FROM policies WHERE id = ?`, id,
	).Scan(
		&p.ID, &p.Name, &p.Description, &p.Source,
		&p.CreatedAt, &p.UpdatedAt, &p.ScanCount, &p.LastUsedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("policystore: policy %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("policystore: get policy: %w", err)
	}
	return p, nil
}

// List returns policies ordered by creation date (newest first).
func (s *Store) List(page, perPage int) (*PolicyPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	offset := (page - 1) * perPage

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM policies").Scan(&total); err != nil {
		return nil, fmt.Errorf("policystore: count policies: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, name, description, source, created_at, updated_at, scan_count, last_used_at
		 FROM policies ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		perPage, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("policystore: list policies: %w", err)
	}
	defer rows.Close()

	var policies []Policy
	for rows.Next() {
		p := Policy{}
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Source,
			&p.CreatedAt, &p.UpdatedAt, &p.ScanCount, &p.LastUsedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("policystore: scan policy: %w", err)
		}
		policies = append(policies, p)
	}

	totalPages := total / perPage
	if total%perPage > 0 {
		totalPages++
	}

	return &PolicyPage{
		Policies:   policies,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// MarkUsed bumps the scan counter and usage timestamp for a policy.
func (s *Store) MarkUsed(id string) error {
	_, err := s.db.Exec(
		`UPDATE policies SET scan_count = scan_count + 1, last_used_at = ? WHERE id = ?`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("policystore: mark used: %w", err)
	}
	return nil
}

// Delete removes a policy.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec("DELETE FROM policies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("policystore: delete policy: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("policystore: delete policy: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("policystore: policy %q: %w", id, ErrNotFound)
	}
	return nil
}

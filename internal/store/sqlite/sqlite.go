/*
Package sqlite stores versioned tax-year configurations in SQLite and serves
the active one to the calculators.

TABLE:

	tax_configurations: one row per tax year. The configuration itself is a
	JSON payload; tax_year, is_active and the effective dates are columns so
	they can be queried and listed without decoding.

ACTIVE YEAR:

	A partial unique index allows at most one row with is_active = 1.
	Activate switches the active year inside a single transaction.

CONCURRENCY:

	Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
	readers do not block each other.

USAGE:

	store, err := sqlite.New("./data/ukplan.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

	cfg, err := store.ActiveConfig()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rgehrsitz/ukplan/internal/config"
	"github.com/rgehrsitz/ukplan/internal/domain"
)

// ErrTaxYearNotFound is returned when a named tax year has not been saved.
var ErrTaxYearNotFound = errors.New("tax year not found")

// Store persists tax-year configurations. It implements config.Provider.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ config.Provider = (*Store)(nil)

// Record summarises one stored tax year.
type Record struct {
	TaxYear       string    `json:"tax_year"`
	IsActive      bool      `json:"is_active"`
	EffectiveFrom time.Time `json:"effective_from"`
	EffectiveTo   time.Time `json:"effective_to"`
	Version       int       `json:"version"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// New opens (creating if needed) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tax_configurations (
		tax_year TEXT PRIMARY KEY,
		is_active INTEGER NOT NULL DEFAULT 0,
		effective_from TEXT,
		effective_to TEXT,
		payload_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_tax_configurations_single_active
		ON tax_configurations(is_active) WHERE is_active = 1;
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save validates and stores a tax year, replacing any previous version of the
// same year. Saving an active year deactivates every other year.
func (s *Store) Save(ctx context.Context, cfg domain.TaxYearConfig) error {
	if err := config.ValidateTaxYear(&cfg); err != nil {
		return fmt.Errorf("tax year %q validation failed: %w", cfg.TaxYear, err)
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode tax year %q: %w", cfg.TaxYear, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if cfg.IsActive {
		if _, err := tx.ExecContext(ctx, "UPDATE tax_configurations SET is_active = 0 WHERE tax_year <> ?", cfg.TaxYear); err != nil {
			return fmt.Errorf("failed to deactivate tax years: %w", err)
		}
	}

	query := `
		INSERT INTO tax_configurations
		(tax_year, is_active, effective_from, effective_to, payload_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(tax_year) DO UPDATE SET
			is_active = excluded.is_active,
			effective_from = excluded.effective_from,
			effective_to = excluded.effective_to,
			payload_json = excluded.payload_json,
			version = tax_configurations.version + 1,
			updated_at = excluded.updated_at
	`
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, query,
		cfg.TaxYear, cfg.IsActive,
		formatDate(cfg.EffectiveFrom), formatDate(cfg.EffectiveTo),
		string(payload), now, now,
	); err != nil {
		return fmt.Errorf("failed to save tax year %q: %w", cfg.TaxYear, err)
	}

	return tx.Commit()
}

// Activate makes taxYear the only active year.
func (s *Store) Activate(ctx context.Context, taxYear string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM tax_configurations WHERE tax_year = ?", taxYear).Scan(&exists); err != nil {
		return fmt.Errorf("failed to look up tax year %q: %w", taxYear, err)
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrTaxYearNotFound, taxYear)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE tax_configurations SET is_active = 0 WHERE is_active = 1"); err != nil {
		return fmt.Errorf("failed to deactivate tax years: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE tax_configurations SET is_active = 1, updated_at = ? WHERE tax_year = ?",
		time.Now().UTC().Format(time.RFC3339), taxYear,
	); err != nil {
		return fmt.Errorf("failed to activate tax year %q: %w", taxYear, err)
	}

	return tx.Commit()
}

// List returns every stored tax year, newest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT tax_year, is_active, effective_from, effective_to, version, updated_at FROM tax_configurations ORDER BY tax_year DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax years: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var from, to sql.NullString
		var updatedAt string
		if err := rows.Scan(&r.TaxYear, &r.IsActive, &from, &to, &r.Version, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tax year: %w", err)
		}
		r.EffectiveFrom = parseDate(from)
		r.EffectiveTo = parseDate(to)
		r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Get returns a stored tax year by name.
func (s *Store) Get(ctx context.Context, taxYear string) (*domain.TaxYearConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	var active bool
	err := s.db.QueryRowContext(ctx,
		"SELECT payload_json, is_active FROM tax_configurations WHERE tax_year = ?", taxYear,
	).Scan(&payload, &active)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrTaxYearNotFound, taxYear)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tax year %q: %w", taxYear, err)
	}
	return decode(payload, active)
}

// ActiveConfig returns the single active tax year, or
// domain.ErrConfigurationNotFound when none is active.
func (s *Store) ActiveConfig() (*domain.TaxYearConfig, error) {
	return s.ActiveConfigContext(context.Background())
}

// ActiveConfigContext is ActiveConfig with a caller-supplied context.
func (s *Store) ActiveConfigContext(ctx context.Context) (*domain.TaxYearConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT tax_year, payload_json FROM tax_configurations WHERE is_active = 1")
	if err != nil {
		return nil, fmt.Errorf("failed to query active tax year: %w", err)
	}
	defer rows.Close()

	var years, payloads []string
	for rows.Next() {
		var year, payload string
		if err := rows.Scan(&year, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan active tax year: %w", err)
		}
		years = append(years, year)
		payloads = append(payloads, payload)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(payloads) {
	case 0:
		return nil, domain.ErrConfigurationNotFound
	case 1:
		return decode(payloads[0], true)
	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrMultipleActiveConfigurations, years)
	}
}

func decode(payload string, active bool) (*domain.TaxYearConfig, error) {
	var cfg domain.TaxYearConfig
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode tax configuration: %w", err)
	}
	cfg.IsActive = active
	return &cfg, nil
}

func formatDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format("2006-01-02"), Valid: true}
}

func parseDate(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, _ := time.Parse("2006-01-02", s.String)
	return t
}

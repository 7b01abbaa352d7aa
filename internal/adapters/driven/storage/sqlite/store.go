package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/drafter/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/drafter/internal/core/domain"
	"github.com/custodia-labs/drafter/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.FragmentStore = (*Store)(nil)

// dbFile is the database file name inside the data directory.
const dbFile = "fragments.db"

// Store persists indexed fragments in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.drafter/data/fragments.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".drafter", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// WAL mode lets searches read while an index run writes
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ReplaceSource stores fragments for a source in one transaction,
// discarding any it had before. A replaced source keeps its position in
// List; storing no fragments forgets the source.
func (s *Store) ReplaceSource(ctx context.Context, sourceID string, fragments []domain.Fragment) error {
	if sourceID == "" {
		return fmt.Errorf("%w: source ID is required", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM fragments WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("deleting old fragments: %w", err)
	}
	if len(fragments) == 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sources WHERE source_id = ?", sourceID); err != nil {
			return fmt.Errorf("forgetting source: %w", err)
		}
		return tx.Commit()
	}
	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO sources (source_id) VALUES (?)", sourceID); err != nil {
		return fmt.Errorf("registering source: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fragments (id, source_id, sequence, content)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range fragments {
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), sourceID, f.Sequence, f.Text); err != nil {
			return fmt.Errorf("saving fragment %d: %w", f.Sequence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// List returns every fragment, sources in the order they were first stored
// and fragments by sequence within a source.
func (s *Store) List(ctx context.Context) ([]domain.Fragment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.source_id, f.sequence, f.content
		FROM fragments f
		JOIN sources s ON s.source_id = f.source_id
		ORDER BY s.ordinal, f.sequence
	`)
	if err != nil {
		return nil, fmt.Errorf("querying fragments: %w", err)
	}
	defer rows.Close()

	var fragments []domain.Fragment
	for rows.Next() {
		var f domain.Fragment
		if err := rows.Scan(&f.SourceID, &f.Sequence, &f.Text); err != nil {
			return nil, fmt.Errorf("scanning fragment: %w", err)
		}
		fragments = append(fragments, f)
	}
	return fragments, rows.Err()
}

// Sources returns the stored source IDs in sorted order.
func (s *Store) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT source_id FROM fragments ORDER BY source_id")
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteSource removes a source's fragments.
func (s *Store) DeleteSource(ctx context.Context, sourceID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx, "DELETE FROM fragments WHERE source_id = ?", sourceID)
	if err != nil {
		return fmt.Errorf("deleting source: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sources WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("forgetting source: %w", err)
	}
	return tx.Commit()
}

// Clear removes every fragment.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM fragments; DELETE FROM sources"); err != nil {
		return fmt.Errorf("clearing fragments: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_fragments.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// apply executes one migration and records its version atomically.
func (s *Store) apply(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return fmt.Errorf("recording version: %w", err)
	}
	return tx.Commit()
}

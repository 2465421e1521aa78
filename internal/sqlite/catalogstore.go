package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/fitplan/internal/catalog"
	"github.com/myrjola/fitplan/internal/errors"
)

var (
	// ErrNotFound is returned when a catalog version does not exist or no version is active.
	ErrNotFound = errors.NewSentinel("catalog version not found")
	// ErrVersionConflict is returned when a version is re-imported with different contents.
	ErrVersionConflict = errors.NewSentinel("catalog version already imported with different contents")
	// ErrVersionMismatch is returned when the document declares a different version than requested.
	ErrVersionMismatch = errors.NewSentinel("catalog document version does not match")
)

// CatalogVersion describes a stored catalog document.
type CatalogVersion struct {
	Version    string    `json:"version"`
	Checksum   string    `json:"checksum"`
	Exercises  int       `json:"exercises"`
	ImportedAt time.Time `json:"imported_at"`
	Active     bool      `json:"active"`
}

// CatalogStore keeps every imported catalog document and tracks which one is active.
type CatalogStore struct {
	db  *Database
	now func() time.Time
}

func NewCatalogStore(db *Database) *CatalogStore {
	return &CatalogStore{
		db:  db,
		now: time.Now,
	}
}

// Import validates the document and stores it under version.
//
// Importing the same contents twice is a no-op. The imported version is not activated.
func (s *CatalogStore) Import(ctx context.Context, version string, document []byte) (*catalog.Catalog, error) {
	c, err := catalog.Parse(document)
	if err != nil {
		return nil, errors.Wrap(err, "parse catalog", slog.String("version", version))
	}
	if c.Version() != version {
		return nil, errors.Wrap(ErrVersionMismatch, "import catalog",
			slog.String("version", version), slog.String("documentVersion", c.Version()))
	}

	sum := sha256.Sum256(document)
	checksum := hex.EncodeToString(sum[:])

	tx, err := s.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var existing string
	err = tx.QueryRowContext(ctx, `SELECT checksum FROM catalog_versions WHERE version = ?`, version).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err = tx.ExecContext(ctx, `INSERT INTO catalog_versions (version, document, checksum, exercises, imported_at)
VALUES (?, ?, ?, ?, ?)`, version, string(document), checksum, c.Len(), s.now().UTC()); err != nil {
			return nil, fmt.Errorf("insert catalog version: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("query catalog version: %w", err)
	case existing != checksum:
		return nil, errors.Wrap(ErrVersionConflict, "import catalog", slog.String("version", version))
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return c, nil
}

// Activate marks version as the one served by LoadActive.
func (s *CatalogStore) Activate(ctx context.Context, version string) error {
	tx, err := s.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE catalog_versions SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("deactivate catalog versions: %w", err)
	}
	result, err := tx.ExecContext(ctx, `UPDATE catalog_versions SET active = 1 WHERE version = ?`, version)
	if err != nil {
		return fmt.Errorf("activate catalog version: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return errors.Wrap(ErrNotFound, "activate catalog", slog.String("version", version))
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LoadActive parses and returns the active catalog.
func (s *CatalogStore) LoadActive(ctx context.Context) (*catalog.Catalog, error) {
	var (
		version  string
		document string
	)
	err := s.db.ReadOnly.QueryRowContext(ctx,
		`SELECT version, document FROM catalog_versions WHERE active = 1`).Scan(&version, &document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query active catalog: %w", err)
	}

	c, err := catalog.Parse([]byte(document))
	if err != nil {
		return nil, errors.Wrap(err, "parse stored catalog", slog.String("version", version))
	}
	return c, nil
}

// Document returns the stored document for version.
func (s *CatalogStore) Document(ctx context.Context, version string) ([]byte, error) {
	var document string
	err := s.db.ReadOnly.QueryRowContext(ctx,
		`SELECT document FROM catalog_versions WHERE version = ?`, version).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(ErrNotFound, "query catalog document", slog.String("version", version))
	}
	if err != nil {
		return nil, fmt.Errorf("query catalog document: %w", err)
	}
	return []byte(document), nil
}

// Versions lists stored catalog versions, oldest import first.
func (s *CatalogStore) Versions(ctx context.Context) (_ []CatalogVersion, err error) {
	rows, err := s.db.ReadOnly.QueryContext(ctx, `SELECT version, checksum, exercises, imported_at, active
FROM catalog_versions
ORDER BY imported_at, version`)
	if err != nil {
		return nil, fmt.Errorf("query catalog versions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var versions []CatalogVersion
	for rows.Next() {
		var v CatalogVersion
		if err = rows.Scan(&v.Version, &v.Checksum, &v.Exercises, &v.ImportedAt, &v.Active); err != nil {
			return nil, fmt.Errorf("scan catalog version: %w", err)
		}
		versions = append(versions, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog versions: %w", err)
	}
	return versions, nil
}

// EnsureActive returns the active catalog, importing and activating fallback when no version is active yet.
func (s *CatalogStore) EnsureActive(ctx context.Context, fallback []byte) (*catalog.Catalog, error) {
	c, err := s.LoadActive(ctx)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	seed, err := catalog.Parse(fallback)
	if err != nil {
		return nil, errors.Wrap(err, "parse seed catalog")
	}
	if _, err = s.Import(ctx, seed.Version(), fallback); err != nil {
		return nil, fmt.Errorf("import seed catalog: %w", err)
	}
	if err = s.Activate(ctx, seed.Version()); err != nil {
		return nil, fmt.Errorf("activate seed catalog: %w", err)
	}
	s.db.logger.LogAttrs(ctx, slog.LevelInfo, "seeded catalog", slog.String("version", seed.Version()))
	return seed, nil
}

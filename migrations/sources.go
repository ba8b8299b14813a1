// Package migrations resolves the embedded SQL migration filesystems and
// selects the dialect variant matching a storage driver.
package migrations

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Source is one dialect's migration filesystem.
type Source struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// Dialect maps a storage driver name onto the dialect that serves it.
func Dialect(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("migrations: no sources for driver %q", driver)
	}
}

// Sources resolves the per-dialect filesystems under root. Postgres files
// live at the migrations root, sqlite variants in the sqlite subdirectory.
// Every source must carry at least one *.up.sql file.
func Sources(root fs.FS) ([]Source, error) {
	if root == nil {
		return nil, fmt.Errorf("migrations: root filesystem is required")
	}
	base, basePath, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite subtree: %w", err)
	}

	sources := []Source{
		{Dialect: DialectPostgres, Path: basePath, FS: base},
		{Dialect: DialectSQLite, Path: path.Join(basePath, "sqlite"), FS: sqliteFS},
	}
	for _, source := range sources {
		matches, globErr := fs.Glob(source.FS, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: scan %s sources at %q: %w", source.Dialect, source.Path, globErr)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("migrations: %s sources at %q have no *.up.sql files", source.Dialect, source.Path)
		}
	}
	return sources, nil
}

// ForDriver resolves the single source serving a storage driver. All sources
// are still validated so a broken sibling tree fails at startup rather than
// on a later driver switch.
func ForDriver(root fs.FS, driver string) (Source, error) {
	dialect, err := Dialect(driver)
	if err != nil {
		return Source{}, err
	}
	sources, err := Sources(root)
	if err != nil {
		return Source{}, err
	}
	for _, source := range sources {
		if source.Dialect == dialect {
			return source, nil
		}
	}
	return Source{}, fmt.Errorf("migrations: no source resolved for %s", dialect)
}

// resolveRoot accepts either an embedding root holding data/sql/migrations
// or the migrations directory itself.
func resolveRoot(root fs.FS) (fs.FS, string, error) {
	const embedded = "data/sql/migrations"
	if entries, err := fs.ReadDir(root, embedded); err == nil && len(entries) > 0 {
		sub, subErr := fs.Sub(root, embedded)
		if subErr != nil {
			return nil, "", fmt.Errorf("migrations: resolve %s: %w", embedded, subErr)
		}
		return sub, embedded, nil
	}
	if matches, err := fs.Glob(root, "*.sql"); err == nil && len(matches) > 0 {
		return root, ".", nil
	}
	return nil, "", fmt.Errorf("migrations: no SQL sources under root filesystem")
}

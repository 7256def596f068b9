// Package migrations embeds SQL migration files and provides a function to apply them.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS contains the embedded SQL migration files, one directory per dialect.
//
//go:embed sqlite/*.sql mysql/*.sql
var FS embed.FS

// Dialect names a migration set.
type Dialect struct {
	Goose string
	Dir   string
}

// Supported migration sets.
var (
	SQLite = Dialect{Goose: "sqlite3", Dir: "sqlite"}
	MySQL  = Dialect{Goose: "mysql", Dir: "mysql"}
)

// ForDriver returns the migration set of a database driver name.
func ForDriver(driver string) (Dialect, error) {
	switch driver {
	case "sqlite":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
}

// Setup points goose at the embedded migrations of d.
func Setup(d Dialect) error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect(d.Goose); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	return nil
}

// Run applies all pending migrations to the given database.
func Run(db *sql.DB, d Dialect) error {
	if err := Setup(d); err != nil {
		return err
	}

	if err := goose.Up(db, d.Dir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

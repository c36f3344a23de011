// Package migrations embeds the goose SQL migrations, one directory per
// database dialect.
package migrations

import (
	"embed"
	"fmt"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

// Dir and goose dialect for a database/sql driver name.
func ForDriver(driver string) (dir string, dialect string, err error) {
	switch driver {
	case "sqlite":
		return "sqlite", "sqlite3", nil
	case "pgx":
		return "postgres", "postgres", nil
	default:
		return "", "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

// Package migrations embeds the SQL migration files into the binary.
package migrations

import (
	"embed"

	"github.com/nerrad567/vizgate/internal/infrastructure/database"
)

// SchemaVersion is the meta-table version written by the latest migration.
const SchemaVersion = "1"

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}

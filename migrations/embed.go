// Package migrations embeds the schema scripts and hands them to the
// database package when imported.
package migrations

import (
	"embed"

	"github.com/nerrad567/schematic-core/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
}

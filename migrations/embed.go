// Package migrations embeds the product schema into the binary so a fresh
// database can be brought up without SQL files on disk.
package migrations

import (
	"embed"

	"github.com/storefront/catalog/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.RegisterSchema(files)
}

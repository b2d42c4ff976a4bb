package migrations

import "embed"

// PostgresMigrations SQL миграции для PostgreSQL
//
//go:embed postgres/*.sql
var PostgresMigrations embed.FS

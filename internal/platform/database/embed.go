package database

import "embed"

// EmbedMigrations contains the embedded goose migrations.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS

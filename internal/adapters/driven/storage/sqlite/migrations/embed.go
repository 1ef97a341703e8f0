// Package migrations embeds the schema migration files for the SQLite
// state store.
package migrations

import "embed"

// FS holds the SQL migration files, applied in version order at open.
//
//go:embed *.sql
var FS embed.FS

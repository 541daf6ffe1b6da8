// Package migrations holds the schema migrations for the SQLite store.
// Files are applied in lexical order and each applied version is recorded
// in the schema_migrations table so reruns are no-ops.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

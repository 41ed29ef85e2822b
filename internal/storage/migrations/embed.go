// Package migrations embeds and applies the schema for every SQL backend.
package migrations

import "embed"

// Schemas holds one directory of numbered .sql files per backend,
// named after the backend: postgres, sqlite and clickhouse.
//
//go:embed postgres/*.sql sqlite/*.sql clickhouse/*.sql
var Schemas embed.FS

// Package migrations embeds the goose schema migrations of the key/value
// store, one directory per dialect.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS

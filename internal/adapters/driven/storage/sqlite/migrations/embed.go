// Package migrations embeds the report database schema.
package migrations

import "embed"

// FS holds the numbered NNN_name.up.sql and .down.sql scripts.
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the on-device SQLite schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

// Package migrations embeds the PostgreSQL schema of the cloud document store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

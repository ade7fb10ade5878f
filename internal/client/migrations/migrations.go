// Package migrations embeds the SQLite schema of the client session database.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

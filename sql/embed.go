// Package migrations embeds the schema of the postgres token store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

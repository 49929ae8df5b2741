// Package migrations embeds the goose SQL migrations for the reviews schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

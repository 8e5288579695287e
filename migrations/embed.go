// Package migrations carries the SQL schema migrations embedded into the
// binary, so the migrate-db startup step needs no filesystem access.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

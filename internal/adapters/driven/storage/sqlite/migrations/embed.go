// Package migrations embeds the versioned schema files for the audit
// database. Each version is an .up.sql/.down.sql pair applied in order.
package migrations

import "embed"

// FS holds every migration file, embedded at compile time so the binary
// carries its own schema.
//
//go:embed *.sql
var FS embed.FS

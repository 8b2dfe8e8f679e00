// Package appfs embeds the files the binaries ship with.
package appfs

import "embed"

// FS holds the SQL migrations, one directory per database engine.
//
//go:embed migrations
var FS embed.FS

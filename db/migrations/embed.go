package migrations

import "embed"

// FS contains the developer schema migrations, one directory per dialect.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

package db

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"devregistry/db/migrations"
)

// migrationStatements returns the statements of every .sql file under dialect,
// in file name order. Migrations are idempotent and run on every start.
func migrationStatements(dialect string) ([]string, error) {
	entries, err := fs.ReadDir(migrations.FS, dialect)
	if err != nil {
		return nil, fmt.Errorf("read %s migrations: %w", dialect, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	statements := make([]string, 0, len(files))
	for _, file := range files {
		content, err := fs.ReadFile(migrations.FS, path.Join(dialect, file))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		if sql := strings.TrimSpace(string(content)); sql != "" {
			statements = append(statements, sql)
		}
	}
	return statements, nil
}

package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// execFunc executes one SQL script or statement.
type execFunc func(ctx context.Context, sql string) error

// apply runs every .sql file under dir in lexical order.
// With split set, each file is validated and executed statement by statement
// for drivers that reject multi-statement scripts.
func apply(ctx context.Context, fsys fs.FS, dir string, split bool, exec execFunc) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read embedded %s migrations: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, file := range files {
		data, err := fs.ReadFile(fsys, dir+"/"+file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		script := string(data)
		if strings.TrimSpace(script) == "" {
			continue
		}

		if !split {
			if err := exec(ctx, script); err != nil {
				return fmt.Errorf("apply migration %s: %w", file, err)
			}
			continue
		}

		if err := validateNoSemicolonInStrings(script); err != nil {
			return fmt.Errorf("validate migration %s: %w", file, err)
		}
		for _, stmt := range splitStatements(script) {
			if err := exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", file, err)
			}
		}
	}
	return nil
}

// splitStatements splits SQL content into statements on semicolons after
// dropping blank lines and -- comment lines.
//
// The splitter does not understand semicolons inside string literals or
// block comments; validateNoSemicolonInStrings rejects the former.
func splitStatements(input string) []string {
	var filtered []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		filtered = append(filtered, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(filtered, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// validateNoSemicolonInStrings returns an error if a semicolon appears
// inside a single-quoted literal. Doubled quotes are treated as escapes.
func validateNoSemicolonInStrings(sql string) error {
	inString := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			if inString && i+1 < len(sql) && sql[i+1] == '\'' {
				i++
				continue
			}
			inString = !inString
		case ';':
			if inString {
				return fmt.Errorf("semicolon inside string literal at offset %d breaks the statement splitter", i)
			}
		}
	}
	return nil
}

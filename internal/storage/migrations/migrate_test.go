package migrations

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
)

func TestSplitStatements(t *testing.T) {
	input := `-- header comment
CREATE TABLE a (x Int64);

-- second
CREATE TABLE b (y String);
`
	stmts := splitStatements(input)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (x Int64)" {
		t.Errorf("unexpected first statement: %q", stmts[0])
	}
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	if err := validateNoSemicolonInStrings("SELECT 'a'';b'"); err == nil {
		t.Error("expected error for semicolon inside escaped string")
	}
	if err := validateNoSemicolonInStrings("SELECT 'it''s'; SELECT 1;"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestApply_OrderAndSplit(t *testing.T) {
	fsys := fstest.MapFS{
		"db/002_second.sql": {Data: []byte("CREATE TABLE two (x INT);")},
		"db/001_first.sql":  {Data: []byte("CREATE TABLE one (x INT);\nCREATE TABLE uno (x INT);")},
		"db/README.md":      {Data: []byte("not sql")},
		"db/003_empty.sql":  {Data: []byte("  \n")},
	}

	var got []string
	err := apply(context.Background(), fsys, "db", true, func(_ context.Context, sql string) error {
		got = append(got, sql)
		return nil
	})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	want := []string{"CREATE TABLE one (x INT)", "CREATE TABLE uno (x INT)", "CREATE TABLE two (x INT)"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestApply_PropagatesError(t *testing.T) {
	fsys := fstest.MapFS{"db/001.sql": {Data: []byte("BROKEN;")}}
	boom := errors.New("boom")

	err := apply(context.Background(), fsys, "db", false, func(context.Context, string) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func TestEmbeddedMigrationsPresent(t *testing.T) {
	for _, name := range []string{"postgres", "sqlite", "clickhouse"} {
		entries, err := fs.ReadDir(Schemas, name)
		if err != nil || len(entries) == 0 {
			t.Errorf("%s: expected embedded migrations, got %v (err %v)", name, entries, err)
		}
	}
}

func TestEmbeddedClickhouseMigrationsSplit(t *testing.T) {
	data, err := fs.ReadFile(Schemas, "clickhouse/001_init.sql")
	if err != nil {
		t.Fatal(err)
	}
	if err := validateNoSemicolonInStrings(string(data)); err != nil {
		t.Fatal(err)
	}
	if n := len(splitStatements(string(data))); n != 4 {
		t.Errorf("expected 4 CREATE TABLE statements, got %d", n)
	}
}

func TestRunClickhouseMigrations_MissingDatabase(t *testing.T) {
	_, err := RunClickhouseMigrations(context.Background(), "clickhouse://localhost:9000")
	if err == nil || !strings.Contains(err.Error(), "missing database") {
		t.Errorf("expected missing database error, got %v", err)
	}
}

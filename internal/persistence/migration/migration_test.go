package migration

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("sorts by numeric version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/010_add_index.sql":    {Data: []byte("CREATE INDEX idx ON t (a);")},
			"m/002_create_table.sql": {Data: []byte("-- table\nCREATE TABLE t (a TEXT);")},
			"m/README.md":            {Data: []byte("ignored")},
		}

		migrations, err := Load(fsys, "m")
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if len(migrations) != 2 {
			t.Fatalf("expected 2 migrations, got %d", len(migrations))
		}
		if migrations[0].Version != "002" || migrations[1].Version != "010" {
			t.Fatalf("unexpected order: %s, %s", migrations[0].Version, migrations[1].Version)
		}
		if migrations[0].Description != "create table" {
			t.Fatalf("unexpected description %q", migrations[0].Description)
		}
		if migrations[0].Checksum == "" {
			t.Fatalf("expected checksum to be populated")
		}
	})

	t.Run("rejects malformed names", func(t *testing.T) {
		fsys := fstest.MapFS{"m/create.sql": {Data: []byte("CREATE TABLE t (a TEXT);")}}
		if _, err := Load(fsys, "m"); !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/001_a.sql": {Data: []byte("CREATE TABLE a (x TEXT);")},
			"m/001_b.sql": {Data: []byte("CREATE TABLE b (x TEXT);")},
		}
		if _, err := Load(fsys, "m"); !errors.Is(err, ErrDuplicateVersion) {
			t.Fatalf("expected ErrDuplicateVersion, got %v", err)
		}
	})

	t.Run("rejects comment only files", func(t *testing.T) {
		fsys := fstest.MapFS{"m/001_empty.sql": {Data: []byte("-- nothing here\n")}}
		if _, err := Load(fsys, "m"); !errors.Is(err, ErrInvalidMigrationFile) {
			t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
		}
	})
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	statements := splitStatements("-- header\nCREATE TABLE a (x TEXT);\n\n;CREATE INDEX i ON a (x);\n-- trailer")
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(statements), statements)
	}
	if statements[1] != "CREATE INDEX i ON a (x)" {
		t.Fatalf("unexpected statement %q", statements[1])
	}
}

func TestDialectPlaceholders(t *testing.T) {
	t.Parallel()

	if got := Postgres.placeholders(3); got[0] != "$1" || got[2] != "$3" {
		t.Fatalf("unexpected postgres placeholders %v", got)
	}
	if got := SQLite.placeholders(2); got[0] != "?" || got[1] != "?" {
		t.Fatalf("unexpected sqlite placeholders %v", got)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	migrations := []Migration{
		{Version: "001", Description: "create", SQL: "CREATE TABLE items (name TEXT);", FilePath: "001_create.sql"},
		{Version: "002", Description: "seed", SQL: "INSERT INTO items (name) VALUES ('a');", FilePath: "002_seed.sql"},
	}
	executor := NewExecutor(db, SQLite)

	if err := Run(ctx, executor, migrations, quietLogger()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if err := Run(ctx, executor, migrations, quietLogger()); err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected seed migration to run once, got %d rows", count)
	}

	applied, err := executor.AppliedVersions(ctx)
	if err != nil {
		t.Fatalf("AppliedVersions returned error: %v", err)
	}
	if len(applied) != 2 || applied[1].Version != "002" {
		t.Fatalf("unexpected applied versions %+v", applied)
	}

	t.Run("failed migration is rolled back and not recorded", func(t *testing.T) {
		broken := append(migrations, Migration{
			Version:  "003",
			SQL:      "INSERT INTO items (name) VALUES ('b'); INSERT INTO missing (x) VALUES (1);",
			FilePath: "003_broken.sql",
		})
		err := Run(ctx, executor, broken, quietLogger())
		if !errors.Is(err, ErrMigrationFailed) {
			t.Fatalf("expected ErrMigrationFailed, got %v", err)
		}
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count); err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected rollback to discard partial insert, got %d rows", count)
		}
	})
}

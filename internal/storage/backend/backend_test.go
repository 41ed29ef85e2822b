package backend

import (
	"context"
	"path/filepath"
	"testing"

	"econ-sim-lab/internal/config"
	"econ-sim-lab/internal/storage/storagetest"
)

func TestOpen_Memory(t *testing.T) {
	for _, name := range []string{"", Memory} {
		stores, err := Open(context.Background(), config.StorageConfig{Backend: name})
		if err != nil {
			t.Fatalf("Open(%q): %v", name, err)
		}
		if stores.Runs == nil || stores.Sweeps == nil {
			t.Fatalf("Open(%q) returned incomplete stores", name)
		}
		if err := stores.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "econ.db")

	stores, err := Open(ctx, config.StorageConfig{Backend: SQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := stores.Sweeps.Insert(ctx, storagetest.Sweep("s", 1)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := stores.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopening re-applies migrations over the existing schema.
	stores, err = Open(ctx, config.StorageConfig{Backend: SQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer stores.Close()
	if _, err := stores.Sweeps.GetByID(ctx, "s"); err != nil {
		t.Errorf("GetByID after reopen: %v", err)
	}
}

func TestOpen_Unsupported(t *testing.T) {
	if _, err := Open(context.Background(), config.StorageConfig{Backend: "mongo"}); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadMigrations_SortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "002_alerts.sql", "CREATE TABLE b (id int);")
	writeFile(t, dir, "001_core.sql", "CREATE TABLE a (id int);")
	writeFile(t, dir, "010_audit.sql", "CREATE TABLE c (id int);")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	wantVersions := []int{1, 2, 10}
	for i, w := range wantVersions {
		if migrations[i].Version != w {
			t.Errorf("migration %d: expected version %d, got %d", i, w, migrations[i].Version)
		}
	}
}

func TestLoadMigrations_SkipsNonNumericAndNonSQL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001_core.sql", "CREATE TABLE a (id int);")
	writeFile(t, dir, "notes.txt", "not a migration")
	writeFile(t, dir, "seed.sql", "INSERT INTO a VALUES (1);")
	writeFile(t, dir, "abc_bad.sql", "SELECT 1;")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) != 1 {
		t.Fatalf("expected 1 migration, got %d", len(migrations))
	}
	if migrations[0].Name != "001_core.sql" {
		t.Errorf("expected 001_core.sql, got %s", migrations[0].Name)
	}
}

func TestLoadMigrations_MissingDirectory(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}

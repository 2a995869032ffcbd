package migrations

import (
	"io/fs"
	"sort"
	"strings"
	"testing"
)

func TestLedgerRecordMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected migrations to be embedded")
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	if files[0] != "0001_ledger_records.sql" {
		t.Fatalf("expected first migration 0001_ledger_records.sql, got %s", files[0])
	}
}

func TestLedgerRecordMigrationHasUpSection(t *testing.T) {
	content, err := fs.ReadFile(FS, "0001_ledger_records.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(content), "-- +migrate Up") {
		t.Fatal("expected migration to declare an up section")
	}
	if !strings.Contains(string(content), "ledger_records") {
		t.Fatal("expected migration to create the ledger_records table")
	}
}

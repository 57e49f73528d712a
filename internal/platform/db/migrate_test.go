package db

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations(t *testing.T) {
	files := fstest.MapFS{
		"001_core.sql":     {Data: []byte("CREATE TABLE patient (id UUID PRIMARY KEY);")},
		"002_ledger.sql":   {Data: []byte("CREATE TABLE ledger_entry (id UUID PRIMARY KEY);")},
		"003_archival.sql": {Data: []byte("ALTER TABLE ledger_entry ADD COLUMN closed_at TIMESTAMPTZ;")},
		"README.md":        {Data: []byte("not a migration")},
		"notes_backup.sql": {Data: []byte("SELECT 1;")},
	}

	migrations, err := NewMigrator(nil, files).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "001_core.sql" {
		t.Errorf("unexpected first migration: %+v", migrations[0])
	}
	if migrations[2].Version != 3 {
		t.Errorf("expected version 3, got %d", migrations[2].Version)
	}
}

func TestLoadMigrations_SortOrder(t *testing.T) {
	files := fstest.MapFS{
		"010_tables.sql": {Data: []byte("SELECT 10;")},
		"002_second.sql": {Data: []byte("SELECT 2;")},
		"001_first.sql":  {Data: []byte("SELECT 1;")},
		"005_middle.sql": {Data: []byte("SELECT 5;")},
	}

	migrations, err := NewMigrator(nil, files).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}

	want := []int{1, 2, 5, 10}
	for i, v := range want {
		if migrations[i].Version != v {
			t.Errorf("position %d: expected version %d, got %d", i, v, migrations[i].Version)
		}
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := NewMigrator(nil, EmbeddedMigrations()).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected embedded migrations")
	}
	for _, table := range []string{"patient", "staff", "treatment", "appointment", "prescription", "medicine_line", "ledger_entry"} {
		if !strings.Contains(migrations[0].SQL, "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Errorf("expected table %s in the initial migration", table)
		}
	}
}

func TestEmbeddedMigrations_OwnerScopedReferences(t *testing.T) {
	migrations, err := NewMigrator(nil, EmbeddedMigrations()).LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error: %v", err)
	}
	var all strings.Builder
	for _, m := range migrations {
		all.WriteString(m.SQL)
	}
	sql := all.String()
	for _, ref := range []string{
		"FOREIGN KEY (owner_id, patient_id) REFERENCES patient (owner_id, id)",
		"FOREIGN KEY (owner_id, staff_id) REFERENCES staff (owner_id, id)",
		"FOREIGN KEY (owner_id, treatment_id) REFERENCES treatment (owner_id, id)",
	} {
		if !strings.Contains(sql, ref) {
			t.Errorf("expected %q in the embedded migrations", ref)
		}
	}
	for _, fk := range []string{
		"appointment_patient_id_fkey", "appointment_staff_id_fkey", "appointment_treatment_id_fkey",
		"prescription_patient_id_fkey", "prescription_staff_id_fkey", "ledger_entry_patient_id_fkey",
	} {
		if !strings.Contains(sql, "DROP CONSTRAINT IF EXISTS "+fk) {
			t.Errorf("expected id-only key %s to be dropped", fk)
		}
	}
}

func TestCheckSchema(t *testing.T) {
	if err := checkSchema("public"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := checkSchema("public; DROP TABLE patient"); err == nil {
		t.Error("expected error for injected schema name")
	}
}

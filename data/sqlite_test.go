package data

import (
	"testing"
)

func useTempDir(t *testing.T) {
	t.Helper()
	Close()
	SetDir(t.TempDir())
	t.Cleanup(func() { Close() })
}

func TestDBCreatesSchema(t *testing.T) {
	useTempDir(t)

	d, err := DB()
	if err != nil {
		t.Fatalf("DB: %v", err)
	}

	var ver string
	if err := d.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&ver); err != nil {
		t.Fatalf("read schema_version: %v", err)
	}
	if ver != schemaVersion {
		t.Errorf("expected schema version %q, got %q", schemaVersion, ver)
	}

	for _, table := range []string{"sessions", "places", "places_fts"} {
		var n int
		if err := d.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestSchemaVersionWipesOldData(t *testing.T) {
	useTempDir(t)

	d, err := DB()
	if err != nil {
		t.Fatalf("DB: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO sessions (token, id, created_at) VALUES ('tk', 'id', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if _, err := d.Exec(`DELETE FROM schema_version`); err != nil {
		t.Fatalf("delete schema_version: %v", err)
	}
	Close()

	d, err = DB()
	if err != nil {
		t.Fatalf("DB after wipe: %v", err)
	}
	var n int
	if err := d.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if n != 0 {
		t.Errorf("expected sessions to be wiped, found %d", n)
	}
}

func TestSchemaVersionPreservesData(t *testing.T) {
	useTempDir(t)

	d, err := DB()
	if err != nil {
		t.Fatalf("DB: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO sessions (token, id, created_at) VALUES ('keep', 'id', CURRENT_TIMESTAMP)`); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	Close()

	d, err = DB()
	if err != nil {
		t.Fatalf("DB second time: %v", err)
	}
	var n int
	if err := d.QueryRow(`SELECT COUNT(*) FROM sessions WHERE token = 'keep'`).Scan(&n); err != nil {
		t.Fatalf("count session: %v", err)
	}
	if n != 1 {
		t.Errorf("expected session to be preserved, got %d", n)
	}
}

func TestSaveLoadJSON(t *testing.T) {
	useTempDir(t)

	in := map[string]float64{"radius_km": 2}
	if err := SaveJSON("presets.json", in); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	var out map[string]float64
	if err := LoadJSON("presets.json", &out); err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if out["radius_km"] != 2 {
		t.Errorf("expected radius_km 2, got %v", out["radius_km"])
	}

	if err := LoadJSON("missing.json", &out); err == nil {
		t.Error("expected error loading a missing key")
	}
}

package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedPairs(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	if err != nil {
		t.Fatalf("read embedded dir: %v", err)
	}
	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected file %s", name)
		}
	}
	if len(ups) == 0 {
		t.Fatalf("no migrations embedded")
	}
	for k := range ups {
		if !downs[k] {
			t.Fatalf("migration %s has no down file", k)
		}
	}
}

func TestSchemaCarriesVectorColumn(t *testing.T) {
	b, err := fs.ReadFile(files, "sql/000001_vector_and_issues.up.sql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s := string(b)
	for _, want := range []string{"CREATE EXTENSION IF NOT EXISTS vector", "embedding   vector(1024)"} {
		if !strings.Contains(s, want) {
			t.Fatalf("schema missing %q", want)
		}
	}
}

func TestDownRejectsNonPositive(t *testing.T) {
	var x Migrator
	if err := x.Down(0); err == nil {
		t.Fatalf("Down(0) should fail")
	}
}

package postgres

import (
	"strings"
	"testing"
)

func TestMigrations_Embedded(t *testing.T) {
	b, err := migrations.ReadFile("migrations/001_init.sql")
	if err != nil {
		t.Fatalf("read embedded migration: %v", err)
	}
	sql := string(b)
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS rooms", "CREATE TABLE IF NOT EXISTS messages", "ON DELETE CASCADE"} {
		if !strings.Contains(sql, want) {
			t.Fatalf("migration missing %q", want)
		}
	}
}

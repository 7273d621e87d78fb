package database

import (
	"strings"
	"testing"
)

// tableDefinition extracts the body of a CREATE TABLE statement from the
// initial migration.
func tableDefinition(t *testing.T, sql, table string) string {
	t.Helper()
	marker := "CREATE TABLE " + table + " ("
	start := strings.Index(sql, marker)
	if start < 0 {
		t.Fatalf("migration does not create table %q", table)
	}
	rest := sql[start+len(marker):]
	end := strings.Index(rest, ");")
	if end < 0 {
		t.Fatalf("unterminated definition for table %q", table)
	}
	return rest[:end]
}

// The repositories hard-code their column lists; this pins the migration to
// every column they insert or scan so a drifting schema fails here instead
// of at runtime.
func TestSchemaCoversRepositoryColumns(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/000001_init.up.sql")
	if err != nil {
		t.Fatalf("failed to read initial migration: %v", err)
	}
	sql := string(raw)

	tables := map[string][]string{
		"users":          {"id", "name", "email", "password_hash", "created_at"},
		"refresh_tokens": {"id", "user_id", "token_hash", "expires_at", "created_at"},
		"groups":         {"id", "name", "owner_id", "created_at", "updated_at"},
		"group_members":  {"user_id", "group_id", "role", "created_at"},
		"expenses":       {"id", "group_id", "paid_by", "description", "amount", "split_type", "created_at"},
		"expense_splits": {"expense_id", "user_id", "amount", "created_at"},
		"notifications":  {"id", "recipient_id", "message", "is_read", "related_entity_type", "related_entity_id", "created_at"},
	}

	for table, columns := range tables {
		t.Run(table, func(t *testing.T) {
			def := tableDefinition(t, sql, table)
			for _, column := range columns {
				if !strings.Contains(def, column+" ") {
					t.Errorf("table %s is missing column %q", table, column)
				}
			}
		})
	}
}

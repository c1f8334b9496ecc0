package postgres

import (
	"strings"
	"testing"
)

func TestSchema_HasInsertionSequence(t *testing.T) {
	if !strings.Contains(schema, "seq         BIGSERIAL NOT NULL") {
		t.Fatalf("expected seq column in create table, got %q", schema)
	}
	if !strings.Contains(schema, "ADD COLUMN IF NOT EXISTS seq BIGSERIAL") {
		t.Fatalf("expected seq backfill for existing tables, got %q", schema)
	}
}

func TestFetchPageQuery_BreaksTiesByInsertionOrder(t *testing.T) {
	if !strings.Contains(fetchPageQuery, "ORDER BY captured_at ASC, seq ASC") {
		t.Fatalf("expected captured_at then seq ordering, got %q", fetchPageQuery)
	}
	if strings.Contains(fetchPageQuery, "id ASC") {
		t.Fatalf("expected no ordering by random id, got %q", fetchPageQuery)
	}
}

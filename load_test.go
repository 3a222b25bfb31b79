package main

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestChunkFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"pg_inserts_part_002.sql",
		"pg_inserts_part_010.sql",
		"pg_inserts_part_001.sql",
		"other_part_001.sql",
		"pg_inserts_schema.sql",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("-- x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := chunkFiles(dir, "pg_inserts")
	if err != nil {
		t.Fatalf("chunkFiles: %v", err)
	}
	want := []string{
		filepath.Join(dir, "pg_inserts_part_001.sql"),
		filepath.Join(dir, "pg_inserts_part_002.sql"),
		filepath.Join(dir, "pg_inserts_part_010.sql"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("chunkFiles = %v, want %v", files, want)
	}
}

func TestChunkFilesEmptyDir(t *testing.T) {
	files, err := chunkFiles(t.TempDir(), "pg_inserts")
	if err != nil {
		t.Fatalf("chunkFiles: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("chunkFiles = %v, want none", files)
	}
}

func TestIsPsqlMeta(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{`\set ON_ERROR_STOP off`, true},
		{`  \set ON_ERROR_STOP off`, true},
		{`\timing`, true},
		{"SET session_replication_role = 'replica';", false},
		{"INSERT INTO t VALUES (1);", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isPsqlMeta(tt.line); got != tt.want {
			t.Errorf("isPsqlMeta(%q) = %t, want %t", tt.line, got, tt.want)
		}
	}
}

func TestLoadStatsSampleCap(t *testing.T) {
	var stats loadStats
	for i := 0; i < maxErrorSamples+3; i++ {
		stats.recordError(fmt.Sprintf("error %d", i))
	}
	if got := stats.errors.Load(); got != int64(maxErrorSamples+3) {
		t.Errorf("errors = %d, want %d", got, maxErrorSamples+3)
	}
	samples := stats.errorSamples()
	if len(samples) != maxErrorSamples {
		t.Fatalf("samples = %d, want %d", len(samples), maxErrorSamples)
	}
	// The first errors are the ones kept.
	if samples[0] != "error 0" || samples[maxErrorSamples-1] != fmt.Sprintf("error %d", maxErrorSamples-1) {
		t.Errorf("samples = %v", samples)
	}

	// errorSamples returns a copy, not the live slice.
	samples[0] = "mutated"
	if stats.errorSamples()[0] != "error 0" {
		t.Error("errorSamples exposed the internal slice")
	}
}

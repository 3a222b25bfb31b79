package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var sampleDumpLines = []string{
	"-- MySQL dump 10.13  Distrib 5.7.44, for Linux (x86_64)",
	"/*!40101 SET @saved_cs_client = @@character_set_client */;",
	"SET NAMES utf8mb4;",
	"",
	"DROP TABLE IF EXISTS `users`;",
	"CREATE TABLE `users` (",
	"  `id` int(11) NOT NULL AUTO_INCREMENT,",
	"  `email` varchar(255) COLLATE utf8mb4_general_ci NOT NULL,",
	"  `status` enum('active','banned') NOT NULL DEFAULT 'active',",
	"  PRIMARY KEY (`id`),",
	"  UNIQUE KEY `uq_users_email` (`email`)",
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;",
	"",
	"LOCK TABLES `users` WRITE;",
	"INSERT INTO `users` VALUES (1,'ann@example.com','active');",
	"INSERT INTO `users` VALUES (2,'bob@example.com',\\N);",
	"UNLOCK TABLES;",
	"",
	"CREATE TABLE `orders` (",
	"  `id` int(11) NOT NULL,",
	"  `user_id` int(11) DEFAULT NULL,",
	"  `total` decimal(10,2) NOT NULL DEFAULT '0.00',",
	"  PRIMARY KEY (`id`),",
	"  CONSTRAINT `fk_orders_user` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`) ON DELETE CASCADE",
	") ENGINE=InnoDB;",
	"INSERT INTO `orders` VALUES (10,1,'19.99');",
	"",
	"CREATE VIEW `v_totals` AS SELECT `user_id`, SUM(`total`) FROM `orders` GROUP BY `user_id`;",
}

func writeSampleDump(t *testing.T, dir, sep string) string {
	t.Helper()
	path := filepath.Join(dir, "dump.sql")
	if err := os.WriteFile(path, []byte(strings.Join(sampleDumpLines, sep)+sep), 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}
	return path
}

func sampleConfig(t *testing.T) *Config {
	t.Helper()
	cfg := defaultConfig()
	cfg.Input = writeSampleDump(t, t.TempDir(), "\n")
	cfg.deriveOutputs()
	return cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestRunConvert(t *testing.T) {
	cfg := sampleConfig(t)
	res, err := runConvert(cfg)
	if err != nil {
		t.Fatalf("runConvert: %v", err)
	}

	if res.Tables != 2 || res.DataStatements != 3 || res.Chunks != 1 {
		t.Errorf("result = %d tables, %d data statements, %d chunks; want 2, 3, 1",
			res.Tables, res.DataStatements, res.Chunks)
	}

	schema := readFile(t, cfg.SchemaOutput)
	for _, want := range []string{
		`CREATE SEQUENCE "users_id_seq";`,
		`CREATE TABLE "users" (`,
		`CREATE TABLE "orders" (`,
		`CREATE UNIQUE INDEX "uq_users_email" ON "users" ("email");`,
		`ALTER TABLE "orders" ADD CONSTRAINT "fk_orders_user" FOREIGN KEY ("user_id") REFERENCES "users" ("id") ON DELETE CASCADE;`,
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema missing %q", want)
		}
	}
	for _, gone := range []string{"DROP TABLE", "LOCK TABLES", "ENGINE=InnoDB", "v_totals"} {
		if strings.Contains(schema, gone) {
			t.Errorf("schema still contains %q", gone)
		}
	}

	chunk := readFile(t, filepath.Join(cfg.DataDir, chunkFileName(cfg.DataPrefix, 1)))
	for _, want := range []string{
		`INSERT INTO "users" VALUES (1,'ann@example.com','active');`,
		`INSERT INTO "users" VALUES (2,'bob@example.com',NULL);`,
		`INSERT INTO "orders" VALUES (10,1,'19.99');`,
	} {
		if !strings.Contains(chunk, want) {
			t.Errorf("chunk missing %q", want)
		}
	}

	if !hasWarning(res.Warnings, "view v_totals is not converted automatically") {
		t.Errorf("view warning missing, warnings = %v", res.Warnings)
	}
	if !hasWarning(res.Warnings, "utf8mb4_general_ci") {
		t.Errorf("collation warning missing, warnings = %v", res.Warnings)
	}
}

func TestRunConvertSchemaOnly(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.SchemaOnly = true
	res, err := runConvert(cfg)
	if err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	if res.Tables != 2 || res.DataStatements != 0 || res.Chunks != 0 {
		t.Errorf("result = %+v, want 2 tables and no data", res)
	}
	if _, err := os.Stat(cfg.DataDir); !os.IsNotExist(err) {
		t.Errorf("data dir created in schema-only mode (stat err = %v)", err)
	}
}

func TestRunConvertDataOnly(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.DataOnly = true
	res, err := runConvert(cfg)
	if err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	if res.Tables != 0 || res.DataStatements != 3 || res.Chunks != 1 {
		t.Errorf("result = %+v, want 3 data statements and no tables", res)
	}
	if _, err := os.Stat(cfg.SchemaOutput); !os.IsNotExist(err) {
		t.Errorf("schema written in data-only mode (stat err = %v)", err)
	}
}

func TestRunConvertInlineData(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.InlineData = true
	res, err := runConvert(cfg)
	if err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	if res.DataStatements != 3 || res.Chunks != 0 {
		t.Errorf("result = %+v, want 3 inline statements and no chunks", res)
	}

	schema := readFile(t, cfg.SchemaOutput)
	data := strings.Index(schema, "-- ===== DATA =====")
	if data < 0 {
		t.Fatal("DATA section missing from schema output")
	}
	if !strings.Contains(schema, `INSERT INTO "users" VALUES (1,'ann@example.com','active');`) {
		t.Error("inline data statement missing")
	}
	if tables, indexes := strings.Index(schema, "-- ===== TABLES ====="), strings.Index(schema, "-- ===== INDEXES ====="); data < tables || data > indexes {
		t.Error("DATA section out of place")
	}
	if _, err := os.Stat(cfg.DataDir); !os.IsNotExist(err) {
		t.Errorf("data dir created in inline mode (stat err = %v)", err)
	}
}

func TestRunConvertCRLF(t *testing.T) {
	cfg := defaultConfig()
	cfg.Input = writeSampleDump(t, t.TempDir(), "\r\n")
	cfg.deriveOutputs()

	res, err := runConvert(cfg)
	if err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	if res.Tables != 2 || res.DataStatements != 3 {
		t.Errorf("result = %+v, want 2 tables and 3 data statements", res)
	}
	chunk := readFile(t, filepath.Join(cfg.DataDir, chunkFileName(cfg.DataPrefix, 1)))
	if strings.Contains(chunk, "\r") {
		t.Error("carriage returns leaked into chunk output")
	}
}

func TestRunConvertLatin1Fallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.sql")
	raw := []byte("INSERT INTO `menu` VALUES (1,'caf\xe9');\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}

	cfg := defaultConfig()
	cfg.Input = path
	cfg.DataOnly = true
	cfg.deriveOutputs()

	res, err := runConvert(cfg)
	if err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	if res.DataStatements != 1 {
		t.Fatalf("data statements = %d, want 1", res.DataStatements)
	}
	chunk := readFile(t, filepath.Join(cfg.DataDir, chunkFileName(cfg.DataPrefix, 1)))
	if !strings.Contains(chunk, `INSERT INTO "menu" VALUES (1,'café');`) {
		t.Errorf("latin1 text not re-encoded as UTF-8:\n%s", chunk)
	}
}

func TestRunConvertStatementSharingLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.sql")
	content := "SET autocommit=0; INSERT INTO `t` VALUES (1);\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write dump: %v", err)
	}

	cfg := defaultConfig()
	cfg.Input = path
	cfg.deriveOutputs()

	res, err := runConvert(cfg)
	if err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	if res.DataStatements != 1 {
		t.Fatalf("data statements = %d, want 1", res.DataStatements)
	}
	chunk := readFile(t, filepath.Join(cfg.DataDir, chunkFileName(cfg.DataPrefix, 1)))
	if !strings.Contains(chunk, `INSERT INTO "t" VALUES (1);`) {
		t.Errorf("statement sharing a line with another was lost:\n%s", chunk)
	}
}

func TestRunConvertMissingInput(t *testing.T) {
	cfg := defaultConfig()
	cfg.Input = filepath.Join(t.TempDir(), "absent.sql")
	cfg.deriveOutputs()
	if _, err := runConvert(cfg); err == nil {
		t.Fatal("expected an error for a missing input file")
	}
}

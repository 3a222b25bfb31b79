package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
)

var fetchFlags struct {
	dsn          string
	charset      string
	schemaOutput string
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [config.toml]",
	Short: "Convert the schema of a live MySQL database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFetchCmd,
}

func init() {
	f := fetchCmd.Flags()
	f.StringVar(&fetchFlags.dsn, "dsn", "", "MySQL DSN (user:pass@tcp(host:port)/dbname)")
	f.StringVar(&fetchFlags.charset, "charset", "", "character set for the MySQL connection")
	f.StringVar(&fetchFlags.schemaOutput, "schema-output", "", "path for the converted schema (default: <dbname>_pg.sql)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(args)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("dsn") {
		cfg.Fetch.DSN = fetchFlags.dsn
	}
	if f.Changed("charset") {
		cfg.Fetch.Charset = fetchFlags.charset
	}
	if f.Changed("schema-output") {
		cfg.SchemaOutput = fetchFlags.schemaOutput
	}
	if cfg.Fetch.DSN == "" {
		return fmt.Errorf("fetch.dsn is required: set it in the config or pass --dsn")
	}

	ctx := context.Background()
	start := time.Now()
	log.Printf("mysql2pg — live MySQL schema conversion")

	dbName, err := extractMySQLDBName(cfg.Fetch.DSN)
	if err != nil {
		return err
	}
	if cfg.SchemaOutput == "" {
		cfg.SchemaOutput = dbName + "_pg.sql"
	}

	log.Printf("connecting to MySQL...")
	dsn, err := mysqlDSNWithReadOptions(cfg.Fetch.DSN, cfg.Fetch.Charset)
	if err != nil {
		return err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping mysql: %w", err)
	}

	log.Printf("listing tables in '%s'...", dbName)
	tables, err := listMySQLTables(ctx, db, dbName)
	if err != nil {
		return fmt.Errorf("list tables: %w", err)
	}
	log.Printf("found %d table(s)", len(tables))

	conv := newConversion(cfg.TypeMapping)
	for _, table := range tables {
		ddl, err := showCreateMySQLTable(ctx, db, table)
		if err != nil {
			return err
		}
		log.Printf("  %s", table)
		if err := convertCreateTable(conv, ddl); err != nil {
			conv.warnf("%v; table skipped", err)
		}
	}

	objWarnings, err := collectMySQLObjectWarnings(ctx, db, dbName)
	if err != nil {
		return fmt.Errorf("introspect source objects: %w", err)
	}
	conv.warnings = append(conv.warnings, objWarnings...)

	out, err := os.Create(cfg.SchemaOutput)
	if err != nil {
		return fmt.Errorf("create schema output: %w", err)
	}
	if err := renderSchema(out, conv); err != nil {
		out.Close()
		return fmt.Errorf("write schema: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close schema output: %w", err)
	}

	log.Printf("schema: %d table(s) → %s", len(conv.tables), cfg.SchemaOutput)
	logWarnings(conv.warnings)
	log.Printf("fetch completed in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// mysqlDSNWithReadOptions normalizes a MySQL DSN for dump reading: values
// come back interpolated and in UTC, and the connection charset is pinned so
// text survives the round trip unchanged.
func mysqlDSNWithReadOptions(baseDSN, charset string) (string, error) {
	cfg, err := mysql.ParseDSN(baseDSN)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.InterpolateParams = true
	cfg.Loc = time.UTC
	if charset != "" {
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params["charset"] = charset
	}
	return cfg.FormatDSN(), nil
}

// extractMySQLDBName pulls the database name from a MySQL DSN.
// Expects format: user:pass@tcp(host:port)/dbname or user:pass@host:port/dbname
func extractMySQLDBName(dsn string) (string, error) {
	paramIdx := len(dsn)
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		paramIdx = i
	}
	slashIdx := strings.LastIndexByte(dsn[:paramIdx], '/')
	if slashIdx < 0 {
		return "", fmt.Errorf("cannot extract database name from DSN: no '/' found")
	}
	dbName := dsn[slashIdx+1 : paramIdx]
	if dbName == "" {
		return "", fmt.Errorf("cannot extract database name from DSN: empty name")
	}
	return dbName, nil
}

func listMySQLTables(ctx context.Context, db *sql.DB, dbName string) ([]string, error) {
	var tables []string
	err := collectStringRows(ctx, db, `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME
	`, dbName, &tables)
	return tables, err
}

func showCreateMySQLTable(ctx context.Context, db *sql.DB, table string) (string, error) {
	var name, ddl string
	if err := db.QueryRowContext(ctx, "SHOW CREATE TABLE "+mysqlQuoteIdent(table)).Scan(&name, &ddl); err != nil {
		return "", fmt.Errorf("show create table %s: %w", table, err)
	}
	return ddl, nil
}

func mysqlQuoteIdent(name string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(name, "`", "``"))
}

// collectMySQLObjectWarnings lists the non-table objects (views, routines,
// triggers) of the source database. They have no automatic conversion and
// surface as warnings only.
func collectMySQLObjectWarnings(ctx context.Context, db *sql.DB, dbName string) ([]string, error) {
	var views, triggers []string
	if err := collectStringRows(ctx, db, `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.VIEWS
		WHERE TABLE_SCHEMA = ?
		ORDER BY TABLE_NAME
	`, dbName, &views); err != nil {
		return nil, fmt.Errorf("introspect views: %w", err)
	}

	var routines []string
	rows, err := db.QueryContext(ctx, `
		SELECT ROUTINE_TYPE, ROUTINE_NAME
		FROM INFORMATION_SCHEMA.ROUTINES
		WHERE ROUTINE_SCHEMA = ?
		ORDER BY ROUTINE_TYPE, ROUTINE_NAME
	`, dbName)
	if err != nil {
		return nil, fmt.Errorf("introspect routines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var routineType, routineName string
		if err := rows.Scan(&routineType, &routineName); err != nil {
			return nil, fmt.Errorf("scan routines: %w", err)
		}
		routines = append(routines, fmt.Sprintf("%s %s", strings.ToUpper(routineType), routineName))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate routines: %w", err)
	}

	if err := collectStringRows(ctx, db, `
		SELECT TRIGGER_NAME
		FROM INFORMATION_SCHEMA.TRIGGERS
		WHERE TRIGGER_SCHEMA = ?
		ORDER BY TRIGGER_NAME
	`, dbName, &triggers); err != nil {
		return nil, fmt.Errorf("introspect triggers: %w", err)
	}

	if len(views) == 0 && len(routines) == 0 && len(triggers) == 0 {
		return nil, nil
	}
	warnings := []string{fmt.Sprintf(
		"source contains non-table objects not converted automatically (%d views, %d routines, %d triggers)",
		len(views), len(routines), len(triggers),
	)}
	for _, v := range views {
		warnings = append(warnings, fmt.Sprintf("view: %s", v))
	}
	for _, r := range routines {
		warnings = append(warnings, fmt.Sprintf("routine: %s", r))
	}
	for _, t := range triggers {
		warnings = append(warnings, fmt.Sprintf("trigger: %s", t))
	}
	return warnings, nil
}

func collectStringRows(ctx context.Context, db *sql.DB, query, param string, out *[]string) error {
	rows, err := db.QueryContext(ctx, query, param)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return err
		}
		*out = append(*out, v)
	}
	return rows.Err()
}

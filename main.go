package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:     "mysql2pg",
	Short:   "MySQL to PostgreSQL dump converter",
	Version: versionString(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandConfig resolves a command's configuration: the positional argument
// wins over --config; with neither, flag-only defaults apply.
func commandConfig(args []string) (*Config, error) {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return defaultConfig(), nil
	}
	return loadConfig(path)
}

func logWarnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	log.Printf("%d warning(s):", len(warnings))
	for _, w := range warnings {
		log.Printf("  WARN: %s", w)
	}
}

var convertFlags struct {
	input        string
	schemaOutput string
	dataDir      string
	dataPrefix   string
	chunkSizeMB  int
	schemaOnly   bool
	dataOnly     bool
	inlineData   bool
	scripts      bool
	enumMode     string
	setMode      string
	jsonAsJSONB  bool
}

var convertCmd = &cobra.Command{
	Use:   "convert [config.toml]",
	Short: "Convert a MySQL dump file into a PostgreSQL schema and data chunks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConvertCmd,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")

	f := convertCmd.Flags()
	f.StringVar(&convertFlags.input, "input", "", "MySQL dump file to convert")
	f.StringVar(&convertFlags.schemaOutput, "schema-output", "", "path for the converted schema (default: <input>_pg.sql)")
	f.StringVar(&convertFlags.dataDir, "data-dir", "", "directory for data chunk files (default: <input>_data)")
	f.StringVar(&convertFlags.dataPrefix, "data-prefix", "pg_inserts", "chunk file name prefix")
	f.IntVar(&convertFlags.chunkSizeMB, "chunk-size-mb", 200, "byte budget per chunk file, in MB")
	f.BoolVar(&convertFlags.schemaOnly, "schema-only", false, "convert only the schema, skip data")
	f.BoolVar(&convertFlags.dataOnly, "data-only", false, "convert only the data, skip the schema")
	f.BoolVar(&convertFlags.inlineData, "inline-data", false, "write data into the schema output instead of chunk files")
	f.BoolVar(&convertFlags.scripts, "scripts", true, "generate import_all.sh and import_all.bat next to the chunks")
	f.StringVar(&convertFlags.enumMode, "enum-mode", "check", "enum conversion: check or text")
	f.StringVar(&convertFlags.setMode, "set-mode", "text_array", "set conversion: text_array or text")
	f.BoolVar(&convertFlags.jsonAsJSONB, "json-as-jsonb", false, "map json columns to jsonb")
	rootCmd.AddCommand(convertCmd)
}

func runConvertCmd(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(args)
	if err != nil {
		return err
	}
	applyConvertFlags(cmd, cfg)
	cfg.deriveOutputs()
	if cfg.Input == "" {
		return fmt.Errorf("input dump required: set input in the config or pass --input")
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	start := time.Now()
	log.Printf("mysql2pg — MySQL → PostgreSQL dump conversion")
	log.Printf(
		"config: input=%s schema_output=%s data_dir=%s data_prefix=%s chunk_size_mb=%d schema_only=%t data_only=%t inline_data=%t enum_mode=%s set_mode=%s",
		cfg.Input,
		cfg.SchemaOutput,
		cfg.DataDir,
		cfg.DataPrefix,
		cfg.ChunkSizeMB,
		cfg.SchemaOnly,
		cfg.DataOnly,
		cfg.InlineData,
		cfg.TypeMapping.EnumMode,
		cfg.TypeMapping.SetMode,
	)

	res, err := runConvert(cfg)
	if err != nil {
		return err
	}

	if !cfg.DataOnly {
		log.Printf("schema: %d table(s) → %s", res.Tables, cfg.SchemaOutput)
	}
	switch {
	case res.Chunks > 0:
		log.Printf("data: %d statement(s) across %d chunk(s) in %s", res.DataStatements, res.Chunks, cfg.DataDir)
	case res.DataStatements > 0:
		log.Printf("data: %d statement(s) inlined into the schema output", res.DataStatements)
	}
	if cfg.GenerateScripts && res.Chunks > 0 {
		if err := writeImportScripts(cfg.DataDir, cfg.DataPrefix, res.Chunks); err != nil {
			return fmt.Errorf("generate import scripts: %w", err)
		}
		log.Printf("  wrote import_all.sh and import_all.bat")
	}
	logWarnings(res.Warnings)
	log.Printf("conversion completed in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

func applyConvertFlags(cmd *cobra.Command, cfg *Config) {
	f := cmd.Flags()
	if f.Changed("input") {
		cfg.Input = convertFlags.input
	}
	if f.Changed("schema-output") {
		cfg.SchemaOutput = convertFlags.schemaOutput
	}
	if f.Changed("data-dir") {
		cfg.DataDir = convertFlags.dataDir
	}
	if f.Changed("data-prefix") {
		cfg.DataPrefix = convertFlags.dataPrefix
	}
	if f.Changed("chunk-size-mb") {
		cfg.ChunkSizeMB = convertFlags.chunkSizeMB
	}
	if f.Changed("schema-only") {
		cfg.SchemaOnly = convertFlags.schemaOnly
	}
	if f.Changed("data-only") {
		cfg.DataOnly = convertFlags.dataOnly
	}
	if f.Changed("inline-data") {
		cfg.InlineData = convertFlags.inlineData
	}
	if f.Changed("scripts") {
		cfg.GenerateScripts = convertFlags.scripts
	}
	if f.Changed("enum-mode") {
		cfg.TypeMapping.EnumMode = convertFlags.enumMode
	}
	if f.Changed("set-mode") {
		cfg.TypeMapping.SetMode = convertFlags.setMode
	}
	if f.Changed("json-as-jsonb") {
		cfg.TypeMapping.JSONAsJSONB = convertFlags.jsonAsJSONB
	}
}

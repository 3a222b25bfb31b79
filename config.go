package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the full TOML-driven conversion configuration. Every field
// can also be set from a command flag; flags win over the file.
type Config struct {
	Input           string            `toml:"input"`
	SchemaOutput    string            `toml:"schema_output"`
	DataDir         string            `toml:"data_dir"`
	DataPrefix      string            `toml:"data_prefix"`
	ChunkSizeMB     int               `toml:"chunk_size_mb"`
	SchemaOnly      bool              `toml:"schema_only"`
	DataOnly        bool              `toml:"data_only"`
	InlineData      bool              `toml:"inline_data"`
	GenerateScripts bool              `toml:"generate_scripts"`
	TypeMapping     TypeMappingConfig `toml:"type_mapping"`
	Fetch           FetchConfig       `toml:"fetch"`
	Load            LoadConfig        `toml:"load"`

	// configDir is the directory containing the TOML file, used to resolve
	// relative paths.
	configDir string
}

// TypeMappingConfig controls non-lossless type coercions.
type TypeMappingConfig struct {
	EnumMode    string `toml:"enum_mode"` // text|check
	SetMode     string `toml:"set_mode"`  // text|text_array
	JSONAsJSONB bool   `toml:"json_as_jsonb"`
}

// FetchConfig points the fetch command at a live MySQL server.
type FetchConfig struct {
	DSN     string `toml:"dsn"`
	Charset string `toml:"charset"` // character set for the MySQL connection (default: "utf8mb4")
}

// LoadConfig points the load command at the target PostgreSQL server.
type LoadConfig struct {
	DSN        string `toml:"dsn"`
	Workers    int    `toml:"workers"`
	LoadSchema bool   `toml:"load_schema"` // apply the schema file before the chunks
}

// loadConfig reads a TOML config file and returns a Config with defaults
// applied. Relative paths in the file resolve against the file's directory,
// not the working directory.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := defaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.configDir = filepath.Dir(absPath)
	cfg.Input = cfg.resolvePath(cfg.Input)
	cfg.SchemaOutput = cfg.resolvePath(cfg.SchemaOutput)
	cfg.DataDir = cfg.resolvePath(cfg.DataDir)

	if cfg.Load.Workers <= 0 {
		cfg.Load.Workers = defaultWorkers()
	}
	if cfg.Fetch.Charset == "" {
		cfg.Fetch.Charset = "utf8mb4"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		DataPrefix:      "pg_inserts",
		ChunkSizeMB:     200,
		GenerateScripts: true,
		TypeMapping:     defaultTypeMappingConfig(),
		Fetch:           FetchConfig{Charset: "utf8mb4"},
		Load:            LoadConfig{Workers: defaultWorkers()},
	}
}

func defaultTypeMappingConfig() TypeMappingConfig {
	return TypeMappingConfig{
		EnumMode: "check",
		SetMode:  "text_array",
	}
}

// validate checks the mode fields. Commands re-run it after applying their
// flag overrides.
func (c *Config) validate() error {
	if c.ChunkSizeMB <= 0 {
		return fmt.Errorf("chunk_size_mb must be positive")
	}
	if c.DataPrefix == "" {
		return fmt.Errorf("data_prefix must not be empty")
	}
	switch c.TypeMapping.EnumMode {
	case "text", "check":
	default:
		return fmt.Errorf("type_mapping.enum_mode must be one of: text, check")
	}
	switch c.TypeMapping.SetMode {
	case "text", "text_array":
	default:
		return fmt.Errorf("type_mapping.set_mode must be one of: text, text_array")
	}
	if c.SchemaOnly && c.DataOnly {
		return fmt.Errorf("schema_only and data_only are mutually exclusive")
	}
	if c.DataOnly && c.InlineData {
		return fmt.Errorf("inline_data writes data into the schema output, which data_only skips")
	}
	return nil
}

// deriveOutputs fills schema_output and data_dir from the input path when
// they were not configured.
func (c *Config) deriveOutputs() {
	if c.Input == "" {
		return
	}
	stem := strings.TrimSuffix(c.Input, filepath.Ext(c.Input))
	if c.SchemaOutput == "" {
		c.SchemaOutput = stem + "_pg.sql"
	}
	if c.DataDir == "" {
		c.DataDir = stem + "_data"
	}
}

// resolvePath resolves a path relative to the config file directory.
func (c *Config) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.configDir, p)
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}

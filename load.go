package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var loadFlags struct {
	dsn          string
	workers      int
	dataDir      string
	dataPrefix   string
	withSchema   bool
	schemaOutput string
}

var loadCmd = &cobra.Command{
	Use:   "load [config.toml]",
	Short: "Bulk-load converted chunk files into PostgreSQL",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLoadCmd,
}

func init() {
	f := loadCmd.Flags()
	f.StringVar(&loadFlags.dsn, "dsn", "", "PostgreSQL DSN or URL")
	f.IntVar(&loadFlags.workers, "workers", defaultWorkers(), "number of parallel load workers")
	f.StringVar(&loadFlags.dataDir, "data-dir", "", "directory holding the chunk files (default: current directory)")
	f.StringVar(&loadFlags.dataPrefix, "data-prefix", "pg_inserts", "chunk file name prefix")
	f.BoolVar(&loadFlags.withSchema, "with-schema", false, "apply the converted schema before the chunks")
	f.StringVar(&loadFlags.schemaOutput, "schema-output", "", "schema file to apply with --with-schema")
	rootCmd.AddCommand(loadCmd)
}

func runLoadCmd(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(args)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("dsn") {
		cfg.Load.DSN = loadFlags.dsn
	}
	if f.Changed("workers") {
		cfg.Load.Workers = loadFlags.workers
	}
	if f.Changed("data-dir") {
		cfg.DataDir = loadFlags.dataDir
	}
	if f.Changed("data-prefix") {
		cfg.DataPrefix = loadFlags.dataPrefix
	}
	if f.Changed("with-schema") {
		cfg.Load.LoadSchema = loadFlags.withSchema
	}
	if f.Changed("schema-output") {
		cfg.SchemaOutput = loadFlags.schemaOutput
	}
	if cfg.Load.DSN == "" {
		return fmt.Errorf("load.dsn is required: set it in the config or pass --dsn")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.Load.Workers < 1 {
		cfg.Load.Workers = 1
	}
	return runLoad(context.Background(), cfg)
}

// runLoad loads every chunk file with a pool of workers. Chunks are
// self-bracketed, so workers need no coordination: each claims whole files,
// and statement errors inside a chunk are counted rather than fatal. The
// schema file, when requested, is applied first and any error there aborts.
func runLoad(ctx context.Context, cfg *Config) error {
	start := time.Now()
	log.Printf("mysql2pg — parallel chunk load")

	files, err := chunkFiles(cfg.DataDir, cfg.DataPrefix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s_part_*.sql files in %s", cfg.DataPrefix, cfg.DataDir)
	}
	log.Printf("found %d chunk file(s) in %s", len(files), cfg.DataDir)

	pool, err := pgxpool.New(ctx, cfg.Load.DSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	var stats loadStats
	if cfg.Load.LoadSchema {
		if cfg.SchemaOutput == "" {
			return fmt.Errorf("--with-schema needs schema_output (or --schema-output)")
		}
		log.Printf("applying schema %s...", cfg.SchemaOutput)
		before := stats.statements.Load()
		if err := execFileStatements(ctx, pool, cfg.SchemaOutput, true, &stats); err != nil {
			return err
		}
		log.Printf("  %d schema statement(s) applied", stats.statements.Load()-before)
	}

	workers := cfg.Load.Workers
	if workers > len(files) {
		workers = len(files)
	}
	log.Printf("loading with %d worker(s)...", workers)

	uiprogress.Start()
	bar := uiprogress.AddBar(len(files)).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return fmt.Sprintf("chunks %d/%d", b.Current(), len(files))
	})

	var (
		mu       sync.Mutex
		firstErr error
	)
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	filesCh := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range filesCh {
				if !failed() {
					if err := execFileStatements(ctx, pool, path, false, &stats); err != nil {
						setErr(err)
					}
				}
				bar.Incr()
			}
		}()
	}
	for _, path := range files {
		filesCh <- path
	}
	close(filesCh)
	wg.Wait()
	uiprogress.Stop()

	if firstErr != nil {
		return firstErr
	}

	log.Printf("loaded %d statement(s) from %d file(s), %d statement error(s)",
		stats.statements.Load(), len(files), stats.errors.Load())
	for _, sample := range stats.errorSamples() {
		log.Printf("  WARN: %s", sample)
	}
	if n := stats.errors.Load(); n > int64(len(stats.errorSamples())) {
		log.Printf("  ... and %d more statement error(s)", n-int64(len(stats.errorSamples())))
	}
	log.Printf("load completed in %s", time.Since(start).Round(time.Millisecond))
	return nil
}

// loadStats aggregates counters across load workers. A handful of statement
// error samples are kept for the summary log; the rest only count.
type loadStats struct {
	statements atomic.Int64
	errors     atomic.Int64

	mu      sync.Mutex
	samples []string
}

const maxErrorSamples = 5

func (s *loadStats) recordError(msg string) {
	s.errors.Add(1)
	s.mu.Lock()
	if len(s.samples) < maxErrorSamples {
		s.samples = append(s.samples, msg)
	}
	s.mu.Unlock()
}

func (s *loadStats) errorSamples() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.samples...)
}

// execFileStatements streams one SQL file statement by statement over a
// single acquired connection. A chunk's session brackets (replica mode at the
// top, restored by the footer) hold only on the session that executes the
// statements between them, so the whole file must stay on one connection.
// psql meta-command lines (leading backslash) are client-side directives and
// are skipped. With fatal unset, statement failures are recorded and the load
// continues; chunk files are bracketed for exactly that.
func execFileStatements(ctx context.Context, pool *pgxpool.Pool, path string, fatal bool, stats *loadStats) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection for %s: %w", filepath.Base(path), err)
	}
	defer conn.Release()

	exec := func(stmt string) error {
		stats.statements.Add(1)
		if _, err := conn.Exec(ctx, stmt); err != nil {
			if fatal {
				return fmt.Errorf("%s: %w\nstatement: %s", filepath.Base(path), err, truncate(stmt, 200))
			}
			stats.recordError(fmt.Sprintf("%s: %v (statement: %s)", filepath.Base(path), err, truncate(stmt, 120)))
		}
		return nil
	}

	var scanner statementScanner
	reader := bufio.NewReaderSize(f, 1<<20)
	for {
		raw, readErr := reader.ReadBytes('\n')
		if len(raw) > 0 {
			line := strings.TrimRight(string(raw), "\r\n")
			if !isPsqlMeta(line) {
				for _, stmt := range scanner.feed(line) {
					if err := exec(stmt); err != nil {
						return err
					}
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read %s: %w", path, readErr)
		}
	}
	if stmt := scanner.flush(); stmt != "" {
		return exec(stmt)
	}
	return nil
}

// isPsqlMeta reports whether a line is a psql meta-command such as \set.
func isPsqlMeta(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), `\`)
}

// chunkFiles lists the chunk files under dir in load order. Chunk numbers
// are zero-padded, so lexical order is numeric order.
func chunkFiles(dir, prefix string) ([]string, error) {
	pattern := filepath.Join(dir, prefix+"_part_*.sql")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	sort.Strings(files)
	return files, nil
}

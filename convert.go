package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// ConvertResult reports what one conversion run produced.
type ConvertResult struct {
	Tables         int
	DataStatements int
	Chunks         int
	Warnings       []string
}

// converter drives a single streaming pass over dump text. INSERT lines take
// the line-oriented fast path straight to the data sink; everything else
// accumulates into statements and is classified. The pass holds the current
// line and statement in memory, never the whole dump.
type converter struct {
	conv       *Conversion
	chunks     *chunkWriter // nil when data goes inline or is skipped
	schemaOnly bool
	dataOnly   bool
	inlineData bool

	scanner statementScanner
	lineNo  int
	data    int
}

func (cv *converter) run(r io.Reader) error {
	reader := bufio.NewReaderSize(r, 1<<20)
	for {
		raw, readErr := reader.ReadBytes('\n')
		if len(raw) > 0 {
			cv.lineNo++
			line, err := decodeDumpLine(bytes.TrimRight(raw, "\r\n"))
			if err != nil {
				cv.conv.warnf("line %d: cannot decode (%v), skipped", cv.lineNo, err)
			} else if err := cv.handleLine(line); err != nil {
				return err
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read input: %w", readErr)
		}
	}
	if stmt := cv.scanner.flush(); stmt != "" && !cv.dataOnly {
		return cv.handleStatement(stmt)
	}
	return nil
}

func (cv *converter) handleLine(line string) error {
	if stmt, ok := convertInsertLine(line); ok {
		if cv.schemaOnly {
			return nil
		}
		return cv.writeData(stmt)
	}
	if cv.dataOnly {
		return nil
	}
	for _, stmt := range cv.scanner.feed(line) {
		if err := cv.handleStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// handleStatement classifies one accumulated statement. Table definitions
// convert; an INSERT that shared its line with another statement still
// reaches the data sink here; views, triggers and routines raise a warning;
// session settings, lock statements and the like are dropped.
func (cv *converter) handleStatement(stmt string) error {
	switch {
	case createTableStmtRe.MatchString(stmt):
		if err := convertCreateTable(cv.conv, stmt); err != nil {
			cv.conv.warnf("%v; statement dropped", err)
		}
	case insertStmtRe.MatchString(stmt):
		if cv.schemaOnly {
			return nil
		}
		converted, _ := convertInsertLine(stmt)
		return cv.writeData(converted)
	default:
		if kind, name, ok := classifyUnsupportedObject(stmt); ok {
			if name != "" {
				cv.conv.warnf("%s %s is not converted automatically; migrate it manually", kind, name)
			} else {
				cv.conv.warnf("a %s definition is not converted automatically; migrate it manually", kind)
			}
		}
	}
	return nil
}

func (cv *converter) writeData(stmt string) error {
	cv.data++
	if cv.inlineData {
		cv.conv.data = append(cv.conv.data, stmt)
		return nil
	}
	return cv.chunks.Write(stmt)
}

// runConvert executes one conversion: stream the input dump once, write the
// converted schema and rotate data chunks as the byte budget fills.
func runConvert(cfg *Config) (*ConvertResult, error) {
	in, err := os.Open(cfg.Input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	conv := newConversion(cfg.TypeMapping)
	cv := &converter{
		conv:       conv,
		schemaOnly: cfg.SchemaOnly,
		dataOnly:   cfg.DataOnly,
		inlineData: cfg.InlineData,
	}
	if !cfg.SchemaOnly && !cfg.InlineData {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		cv.chunks = newChunkWriter(cfg.DataDir, cfg.DataPrefix, int64(cfg.ChunkSizeMB)*1024*1024)
	}

	if err := cv.run(in); err != nil {
		return nil, err
	}
	if cv.chunks != nil {
		if err := cv.chunks.Close(); err != nil {
			return nil, err
		}
	}

	if !cfg.DataOnly {
		out, err := os.Create(cfg.SchemaOutput)
		if err != nil {
			return nil, fmt.Errorf("create schema output: %w", err)
		}
		if err := renderSchema(out, conv); err != nil {
			out.Close()
			return nil, fmt.Errorf("write schema: %w", err)
		}
		if err := out.Close(); err != nil {
			return nil, fmt.Errorf("close schema output: %w", err)
		}
	}

	res := &ConvertResult{
		Tables:         len(conv.tables),
		DataStatements: cv.data,
		Warnings:       conv.warnings,
	}
	if cv.chunks != nil {
		res.Chunks = cv.chunks.totalChunks
	}
	return res, nil
}

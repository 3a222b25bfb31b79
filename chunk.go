package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// chunkWriter streams converted INSERT statements into byte-budgeted files.
// Every chunk is bracketed with session settings so the files can be loaded
// independently and in any order. Creation is lazy: a chunk file exists only
// once the first statement for it arrives, and a statement is never split
// across two files even when it alone exceeds the budget.
type chunkWriter struct {
	dir    string
	prefix string
	budget int64

	file       *os.File
	chunk      int   // 1-based number of the open chunk
	size       int64 // statement bytes written to the open chunk
	statements int   // statements written to the open chunk

	totalChunks     int
	totalStatements int
}

func newChunkWriter(dir, prefix string, budget int64) *chunkWriter {
	return &chunkWriter{dir: dir, prefix: prefix, budget: budget}
}

// Write appends one converted statement, rotating to the next chunk first
// when the statement would push the open chunk past its byte budget. Headers
// and footers do not count against the budget; only statement bytes do.
func (w *chunkWriter) Write(stmt string) error {
	stmtBytes := int64(len(stmt)) + 1
	if w.file != nil && w.size+stmtBytes > w.budget && w.statements > 0 {
		if err := w.closeChunk(); err != nil {
			return err
		}
	}
	if w.file == nil {
		if err := w.openChunk(); err != nil {
			return err
		}
	}
	if _, err := w.file.WriteString(stmt + "\n"); err != nil {
		return fmt.Errorf("write chunk %d: %w", w.chunk, err)
	}
	w.size += stmtBytes
	w.statements++
	w.totalStatements++
	return nil
}

// Close finalizes the open chunk, if any.
func (w *chunkWriter) Close() error {
	return w.closeChunk()
}

func (w *chunkWriter) openChunk() error {
	w.chunk = w.totalChunks + 1
	name := chunkFileName(w.prefix, w.chunk)
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("create chunk %s: %w", name, err)
	}
	w.file = f
	w.size = 0
	w.statements = 0
	w.totalChunks++
	if _, err := f.WriteString(chunkHeader(w.chunk)); err != nil {
		return fmt.Errorf("write chunk %s header: %w", name, err)
	}
	return nil
}

func (w *chunkWriter) closeChunk() error {
	if w.file == nil {
		return nil
	}
	name := w.file.Name()
	if _, err := w.file.WriteString(chunkFooter); err != nil {
		w.file.Close()
		w.file = nil
		return fmt.Errorf("write chunk footer: %w", err)
	}
	err := w.file.Close()
	w.file = nil
	if err != nil {
		return fmt.Errorf("close chunk %s: %w", name, err)
	}
	return nil
}

func chunkFileName(prefix string, n int) string {
	return fmt.Sprintf("%s_part_%03d.sql", prefix, n)
}

func chunkHeader(n int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Converted data statements - part %d\n", n)
	b.WriteString("-- The converted schema must be loaded before this file.\n\n")
	b.WriteString("-- Keep going when a statement fails.\n")
	b.WriteString("\\set ON_ERROR_STOP off\n\n")
	b.WriteString("-- Replica mode skips triggers and foreign key checks during the load.\n")
	b.WriteString("SET session_replication_role = 'replica';\n\n")
	b.WriteString("SET synchronous_commit = OFF;\n")
	b.WriteString("SET maintenance_work_mem = '256MB';\n\n")
	return b.String()
}

const chunkFooter = "\n-- Restore integrity checking.\nSET session_replication_role = 'origin';\n"

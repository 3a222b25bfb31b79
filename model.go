package main

import (
	"fmt"
	"sort"
)

// Column is one converted column definition from a table body clause.
type Column struct {
	Name    string   // source identifier, unquoted
	Type    string   // resolved PostgreSQL type token
	NotNull bool
	Default string   // normalized default expression, "" when absent
	Enum    []string // allowed values backing a CHECK (col IN (...)) clause
	AutoInc bool
	Comment string // quoted literal, detached into a COMMENT ON COLUMN statement
}

// Table is one converted table definition. Column order is preserved exactly
// as declared; it determines physical column order in the target table.
type Table struct {
	Name       string
	Columns    []Column
	PrimaryKey []string // unquoted column names, composite order preserved
}

// Conversion carries the mutable accumulators threaded through one whole dump
// conversion. Sequences, indexes and comments deduplicate and are emitted in
// sorted order; foreign keys keep encounter order and are never deduplicated,
// since their declaration order reflects the safest emission order.
type Conversion struct {
	tm TypeMappingConfig

	tables      []string          // rendered CREATE TABLE statements, encounter order
	data        []string          // converted INSERT statements (inline mode only)
	sequences   map[string]string // sequence name → CREATE SEQUENCE statement
	indexes     map[string]string // index name → CREATE [UNIQUE] INDEX statement
	foreignKeys []string
	comments    map[string]bool

	warnedCollations map[string]bool
	warnings         []string
}

func newConversion(tm TypeMappingConfig) *Conversion {
	return &Conversion{
		tm:               tm,
		sequences:        make(map[string]string),
		indexes:          make(map[string]string),
		comments:         make(map[string]bool),
		warnedCollations: make(map[string]bool),
	}
}

func (c *Conversion) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// addSequence registers the backing sequence for an auto-increment column and
// returns the default expression referencing it.
func (c *Conversion) addSequence(table, column string) string {
	name := fmt.Sprintf("%s_%s_seq", table, column)
	c.sequences[name] = fmt.Sprintf("CREATE SEQUENCE %s;", pgQuoteIdent(name))
	return fmt.Sprintf("nextval('%s')", pgQuoteIdent(name))
}

// addIndex keeps the first definition seen under a given index name. Index
// names are database-wide in PostgreSQL, so a redefinition under the same
// name would fail at load time; it is dropped here with a warning instead.
func (c *Conversion) addIndex(name, stmt string) {
	if prev, ok := c.indexes[name]; ok {
		if prev != stmt {
			c.warnf("index %q redefined with a different statement; keeping the first definition", name)
		}
		return
	}
	c.indexes[name] = stmt
}

func (c *Conversion) addForeignKey(stmt string) {
	c.foreignKeys = append(c.foreignKeys, stmt)
}

func (c *Conversion) addComment(stmt string) {
	c.comments[stmt] = true
}

// sortedKeys returns the keys of a map in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedStatements returns the values of a statement map in sorted order.
func sortedStatements(m map[string]string) []string {
	stmts := make([]string, 0, len(m))
	for _, s := range m {
		stmts = append(stmts, s)
	}
	sort.Strings(stmts)
	return stmts
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var createTableNameRe = regexp.MustCompile("(?is)^\\s*CREATE\\s+TABLE\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?(?:`([^`]+)`|\"([^\"]+)\"|([A-Za-z0-9_$]+))")

// convertCreateTable converts one MySQL CREATE TABLE statement. The rendered
// table is appended in encounter order; its sequences, deferred indexes,
// foreign keys and column comments register on the conversion. Table options
// after the closing parenthesis (ENGINE, AUTO_INCREMENT, CHARSET) are
// ignored.
func convertCreateTable(c *Conversion, stmt string) error {
	m := createTableNameRe.FindStringSubmatch(stmt)
	if m == nil {
		return fmt.Errorf("no table name in CREATE TABLE statement %q", truncate(stmt, 80))
	}
	name := firstMatch(m[1], m[2], m[3])

	open := strings.IndexByte(stmt, '(')
	if open < 0 {
		return fmt.Errorf("table %s: no column list", name)
	}
	end := skipBalanced(stmt, open)
	if end < 0 {
		return fmt.Errorf("table %s: unbalanced column list", name)
	}

	t := &Table{Name: name}
	for _, clause := range splitClauses(stmt[open+1 : end-1]) {
		if extractConstraint(c, t, clause) {
			continue
		}
		col, err := parseColumn(c, name, clause)
		if err != nil {
			c.warnf("table %s: clause %q not understood, dropped", name, truncate(clause, 80))
			continue
		}
		t.Columns = append(t.Columns, col)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s: no convertible columns", name)
	}

	c.tables = append(c.tables, renderCreateTable(t))
	return nil
}

// renderCreateTable renders the converted definition. Declared column order
// is preserved; the primary key, when present, is the last entry.
func renderCreateTable(t *Table) string {
	defs := make([]string, 0, len(t.Columns)+1)
	for _, col := range t.Columns {
		defs = append(defs, renderColumn(col))
	}
	if len(t.PrimaryKey) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quotedColumnList(t.PrimaryKey)))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n    %s\n);", pgQuoteIdent(t.Name), strings.Join(defs, ",\n    "))
}

// renderColumn renders one column definition: name, type, NOT NULL, DEFAULT,
// then the enum CHECK, in that fixed order.
func renderColumn(col Column) string {
	var b strings.Builder
	b.WriteString(pgQuoteIdent(col.Name))
	b.WriteByte(' ')
	b.WriteString(col.Type)
	if col.NotNull {
		b.WriteString(" NOT NULL")
	}
	if col.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(col.Default)
	}
	if len(col.Enum) > 0 {
		quoted := make([]string, len(col.Enum))
		for i, v := range col.Enum {
			quoted[i] = pgLiteral(v)
		}
		fmt.Fprintf(&b, " CHECK (%s IN (%s))", pgQuoteIdent(col.Name), strings.Join(quoted, ", "))
	}
	return b.String()
}

// renderSchema writes the whole converted schema in a fixed section order:
// sequences first because column defaults reference them, then tables in dump
// order, inline data when present, indexes, foreign keys, comments. Foreign
// keys come after every table so circular references cannot fail at load.
func renderSchema(w io.Writer, c *Conversion) error {
	bw := bufio.NewWriter(w)

	writeSchemaSection(bw, "SEQUENCES", sortedStatements(c.sequences))
	bw.WriteByte('\n')
	writeSchemaSection(bw, "TABLES", c.tables)
	if len(c.data) > 0 {
		bw.WriteByte('\n')
		writeSchemaSection(bw, "DATA", c.data)
	}
	bw.WriteByte('\n')
	writeSchemaSection(bw, "INDEXES", sortedStatements(c.indexes))

	bw.WriteString("\n-- ===== FOREIGN KEYS =====\n")
	bw.WriteString("-- Added after all tables exist so circular references cannot fail.\n")
	for _, s := range c.foreignKeys {
		bw.WriteString(s)
		bw.WriteByte('\n')
	}

	bw.WriteByte('\n')
	writeSchemaSection(bw, "COMMENTS", sortedKeys(c.comments))

	return bw.Flush()
}

func writeSchemaSection(bw *bufio.Writer, label string, stmts []string) {
	fmt.Fprintf(bw, "-- ===== %s =====\n", label)
	for _, s := range stmts {
		bw.WriteString(s)
		bw.WriteByte('\n')
	}
}

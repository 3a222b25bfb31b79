package main

import "strings"

// pgQuoteIdent returns the identifier double-quoted. Emitted identifiers are
// always quoted so MySQL names keep their exact spelling (case, reserved
// words) in PostgreSQL.
func pgQuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// pgLiteral returns s as a single-quoted SQL string literal with embedded
// quotes doubled.
func pgLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quotedColumnList joins column names with proper quoting.
func quotedColumnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgQuoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

package main

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	columnNameRe = regexp.MustCompile("(?s)^(?:`([^`]+)`|\"([^\"]+)\"|([A-Za-z0-9_$]+))\\s+(.+)$")
	charsetRe    = regexp.MustCompile(`(?i)\s+CHARACTER\s+SET\s+\w+`)
	collateRe    = regexp.MustCompile(`(?i)\s+COLLATE[\s=]+(\w+)`)

	defaultRe     = regexp.MustCompile(`(?i)\bDEFAULT\s+('(?:[^']|'')*'|"(?:[^"]|"")*"|[^\s,]+)`)
	commentRe     = regexp.MustCompile(`(?i)\bCOMMENT\s+('(?:[^']|'')*'|"(?:[^"]|"")*")`)
	notNullRe     = regexp.MustCompile(`(?i)\bNOT\s+NULL\b`)
	autoIncRe     = regexp.MustCompile(`(?i)\bAUTO_INCREMENT\b`)
	onUpdateNowRe = regexp.MustCompile(`(?i)\bON\s+UPDATE\s+CURRENT_TIMESTAMP`)

	typeModifierRe    = regexp.MustCompile(`(?i)\s+(UNSIGNED|ZEROFILL)\b`)
	generatedMarkerRe = regexp.MustCompile(`(?is)^\s*(?:GENERATED\s+ALWAYS\s+)?AS\s*\(`)
)

// columnBoundaryKeywords terminate the type token of a column clause when
// seen at paren depth zero outside quotes. The type token itself may contain
// parentheses (decimal(10,2), enum('a','b')), so a plain word scan would cut
// too early.
var columnBoundaryKeywords = []string{
	"not null",
	"null",
	"default",
	"comment",
	"auto_increment",
	"on update",
	"generated",
	"primary",
	"unique",
	"key",
	"check",
	"references",
}

// parseColumn converts one column clause into a Column. The clause is known
// not to start with a recognized constraint keyword; failing to extract a
// name and type is an error so the caller can drop the clause with a warning.
func parseColumn(c *Conversion, tableName, clause string) (Column, error) {
	m := columnNameRe.FindStringSubmatch(clause)
	if m == nil {
		return Column{}, fmt.Errorf("no column name in %q", clause)
	}
	name := firstMatch(m[1], m[2], m[3])
	rest := m[4]

	// Charset and collation modifiers have no direct PostgreSQL spelling.
	if cm := collateRe.FindStringSubmatch(rest); cm != nil {
		coll := cm[1]
		if strings.HasSuffix(strings.ToLower(coll), "_ci") && !c.warnedCollations[coll] {
			c.warnedCollations[coll] = true
			c.warnf("collation %s is case-insensitive; PostgreSQL text comparisons are case-sensitive by default", coll)
		}
		rest = collateRe.ReplaceAllString(rest, "")
	}
	rest = charsetRe.ReplaceAllString(rest, "")

	end := typeTokenEnd(rest)
	token := strings.TrimSpace(typeModifierRe.ReplaceAllString(rest[:end], ""))
	if token == "" {
		return Column{}, fmt.Errorf("no type token in %q", clause)
	}
	flags := rest[end:]

	col := Column{Name: name}
	pgType, enumValues, known := mapColumnType(token, c.tm)
	if !known {
		c.warnf("table %s: unrecognized type %q on column %s kept as-is", tableName, token, name)
	}
	col.Type = pgType
	col.Enum = enumValues

	if generatedMarkerRe.MatchString(flags) {
		c.warnf("table %s: column %s is generated; kept as a plain column, the generation expression is not recreated", tableName, name)
		col.NotNull = notNullAfterExpression(flags)
		return col, nil
	}

	detached := commentRe.FindStringSubmatch(flags)
	flags = commentRe.ReplaceAllString(flags, "")

	col.NotNull = notNullRe.MatchString(flags)
	if dm := defaultRe.FindStringSubmatch(flags); dm != nil {
		col.Default = normalizeDefault(dm[1], col.Type)
	}
	if autoIncRe.MatchString(flags) {
		col.AutoInc = true
		col.Default = c.addSequence(tableName, name)
		col.NotNull = true
	}
	if onUpdateNowRe.MatchString(flags) {
		c.warnf("table %s: column %s has ON UPDATE CURRENT_TIMESTAMP; PostgreSQL would need a trigger for that, not converted", tableName, name)
	}
	if detached != nil {
		col.Comment = normalizeCommentLiteral(detached[1])
		c.addComment(fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;", pgQuoteIdent(tableName), pgQuoteIdent(name), col.Comment))
	}
	return col, nil
}

// typeTokenEnd returns the index where a clause's type token ends: the first
// boundary keyword at paren depth zero outside quotes, or len(rest).
func typeTokenEnd(rest string) int {
	lower := strings.ToLower(rest)
	depth := 0
	var quote byte
	for i := 0; i < len(rest); i++ {
		ch := rest[i]
		if quote != 0 {
			if ch == '\\' && i+1 < len(rest) {
				i++
				continue
			}
			if ch == quote {
				if i+1 < len(rest) && rest[i+1] == quote {
					i++
					continue
				}
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '(':
			depth++
		case ')':
			depth--
		default:
			if depth == 0 && wordStartsAt(lower, i) && boundaryKeywordAt(lower, i) {
				return i
			}
		}
	}
	return len(rest)
}

func wordStartsAt(lower string, i int) bool {
	if !isWordByte(lower[i]) {
		return false
	}
	return i == 0 || !isWordByte(lower[i-1])
}

func isWordByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func boundaryKeywordAt(lower string, i int) bool {
	for _, kw := range columnBoundaryKeywords {
		if matchKeyword(lower, i, kw) {
			return true
		}
	}
	// AS (expr) with the GENERATED ALWAYS prefix omitted
	if matchKeyword(lower, i, "as") {
		j := i + 2
		for j < len(lower) && (lower[j] == ' ' || lower[j] == '\t') {
			j++
		}
		if j < len(lower) && lower[j] == '(' {
			return true
		}
	}
	return false
}

func matchKeyword(lower string, i int, kw string) bool {
	if !strings.HasPrefix(lower[i:], kw) {
		return false
	}
	end := i + len(kw)
	return end == len(lower) || !isWordByte(lower[end])
}

// notNullAfterExpression reports whether NOT NULL follows the generation
// expression of a generated column (it cannot appear before it).
func notNullAfterExpression(flags string) bool {
	open := strings.IndexByte(flags, '(')
	if open < 0 {
		return false
	}
	end := skipBalanced(flags, open)
	if end < 0 {
		return false
	}
	return notNullRe.MatchString(flags[end:])
}

// normalizeDefault rewrites MySQL default sentinels into their PostgreSQL
// spelling. Quoted literals keep their quoting, except on a text[] column
// where MySQL's comma-joined set default becomes an array expression.
func normalizeDefault(raw, pgType string) string {
	switch strings.ToLower(raw) {
	case "null":
		return "NULL"
	case "current_timestamp", "current_timestamp()", "now()":
		return "CURRENT_TIMESTAMP"
	}
	switch raw {
	case "b'0'", `b"0"`:
		return "'0'"
	case "b'1'", `b"1"`:
		return "'1'"
	}
	if pgType == "text[]" && len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return setArrayLiteral(unquoteSingle(raw))
	}
	return raw
}

// unquoteSingle strips outer single quotes and undoubles '' escapes.
func unquoteSingle(s string) string {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return s
	}
	return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
}

// normalizeCommentLiteral converts a captured COMMENT literal of either quote
// style into a single-quoted PostgreSQL literal.
func normalizeCommentLiteral(lit string) string {
	if len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"' {
		inner := strings.ReplaceAll(lit[1:len(lit)-1], `""`, `"`)
		return pgLiteral(inner)
	}
	return lit
}

func firstMatch(groups ...string) string {
	for _, g := range groups {
		if g != "" {
			return g
		}
	}
	return ""
}

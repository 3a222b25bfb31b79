package main

import (
	"regexp"
	"strings"
)

// statementScanner accumulates dump lines into whole SQL statements,
// splitting on semicolons outside quoted regions. Quoting follows MySQL dump
// conventions: single- and double-quoted literals with backslash escapes and
// quote doubling, backtick identifiers. Comments (`--`, `#`, `/* */`,
// including mysqldump's /*!NNNNN */ conditionals) are dropped; the converter
// never re-emits source comments.
type statementScanner struct {
	buf          strings.Builder
	quote        byte // opening quote byte, 0 outside literals
	blockComment int  // "/* */" nesting depth
}

// feed consumes one physical line, without its terminator, and returns the
// statements it completed.
func (s *statementScanner) feed(line string) []string {
	var done []string
	if s.buf.Len() > 0 {
		s.buf.WriteByte('\n')
	}
scan:
	for i := 0; i < len(line); i++ {
		ch := line[i]
		if s.blockComment > 0 {
			switch {
			case ch == '*' && i+1 < len(line) && line[i+1] == '/':
				s.blockComment--
				i++
			case ch == '/' && i+1 < len(line) && line[i+1] == '*':
				s.blockComment++
				i++
			}
			continue
		}
		if s.quote != 0 {
			s.buf.WriteByte(ch)
			if ch == '\\' && s.quote != '`' && i+1 < len(line) {
				s.buf.WriteByte(line[i+1])
				i++
				continue
			}
			if ch == s.quote {
				if i+1 < len(line) && line[i+1] == s.quote {
					s.buf.WriteByte(s.quote)
					i++
					continue
				}
				s.quote = 0
			}
			continue
		}
		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			s.quote = ch
			s.buf.WriteByte(ch)
		case ch == '-' && i+1 < len(line) && line[i+1] == '-', ch == '#':
			// comment runs to end of line
			break scan
		case ch == '/' && i+1 < len(line) && line[i+1] == '*':
			s.blockComment++
			i++
		case ch == ';':
			if stmt := strings.TrimSpace(s.buf.String()); stmt != "" {
				done = append(done, stmt)
			}
			s.buf.Reset()
		default:
			s.buf.WriteByte(ch)
		}
	}
	return done
}

// flush returns the trailing unterminated statement, if any, and resets the
// scanner.
func (s *statementScanner) flush() string {
	stmt := strings.TrimSpace(s.buf.String())
	s.buf.Reset()
	s.quote = 0
	s.blockComment = 0
	return stmt
}

var (
	createTableStmtRe = regexp.MustCompile(`(?is)^CREATE\s+TABLE\b`)
	insertStmtRe      = regexp.MustCompile(`(?is)^INSERT\s+INTO\b`)

	unsupportedObjectRe = regexp.MustCompile(`(?is)^CREATE\s+(?:OR\s+REPLACE\s+)?(?:ALGORITHM\s*=\s*\S+\s+)?(?:DEFINER\s*=\s*\S+\s+)?(?:SQL\s+SECURITY\s+\w+\s+)?(VIEW|TRIGGER|PROCEDURE|FUNCTION|EVENT)\b`)
	objectNameRe        = regexp.MustCompile("(?is)^\\s+(?:IF\\s+NOT\\s+EXISTS\\s+)?(?:`([^`]+)`|\"([^\"]+)\"|([A-Za-z0-9_$]+))")
)

// classifyUnsupportedObject reports whether the statement creates a database
// object (view, trigger, routine, event) that has no automatic conversion.
func classifyUnsupportedObject(stmt string) (kind, name string, ok bool) {
	m := unsupportedObjectRe.FindStringSubmatchIndex(stmt)
	if m == nil {
		return "", "", false
	}
	kind = strings.ToLower(stmt[m[2]:m[3]])
	if nm := objectNameRe.FindStringSubmatch(stmt[m[3]:]); nm != nil {
		name = firstMatch(nm[1], nm[2], nm[3])
	}
	return kind, name, true
}

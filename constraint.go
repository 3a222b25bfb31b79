package main

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	primaryKeyClauseRe = regexp.MustCompile(`(?i)^PRIMARY\s+KEY\b`)
	uniqueKeyClauseRe  = regexp.MustCompile(`(?i)^UNIQUE\s+(?:KEY|INDEX)\b`)
	plainKeyClauseRe   = regexp.MustCompile(`(?i)^(?:KEY|INDEX)\b`)
	constraintClauseRe = regexp.MustCompile(`(?i)^CONSTRAINT\b`)
	fulltextClauseRe   = regexp.MustCompile(`(?i)^(?:FULLTEXT|SPATIAL)\b`)
	checkClauseRe      = regexp.MustCompile(`(?i)^CHECK\s*\(`)
	bareForeignKeyRe   = regexp.MustCompile(`(?i)^FOREIGN\s+KEY\b`)

	primaryKeyRe = regexp.MustCompile(`(?i)^PRIMARY\s+KEY\s*\(([^)]+)\)`)
	uniqueKeyRe  = regexp.MustCompile("(?i)^UNIQUE\\s+(?:KEY|INDEX)\\s+[`\"]?([\\w$]+)[`\"]?\\s*\\(([^)]+)\\)")
	plainKeyRe   = regexp.MustCompile("(?i)^(?:KEY|INDEX)\\s+[`\"]?([\\w$]+)[`\"]?\\s*\\(([^)]+)\\)")

	foreignKeyRe      = regexp.MustCompile("(?is)^CONSTRAINT\\s+[`\"]?([\\w$]+)[`\"]?\\s+FOREIGN\\s+KEY\\s*\\(([^)]+)\\)\\s*REFERENCES\\s+[`\"]?([\\w$]+)[`\"]?\\s*\\(([^)]+)\\)(.*)$")
	constraintCheckRe = regexp.MustCompile("(?i)^CONSTRAINT\\s+[`\"]?[\\w$]+[`\"]?\\s+CHECK\\b")

	fkActionDeleteRe = regexp.MustCompile(`(?i)\bON\s+DELETE\s+(CASCADE|RESTRICT|SET\s+NULL|SET\s+DEFAULT|NO\s+ACTION)`)
	fkActionUpdateRe = regexp.MustCompile(`(?i)\bON\s+UPDATE\s+(CASCADE|RESTRICT|SET\s+NULL|SET\s+DEFAULT|NO\s+ACTION)`)
)

// extractConstraint classifies a table body clause by its leading keyword and
// registers the converted form on the conversion. It returns false when the
// clause does not start with a constraint keyword, leaving it to the column
// parser. Unconvertible constraints are dropped with a warning rather than
// failing the table.
func extractConstraint(c *Conversion, t *Table, clause string) bool {
	switch {
	case primaryKeyClauseRe.MatchString(clause):
		extractPrimaryKey(c, t, clause)
	case uniqueKeyClauseRe.MatchString(clause):
		convertKeyClause(c, t, clause, uniqueKeyRe, true)
	case plainKeyClauseRe.MatchString(clause):
		convertKeyClause(c, t, clause, plainKeyRe, false)
	case constraintClauseRe.MatchString(clause):
		convertForeignKey(c, t, clause)
	case fulltextClauseRe.MatchString(clause):
		c.warnf("table %s: fulltext/spatial index dropped; rebuild it manually with tsvector or PostGIS: %s", t.Name, truncate(clause, 80))
	case checkClauseRe.MatchString(clause):
		c.warnf("table %s: CHECK constraint dropped, the expression is not translated: %s", t.Name, truncate(clause, 80))
	case bareForeignKeyRe.MatchString(clause):
		c.warnf("table %s: unnamed FOREIGN KEY dropped; name it with CONSTRAINT to convert it: %s", t.Name, truncate(clause, 80))
	default:
		return false
	}
	return true
}

func extractPrimaryKey(c *Conversion, t *Table, clause string) {
	if m := primaryKeyRe.FindStringSubmatch(clause); m != nil {
		if cols, err := keyColumns(m[1]); err == nil {
			t.PrimaryKey = cols
			return
		}
	}
	c.warnf("table %s: cannot parse primary key clause %q, dropped", t.Name, truncate(clause, 80))
}

// convertKeyClause turns a KEY or UNIQUE KEY clause into a deferred CREATE
// INDEX statement. MySQL scopes index names per table but PostgreSQL makes
// them database-wide, so registration dedupes by name dump-wide.
func convertKeyClause(c *Conversion, t *Table, clause string, re *regexp.Regexp, unique bool) {
	m := re.FindStringSubmatch(clause)
	if m == nil {
		c.warnf("table %s: cannot parse key clause %q, dropped", t.Name, truncate(clause, 80))
		return
	}
	name := m[1]
	cols, err := keyColumns(m[2])
	if err != nil {
		c.warnf("table %s: key %s dropped (%v); prefix and expression key parts are not supported", t.Name, name, err)
		return
	}
	kind := "INDEX"
	if unique {
		kind = "UNIQUE INDEX"
	}
	c.addIndex(name, fmt.Sprintf("CREATE %s %s ON %s (%s);", kind, pgQuoteIdent(name), pgQuoteIdent(t.Name), quotedColumnList(cols)))
}

// convertForeignKey rewrites CONSTRAINT ... FOREIGN KEY into an ALTER TABLE
// statement deferred until after every table exists, so references between
// tables cannot fail on declaration order. Referential actions carry over.
func convertForeignKey(c *Conversion, t *Table, clause string) {
	if constraintCheckRe.MatchString(clause) {
		c.warnf("table %s: CHECK constraint dropped, the expression is not translated: %s", t.Name, truncate(clause, 80))
		return
	}
	m := foreignKeyRe.FindStringSubmatch(clause)
	if m == nil {
		c.warnf("table %s: cannot parse constraint clause %q, dropped", t.Name, truncate(clause, 80))
		return
	}
	name, refTable, tail := m[1], m[3], m[5]
	cols, err := keyColumns(m[2])
	if err == nil {
		var refCols []string
		refCols, err = keyColumns(m[4])
		if err == nil {
			var b strings.Builder
			fmt.Fprintf(&b, "ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
				pgQuoteIdent(t.Name), pgQuoteIdent(name), quotedColumnList(cols), pgQuoteIdent(refTable), quotedColumnList(refCols))
			if am := fkActionDeleteRe.FindStringSubmatch(tail); am != nil {
				b.WriteString(" ON DELETE " + normalizeFKAction(am[1]))
			}
			if am := fkActionUpdateRe.FindStringSubmatch(tail); am != nil {
				b.WriteString(" ON UPDATE " + normalizeFKAction(am[1]))
			}
			b.WriteByte(';')
			c.addForeignKey(b.String())
			return
		}
	}
	c.warnf("table %s: foreign key %s dropped (%v)", t.Name, name, err)
}

// keyColumns splits a key column list, stripping identifier quoting. Parts
// carrying a prefix length, an expression or a sort direction have no direct
// PostgreSQL spelling here and make the whole key unconvertible.
func keyColumns(list string) ([]string, error) {
	parts := strings.Split(list, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), "`\"")
		if p == "" || strings.ContainsAny(p, " \t()") {
			return nil, fmt.Errorf("unsupported key part %q", p)
		}
		cols = append(cols, p)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("empty column list")
	}
	return cols, nil
}

func normalizeFKAction(a string) string {
	return strings.Join(strings.Fields(strings.ToUpper(a)), " ")
}

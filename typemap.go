package main

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// typeRule is one (pattern, replacement) pair of the ordered dispatch table.
type typeRule struct {
	pattern *regexp.Regexp
	repl    string
}

// typeRules maps MySQL type tokens to PostgreSQL, evaluated top to bottom,
// first full match wins. Order matters: parameterized forms must precede the
// bare forms (`tinyint` would otherwise shadow `tinyint(4)`), and bit(1)
// must win over the generic bit(n).
var typeRules = []typeRule{
	{regexp.MustCompile(`^tinyint\(\d+\)$`), "smallint"},
	{regexp.MustCompile(`^smallint\(\d+\)$`), "smallint"},
	{regexp.MustCompile(`^mediumint\(\d+\)$`), "integer"},
	{regexp.MustCompile(`^int\(\d+\)$`), "integer"},
	{regexp.MustCompile(`^integer\(\d+\)$`), "integer"},
	{regexp.MustCompile(`^bigint\(\d+\)$`), "bigint"},
	{regexp.MustCompile(`^bit\(1\)$`), "boolean"},
	{regexp.MustCompile(`^bit\((\d+)\)$`), "bit($1)"},

	{regexp.MustCompile(`^tinyint$`), "smallint"},
	{regexp.MustCompile(`^smallint$`), "smallint"},
	{regexp.MustCompile(`^mediumint$`), "integer"},
	{regexp.MustCompile(`^int$`), "integer"},
	{regexp.MustCompile(`^integer$`), "integer"},
	{regexp.MustCompile(`^bigint$`), "bigint"},
	{regexp.MustCompile(`^float$`), "real"},
	{regexp.MustCompile(`^double$`), "double precision"},
	{regexp.MustCompile(`^real$`), "real"},

	{regexp.MustCompile(`^datetime\(\d+\)$`), "timestamp(6)"},
	{regexp.MustCompile(`^datetime$`), "timestamp"},
	{regexp.MustCompile(`^timestamp\(\d+\)$`), "timestamp(6)"},
	{regexp.MustCompile(`^timestamp$`), "timestamp"},
	{regexp.MustCompile(`^date$`), "date"},
	{regexp.MustCompile(`^time$`), "time"},
	{regexp.MustCompile(`^year\(\d+\)$`), "smallint"},
	{regexp.MustCompile(`^year$`), "smallint"},

	{regexp.MustCompile(`^char\((\d+)\)$`), "char($1)"},
	{regexp.MustCompile(`^varchar\((\d+)\)$`), "varchar($1)"},
	{regexp.MustCompile(`^binary\(\d+\)$`), "bytea"},
	{regexp.MustCompile(`^varbinary\(\d+\)$`), "bytea"},
	{regexp.MustCompile(`^tinyblob$`), "bytea"},
	{regexp.MustCompile(`^blob$`), "bytea"},
	{regexp.MustCompile(`^mediumblob$`), "bytea"},
	{regexp.MustCompile(`^longblob$`), "bytea"},
	{regexp.MustCompile(`^tinytext$`), "text"},
	{regexp.MustCompile(`^text$`), "text"},
	{regexp.MustCompile(`^mediumtext$`), "text"},
	{regexp.MustCompile(`^longtext$`), "text"},
}

var (
	decimalPrecRe = regexp.MustCompile(`^(decimal|numeric)\s*\(\s*(\d+)\s*,\s*(\d+)\s*\)$`)
	floatPrecRe   = regexp.MustCompile(`^(float|double)\s*\(\s*\d+\s*,\s*\d+\s*\)$`)
)

// mapColumnType resolves one MySQL type token to its PostgreSQL equivalent.
// Types carrying captured values (precision, enum values) are special-cased
// before the pattern table. Unrecognized tokens are returned unchanged with
// ok=false so the caller can surface a warning without failing — fixing them
// up afterward is the operator's job.
func mapColumnType(token string, tm TypeMappingConfig) (pgType string, enumValues []string, ok bool) {
	t := strings.ToLower(strings.TrimSpace(token))

	if m := decimalPrecRe.FindStringSubmatch(t); m != nil {
		return fmt.Sprintf("numeric(%s,%s)", m[2], m[3]), nil, true
	}
	if m := floatPrecRe.FindStringSubmatch(t); m != nil {
		if m[1] == "float" {
			return "real", nil, true
		}
		return "double precision", nil, true
	}
	if t == "json" {
		if tm.JSONAsJSONB {
			return "jsonb", nil, true
		}
		return "json", nil, true
	}
	if strings.HasPrefix(t, "enum(") {
		// Parse from the original token so value case survives.
		return mapEnumType(strings.TrimSpace(token), tm)
	}
	if strings.HasPrefix(t, "set(") {
		if tm.SetMode == "text" {
			return "text", nil, true
		}
		return "text[]", nil, true
	}

	for _, r := range typeRules {
		if r.pattern.MatchString(t) {
			return r.pattern.ReplaceAllString(t, r.repl), nil, true
		}
	}
	return token, nil, false
}

// mapEnumType turns enum(...) into a bounded varchar wide enough for the
// longest value, carrying the value list for a CHECK constraint, or plain
// text when enum_mode=text.
func mapEnumType(token string, tm TypeMappingConfig) (string, []string, bool) {
	values, err := parseEnumSetValues(token)
	if err != nil || len(values) == 0 {
		return token, nil, false
	}
	if tm.EnumMode == "text" {
		return "text", nil, true
	}

	maxLen := 1
	for _, v := range values {
		if n := utf8.RuneCountInString(v); n > maxLen {
			maxLen = n
		}
	}
	return fmt.Sprintf("varchar(%d)", maxLen), values, true
}

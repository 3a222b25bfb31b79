package main

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	insertLineRe = regexp.MustCompile(`(?i)^\s*INSERT\s+INTO\b`)
	backtickRe   = regexp.MustCompile("`([^`]+)`")
	bitSingleRe  = regexp.MustCompile(`\bb'([01])'`)
	bitDoubleRe  = regexp.MustCompile(`\bb"([01])"`)
)

// convertInsertLine rewrites one dump line holding a whole INSERT statement
// into PostgreSQL syntax. ok=false means the line is not an INSERT and was
// left alone. Substitution order matters: escaped quotes rewrite before
// backslashes collapse, and \N before \0.
func convertInsertLine(line string) (converted string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	if !insertLineRe.MatchString(line) {
		return "", false
	}
	out := backtickRe.ReplaceAllString(line, `"$1"`)
	out = bitSingleRe.ReplaceAllString(out, "'$1'")
	out = bitDoubleRe.ReplaceAllString(out, "'$1'")
	out = strings.ReplaceAll(out, `\'`, "''")
	out = replaceNullMarkers(out)
	out = strings.ReplaceAll(out, `\0`, "")
	out = strings.ReplaceAll(out, `\\`, `\`)
	if !strings.HasSuffix(strings.TrimRight(out, " \t"), ";") {
		out += ";"
	}
	return out, true
}

// replaceNullMarkers rewrites MySQL's \N null marker as NULL. A preceding
// backslash means the sequence is escaped data, not a marker; RE2 has no
// lookbehind, so this is a manual scan.
func replaceNullMarkers(s string) string {
	if !strings.Contains(s, `\N`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == 'N' && (i == 0 || s[i-1] != '\\') {
			b.WriteString("NULL")
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// decodeDumpLine decodes one raw dump line. Valid UTF-8 passes through;
// anything else is retried as ISO 8859-1, the usual encoding of legacy
// latin1 dumps.
func decodeDumpLine(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

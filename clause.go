package main

import "strings"

// splitClauses splits the body of a table definition into its column and
// constraint clauses. A comma is a boundary only at paren depth zero while no
// quote is open; '' or "" inside a quoted region is a literal quote, not a
// terminator, and backslash escapes are skipped. This keeps type parameters
// (decimal(10,2)), enum value lists and quoted defaults containing commas
// intact.
func splitClauses(body string) []string {
	var clauses []string
	var cur strings.Builder
	depth := 0
	var quote byte

	for i := 0; i < len(body); i++ {
		ch := body[i]
		if quote != 0 {
			cur.WriteByte(ch)
			if ch == '\\' && i+1 < len(body) {
				cur.WriteByte(body[i+1])
				i++
				continue
			}
			if ch == quote {
				if i+1 < len(body) && body[i+1] == quote {
					cur.WriteByte(quote)
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
			cur.WriteByte(ch)
		case '(':
			depth++
			cur.WriteByte(ch)
		case ')':
			depth--
			cur.WriteByte(ch)
		case ',':
			if depth == 0 {
				if s := strings.TrimSpace(cur.String()); s != "" {
					clauses = append(clauses, s)
				}
				cur.Reset()
				continue
			}
			cur.WriteByte(ch)
		default:
			cur.WriteByte(ch)
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		clauses = append(clauses, s)
	}
	return clauses
}

// skipBalanced returns the index just past the parenthesized group opening at
// start (which must point at '('), honoring quoted literals. Returns -1 when
// the group never closes.
func skipBalanced(s string, start int) int {
	depth := 0
	var quote byte
	for i := start; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == '\\' && i+1 < len(s) {
				i++
				continue
			}
			if ch == quote {
				if i+1 < len(s) && s[i+1] == quote {
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
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

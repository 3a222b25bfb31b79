package main

import (
	"fmt"
	"strings"
)

// parseEnumSetValues extracts the quoted value list of an enum(...) or
// set(...) column type. MySQL emits values single-quoted with '' doubling;
// backslash escapes are honored as well.
func parseEnumSetValues(columnType string) ([]string, error) {
	open := strings.IndexByte(columnType, '(')
	close := strings.LastIndexByte(columnType, ')')
	if open < 0 || close <= open {
		return nil, fmt.Errorf("invalid enum/set column type %q", columnType)
	}

	inside := columnType[open+1 : close]
	var values []string
	i := 0
	for i < len(inside) {
		for i < len(inside) && (inside[i] == ' ' || inside[i] == ',') {
			i++
		}
		if i >= len(inside) {
			break
		}
		if inside[i] != '\'' {
			return nil, fmt.Errorf("invalid enum/set value list in %q", columnType)
		}
		i++

		var b strings.Builder
		for i < len(inside) {
			c := inside[i]
			if c == '\\' {
				if i+1 >= len(inside) {
					return nil, fmt.Errorf("invalid escape in %q", columnType)
				}
				b.WriteByte(inside[i+1])
				i += 2
				continue
			}
			if c == '\'' {
				if i+1 < len(inside) && inside[i+1] == '\'' {
					b.WriteByte('\'')
					i += 2
					continue
				}
				i++
				break
			}
			b.WriteByte(c)
			i++
		}

		values = append(values, b.String())
	}

	return values, nil
}

// setArrayLiteral renders a MySQL set default ("a,b") as a PostgreSQL text
// array expression. MySQL stores set defaults as one comma-joined string,
// which is not a valid literal for a text[] column.
func setArrayLiteral(raw string) string {
	var quoted []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		quoted = append(quoted, pgLiteral(p))
	}
	if len(quoted) == 0 {
		return "'{}'::text[]"
	}
	return fmt.Sprintf("ARRAY[%s]::text[]", strings.Join(quoted, ", "))
}

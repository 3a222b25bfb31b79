package main

import (
	"reflect"
	"testing"
)

func TestParseEnumSetValues(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		wantErr bool
	}{
		{"enum", "enum('new','used')", []string{"new", "used"}, false},
		{"set", "set('a','b','c')", []string{"a", "b", "c"}, false},
		{"spacedCommas", "enum('a', 'b' , 'c')", []string{"a", "b", "c"}, false},
		{"doubledQuote", "enum('it''s','ok')", []string{"it's", "ok"}, false},
		{"backslashQuote", `enum('a\'b','c')`, []string{"a'b", "c"}, false},
		{"commaInValue", "set('a,b','c')", []string{"a,b", "c"}, false},
		{"empty", "enum()", nil, false},
		{"unquoted", "enum(bad)", nil, true},
		{"noParens", "enum", nil, true},
		{"danglingEscape", `enum('a\)`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEnumSetValues(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseEnumSetValues(%q) error = %v, wantErr %t", tt.in, err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseEnumSetValues(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSetArrayLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a,b", "ARRAY['a', 'b']::text[]"},
		{"a", "ARRAY['a']::text[]"},
		{" a , b ", "ARRAY['a', 'b']::text[]"},
		{"it's,ok", "ARRAY['it''s', 'ok']::text[]"},
		{"", "'{}'::text[]"},
		{",,", "'{}'::text[]"},
	}

	for _, tt := range tests {
		if got := setArrayLiteral(tt.in); got != tt.want {
			t.Errorf("setArrayLiteral(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

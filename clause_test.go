package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitClauses(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			"simple",
			"`a` int NOT NULL, `b` text",
			[]string{"`a` int NOT NULL", "`b` text"},
		},
		{
			"typeParams",
			"`price` decimal(10,2) NOT NULL, `qty` int(11)",
			[]string{"`price` decimal(10,2) NOT NULL", "`qty` int(11)"},
		},
		{
			"enumValues",
			"`s` enum('a','b,c') DEFAULT 'a', `n` int",
			[]string{"`s` enum('a','b,c') DEFAULT 'a'", "`n` int"},
		},
		{
			"quotedComma",
			"`a` varchar(5) DEFAULT 'x,y', `b` int",
			[]string{"`a` varchar(5) DEFAULT 'x,y'", "`b` int"},
		},
		{
			"doubledQuote",
			"`a` varchar(9) DEFAULT 'it''s, ok', `b` int",
			[]string{"`a` varchar(9) DEFAULT 'it''s, ok'", "`b` int"},
		},
		{
			"escapedQuote",
			"`a` varchar(9) DEFAULT 'it\\'s, ok', `b` int",
			[]string{"`a` varchar(9) DEFAULT 'it\\'s, ok'", "`b` int"},
		},
		{
			"constraints",
			"KEY `k` (`a`,`b`), CONSTRAINT `c` FOREIGN KEY (`x`) REFERENCES `t` (`y`)",
			[]string{"KEY `k` (`a`,`b`)", "CONSTRAINT `c` FOREIGN KEY (`x`) REFERENCES `t` (`y`)"},
		},
		{
			"trailingComma",
			"`a` int,",
			[]string{"`a` int"},
		},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitClauses(tt.body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitClauses(%q) = %#v, want %#v", tt.body, got, tt.want)
			}
		})
	}
}

func TestSkipBalanced(t *testing.T) {
	s := "CREATE TABLE `t` (`a` int, `b` varchar(3)) ENGINE=InnoDB"
	open := strings.IndexByte(s, '(')
	end := skipBalanced(s, open)
	if end < 0 {
		t.Fatalf("skipBalanced found no closing paren")
	}
	if got, want := s[open:end], "(`a` int, `b` varchar(3))"; got != want {
		t.Errorf("balanced group = %q, want %q", got, want)
	}

	if got := skipBalanced("(never closes", 0); got != -1 {
		t.Errorf("unbalanced input returned %d, want -1", got)
	}

	// A close paren inside a quoted literal does not end the group.
	s = "(DEFAULT ')' , x)"
	if end := skipBalanced(s, 0); end != len(s) {
		t.Errorf("quoted paren: end = %d, want %d", end, len(s))
	}
}

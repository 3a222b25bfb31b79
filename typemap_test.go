package main

import (
	"reflect"
	"testing"
)

func TestMapColumnType(t *testing.T) {
	tm := defaultTypeMappingConfig()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"int(11)", "integer", true},
		{"INT(11)", "integer", true},
		{"int", "integer", true},
		{"tinyint(4)", "smallint", true},
		{"tinyint", "smallint", true},
		{"mediumint(9)", "integer", true},
		{"bigint(20)", "bigint", true},
		{"bit(1)", "boolean", true},
		{"bit(8)", "bit(8)", true},
		{"decimal(10,2)", "numeric(10,2)", true},
		{"decimal( 10 , 2 )", "numeric(10,2)", true},
		{"numeric(8,3)", "numeric(8,3)", true},
		{"float", "real", true},
		{"float(10,2)", "real", true},
		{"double", "double precision", true},
		{"double(16,4)", "double precision", true},
		{"real", "real", true},
		{"datetime", "timestamp", true},
		{"datetime(3)", "timestamp(6)", true},
		{"timestamp", "timestamp", true},
		{"timestamp(6)", "timestamp(6)", true},
		{"date", "date", true},
		{"time", "time", true},
		{"year(4)", "smallint", true},
		{"char(36)", "char(36)", true},
		{"varchar(255)", "varchar(255)", true},
		{"binary(16)", "bytea", true},
		{"varbinary(64)", "bytea", true},
		{"tinyblob", "bytea", true},
		{"longblob", "bytea", true},
		{"tinytext", "text", true},
		{"mediumtext", "text", true},
		{"longtext", "text", true},
		{"json", "json", true},
		{"set('a','b')", "text[]", true},

		// Unrecognized tokens pass through so the operator can fix them up.
		{"geometry", "geometry", false},
		{"time(3)", "time(3)", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, _, ok := mapColumnType(tt.in, tm)
			if got != tt.want || ok != tt.ok {
				t.Errorf("mapColumnType(%q) = (%q, ok=%t), want (%q, ok=%t)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestMapColumnTypeJSONAsJSONB(t *testing.T) {
	tm := defaultTypeMappingConfig()
	tm.JSONAsJSONB = true
	got, _, ok := mapColumnType("json", tm)
	if !ok || got != "jsonb" {
		t.Errorf("mapColumnType(json) with json_as_jsonb = %q, want jsonb", got)
	}
}

func TestMapColumnTypeEnum(t *testing.T) {
	tm := defaultTypeMappingConfig()

	got, values, ok := mapColumnType("enum('active','banned')", tm)
	if !ok {
		t.Fatalf("enum mapping failed")
	}
	if got != "varchar(6)" {
		t.Errorf("enum type = %q, want varchar(6)", got)
	}
	if want := []string{"active", "banned"}; !reflect.DeepEqual(values, want) {
		t.Errorf("enum values = %#v, want %#v", values, want)
	}

	// Doubled quotes survive into the value list.
	got, values, ok = mapColumnType("enum('it''s','ok')", tm)
	if !ok || got != "varchar(4)" {
		t.Errorf("enum with quote = %q (ok=%t), want varchar(4)", got, ok)
	}
	if want := []string{"it's", "ok"}; !reflect.DeepEqual(values, want) {
		t.Errorf("enum values = %#v, want %#v", values, want)
	}

	// Width counts runes, not bytes.
	got, _, _ = mapColumnType("enum('日本語','en')", tm)
	if got != "varchar(3)" {
		t.Errorf("multibyte enum type = %q, want varchar(3)", got)
	}
}

func TestMapColumnTypeEnumTextMode(t *testing.T) {
	tm := defaultTypeMappingConfig()
	tm.EnumMode = "text"
	got, values, ok := mapColumnType("enum('a','b')", tm)
	if !ok || got != "text" {
		t.Errorf("enum_mode=text type = %q (ok=%t), want text", got, ok)
	}
	if len(values) != 0 {
		t.Errorf("enum_mode=text should not carry CHECK values, got %#v", values)
	}
}

func TestMapColumnTypeSetTextMode(t *testing.T) {
	tm := defaultTypeMappingConfig()
	tm.SetMode = "text"
	got, _, ok := mapColumnType("set('a','b')", tm)
	if !ok || got != "text" {
		t.Errorf("set_mode=text type = %q (ok=%t), want text", got, ok)
	}
}

// Parameterized forms must run before bare forms, or `tinyint` would shadow
// `tinyint(4)`; bit(1) must run before the generic bit(n).
func TestTypeRulesParameterizedBeforeBare(t *testing.T) {
	pos := make(map[string]int, len(typeRules))
	for i, r := range typeRules {
		pos[r.pattern.String()] = i
	}

	pairs := [][2]string{
		{`^tinyint\(\d+\)$`, `^tinyint$`},
		{`^smallint\(\d+\)$`, `^smallint$`},
		{`^mediumint\(\d+\)$`, `^mediumint$`},
		{`^int\(\d+\)$`, `^int$`},
		{`^integer\(\d+\)$`, `^integer$`},
		{`^bigint\(\d+\)$`, `^bigint$`},
		{`^datetime\(\d+\)$`, `^datetime$`},
		{`^timestamp\(\d+\)$`, `^timestamp$`},
		{`^year\(\d+\)$`, `^year$`},
		{`^bit\(1\)$`, `^bit\((\d+)\)$`},
	}
	for _, p := range pairs {
		first, ok := pos[p[0]]
		if !ok {
			t.Fatalf("rule %s missing from table", p[0])
		}
		second, ok := pos[p[1]]
		if !ok {
			t.Fatalf("rule %s missing from table", p[1])
		}
		if first > second {
			t.Errorf("rule %s must precede %s", p[0], p[1])
		}
	}
}

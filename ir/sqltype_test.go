package ir

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intPtr(n int) *int { return &n }

func TestParseSQLType(t *testing.T) {
	tests := []struct {
		raw      string
		category byte
		want     SQLType
	}{
		{"integer", CategoryNumeric, SQLType{Name: "integer"}},
		{"character varying(20)", CategoryString, SQLType{Name: "character varying", Length: intPtr(20)}},
		{"numeric(3,2)", CategoryNumeric, SQLType{Name: "numeric", Precision: intPtr(3), Scale: intPtr(2)}},
		{"numeric(10)", CategoryNumeric, SQLType{Name: "numeric", Precision: intPtr(10)}},
		{"bit(8)", CategoryBitString, SQLType{Name: "bit", Length: intPtr(8)}},
		{"timestamp(3) with time zone", CategoryDateTime, SQLType{Name: "timestamp with time zone", Precision: intPtr(3)}},
		{"time without time zone", CategoryDateTime, SQLType{Name: "time without time zone"}},
		{"public.mood", CategoryEnum, SQLType{Schema: "public", Name: "mood"}},
		{`"My Schema"."Odd Type"`, CategoryUser, SQLType{Schema: "My Schema", Name: "Odd Type"}},
		{`"Quoted"`, CategoryUser, SQLType{Name: "Quoted"}},
		{"app.money_amount(12,4)", CategoryNumeric, SQLType{Schema: "app", Name: "money_amount", Precision: intPtr(12), Scale: intPtr(4)}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSQLType(tt.raw, tt.category)
			if err != nil {
				t.Fatalf("ParseSQLType(%q) error: %v", tt.raw, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseSQLType(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestParseSQLTypeErrors(t *testing.T) {
	for _, raw := range []string{"", "numeric(3", "numeric(a,b)", `"unterminated`, "numeric(1,2,3)"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseSQLType(raw, CategoryNumeric)
			if !errors.Is(err, ErrParse) {
				t.Errorf("ParseSQLType(%q) error = %v; want ErrParse", raw, err)
			}
		})
	}
}

func TestSplitArrayDimension(t *testing.T) {
	tests := []struct {
		raw  string
		decl string
		dims int
	}{
		{"integer", "integer", 0},
		{"text[]", "text", 1},
		{"numeric(3,2)[][]", "numeric(3,2)", 2},
	}
	for _, tt := range tests {
		decl, dims := SplitArrayDimension(tt.raw)
		if decl != tt.decl || dims != tt.dims {
			t.Errorf("SplitArrayDimension(%q) = %q, %d; want %q, %d", tt.raw, decl, dims, tt.decl, tt.dims)
		}
	}
}

func TestParseEnumValues(t *testing.T) {
	got, err := ParseEnumValues([]any{"sad", "ok", "happy"})
	if err != nil {
		t.Fatalf("ParseEnumValues() error: %v", err)
	}
	if diff := cmp.Diff([]string{"sad", "ok", "happy"}, got); diff != "" {
		t.Errorf("ParseEnumValues() mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseEnumValues([]any{"sad", 3}); !errors.Is(err, ErrParse) {
		t.Errorf("ParseEnumValues() with a number error = %v; want ErrParse", err)
	}
}

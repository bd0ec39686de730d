package ir

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNeedsQuoting(t *testing.T) {
	type testCase struct {
		name       string
		identifier string
		expected   bool
	}
	tests := []testCase{
		{"simple lowercase", "users", false},
		{"reserved word", "user", true},
		{"limit keyword", "limit", true},
		{"camelCase", "firstName", true},
		{"UPPERCASE", "USERS", true},
		{"with underscore", "user_name", false},
		{"starts with underscore", "_private", false},
		{"dollar inside", "price$", false},
		{"starts with number", "1table", true},
		{"contains dash", "user-table", true},
		{"contains dot", "a.b", true},
		{"empty string", "", false},
	}

	// every keyword must be quoted
	for reservedWord := range reservedWords {
		tests = append(tests, testCase{
			name:       fmt.Sprintf("reserved word: %q", reservedWord),
			identifier: reservedWord,
			expected:   true,
		})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NeedsQuoting(tt.identifier)
			if result != tt.expected {
				t.Errorf("NeedsQuoting(%q) = %v; want %v", tt.identifier, result, tt.expected)
			}
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		expected   string
	}{
		{"simple lowercase", "users", "users"},
		{"reserved word", "user", `"user"`},
		{"camelCase", "firstName", `"firstName"`},
		{"embedded quote", `my"table`, `"my""table"`},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := QuoteIdentifier(tt.identifier)
			if result != tt.expected {
				t.Errorf("QuoteIdentifier(%q) = %q; want %q", tt.identifier, result, tt.expected)
			}
		})
	}
}

func TestQualifiedName(t *testing.T) {
	tests := []struct {
		parts    []string
		expected string
	}{
		{[]string{"public", "users"}, "public.users"},
		{[]string{"MyApp", "Orders"}, `"MyApp"."Orders"`},
		{[]string{"user", "table", "id"}, `"user"."table".id`},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := QualifiedName(tt.parts...); got != tt.expected {
				t.Errorf("QualifiedName(%q) = %q; want %q", tt.parts, got, tt.expected)
			}
		})
	}
}

func TestSplitQualifiedName(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		want    []string
		wantErr bool
	}{
		{"single", "public", []string{"public"}, false},
		{"three parts", "public.contact.name", []string{"public", "contact", "name"}, false},
		{"quoted with dot", `public."odd.name".id`, []string{"public", "odd.name", "id"}, false},
		{"escaped quote", `"a""b"`, []string{`a"b`}, false},
		{"empty part", "public..x", nil, true},
		{"trailing dot", "public.", nil, true},
		{"unterminated", `public."x`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitQualifiedName(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrParse) {
					t.Fatalf("SplitQualifiedName(%q) error = %v; want ErrParse", tt.path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitQualifiedName(%q) unexpected error: %v", tt.path, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitQualifiedName(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

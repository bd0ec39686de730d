package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// SQLType is a parsed catalog type declaration such as "numeric(3,2)".
type SQLType struct {
	Schema    string // empty unless the declaration was schema qualified
	Name      string
	Length    *int
	Precision *int
	Scale     *int
}

// Type categories (pg_type.typcategory) that decide how a single type
// modifier is read.
const (
	CategoryArray     byte = 'A'
	CategoryBoolean   byte = 'B'
	CategoryComposite byte = 'C'
	CategoryDateTime  byte = 'D'
	CategoryEnum      byte = 'E'
	CategoryNumeric   byte = 'N'
	CategoryString    byte = 'S'
	CategoryTimespan  byte = 'T'
	CategoryUser      byte = 'U'
	CategoryBitString byte = 'V'
)

// SplitArrayDimension strips trailing "[]" pairs and returns the element
// declaration with the number of pairs removed.
func SplitArrayDimension(raw string) (string, int) {
	s := strings.TrimSpace(raw)
	dims := 0
	for strings.HasSuffix(s, "[]") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "[]"))
		dims++
	}
	return s, dims
}

// ParseSQLType parses a format_type style declaration without array
// suffixes. A "(p,s)" modifier is precision and scale. A single "(n)" is a
// precision for numeric, date/time and timespan categories and a length
// otherwise.
func ParseSQLType(raw string, category byte) (SQLType, error) {
	var t SQLType
	s := strings.TrimSpace(raw)
	if s == "" {
		return t, &ParseError{Subject: "type", Input: raw, Cause: fmt.Errorf("empty declaration")}
	}

	first, quoted, rest, err := readIdentifier(s)
	if err != nil {
		return t, &ParseError{Subject: "type", Input: raw, Cause: err}
	}

	switch {
	case strings.HasPrefix(rest, "."):
		t.Schema = first
		name, nameQuoted, after, err := readIdentifier(rest[1:])
		if err != nil {
			return t, &ParseError{Subject: "type", Input: raw, Cause: err}
		}
		if nameQuoted {
			t.Name, rest = name, after
		} else {
			t.Name, rest = splitAtParen(rest[1:])
		}
	case quoted:
		t.Name = first
	default:
		t.Name, rest = splitAtParen(s)
	}

	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "(") {
		end := strings.IndexByte(rest, ')')
		if end < 0 {
			return t, &ParseError{Subject: "type", Input: raw, Cause: fmt.Errorf("unterminated modifier")}
		}
		mods, err := parseModifiers(rest[1:end])
		if err != nil {
			return t, &ParseError{Subject: "type", Input: raw, Cause: err}
		}
		switch len(mods) {
		case 1:
			if category == CategoryNumeric || category == CategoryDateTime || category == CategoryTimespan {
				t.Precision = &mods[0]
			} else {
				t.Length = &mods[0]
			}
		case 2:
			t.Precision, t.Scale = &mods[0], &mods[1]
		default:
			return t, &ParseError{Subject: "type", Input: raw, Cause: fmt.Errorf("expected one or two modifiers, got %d", len(mods))}
		}
		rest = rest[end+1:]
	}

	// "timestamp(3) with time zone" keeps its trailing words.
	if suffix := strings.TrimSpace(rest); suffix != "" {
		t.Name = strings.TrimSpace(t.Name) + " " + suffix
	}
	t.Name = strings.TrimSpace(t.Name)
	return t, nil
}

// ParseEnumValues validates enum labels decoded from a JSON array and
// returns them in order.
func ParseEnumValues(raw []any) ([]string, error) {
	values := make([]string, 0, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil, &ParseError{Subject: "enum values", Input: fmt.Sprint(raw), Cause: fmt.Errorf("label %d is %T, not a string", i, v)}
		}
		values = append(values, s)
	}
	return values, nil
}

// readIdentifier reads a quoted identifier or a run of identifier characters.
func readIdentifier(s string) (ident string, quoted bool, rest string, err error) {
	if strings.HasPrefix(s, `"`) {
		var b strings.Builder
		for i := 1; i < len(s); i++ {
			if s[i] != '"' {
				b.WriteByte(s[i])
				continue
			}
			if i+1 < len(s) && s[i+1] == '"' {
				b.WriteByte('"')
				i++
				continue
			}
			return b.String(), true, s[i+1:], nil
		}
		return "", true, "", fmt.Errorf("unterminated quoted identifier")
	}
	i := 0
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return s[:i], false, s[i:], nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func splitAtParen(s string) (string, string) {
	if i := strings.IndexByte(s, '('); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}

func parseModifiers(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	mods := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("modifier %q is not a number", strings.TrimSpace(p))
		}
		mods = append(mods, n)
	}
	return mods, nil
}

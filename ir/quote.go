package ir

import (
	"fmt"
	"strings"
	"unicode"
)

// reservedWords are the PostgreSQL keywords that cannot be used as bare
// identifiers (reserved and reserved-with-qualifications).
var reservedWords = func() map[string]bool {
	words := strings.Fields(`
		all analyse analyze and any array as asc asymmetric authorization
		between bigint binary boolean both case cast char character check
		collate collation column concurrently constraint create cross
		current_catalog current_date current_role current_schema current_time
		current_timestamp current_user default deferrable delete desc distinct
		do else end except exists false fetch filter for foreign freeze from
		full grant group having ilike in initially inner insert intersect into
		is isnull join lateral leading left like limit localtime localtimestamp
		natural not notnull null of offset on only or order outer overlaps
		placing primary references returning right select session_user similar
		some symmetric system_user table tablesample then to trailing true
		union unique update user using variadic verbose when where window
		with within`)
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()

// NeedsQuoting reports whether an identifier must be double-quoted in SQL.
func NeedsQuoting(identifier string) bool {
	if identifier == "" {
		return false
	}
	if reservedWords[strings.ToLower(identifier)] {
		return true
	}
	for i, r := range identifier {
		// Unquoted identifiers fold to lower case.
		if unicode.IsUpper(r) {
			return true
		}
		if i == 0 && !unicode.IsLetter(r) && r != '_' {
			return true
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '$' {
			return true
		}
	}
	return false
}

// QuoteIdentifier double-quotes an identifier when needed, doubling
// embedded quotes.
func QuoteIdentifier(identifier string) string {
	if NeedsQuoting(identifier) {
		return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
	}
	return identifier
}

// QualifiedName quotes each part and joins them with dots.
func QualifiedName(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = QuoteIdentifier(p)
	}
	return strings.Join(quoted, ".")
}

// SplitQualifiedName splits a dotted path. Double-quoted parts keep their
// case and may contain dots; "" inside quotes is a literal quote.
func SplitQualifiedName(path string) ([]string, error) {
	var (
		parts  []string
		cur    strings.Builder
		quoted bool
	)
	for i := 0; i < len(path); i++ {
		ch := path[i]
		switch {
		case quoted && ch == '"':
			if i+1 < len(path) && path[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			quoted = false
		case quoted:
			cur.WriteByte(ch)
		case ch == '"':
			quoted = true
		case ch == '.':
			if cur.Len() == 0 {
				return nil, &ParseError{Subject: "qualified name", Input: path, Cause: fmt.Errorf("empty part at offset %d", i)}
			}
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	if quoted {
		return nil, &ParseError{Subject: "qualified name", Input: path, Cause: fmt.Errorf("unterminated quote")}
	}
	if cur.Len() == 0 {
		return nil, &ParseError{Subject: "qualified name", Input: path, Cause: fmt.Errorf("empty part at end")}
	}
	return append(parts, cur.String()), nil
}

package ir

import (
	"path/filepath"
	"strings"
)

// DefaultCommentDataToken delimits embedded data in comments:
// "Text [pgstructure]{ key: 1 }[/pgstructure]".
const DefaultCommentDataToken = "pgstructure"

// Options configures Build.
type Options struct {
	// RelationNameFunctions names relation ends. The zero value means OptimalNames.
	RelationNameFunctions RelationNameFunctions
	// ForeignKeyAliasTargetFirst reads column names as "<target>_<adjective>_id"
	// and composes disambiguated names with the adjective last.
	ForeignKeyAliasTargetFirst bool
	// IncludeSchemas keeps only user schemas matching one of the patterns.
	// Empty keeps every schema.
	IncludeSchemas []string
	// ExcludeSchemas drops user schemas matching one of the patterns.
	ExcludeSchemas []string
	// CommentDataToken overrides DefaultCommentDataToken.
	CommentDataToken string
}

func (o Options) commentDataToken() string {
	if o.CommentDataToken == "" {
		return DefaultCommentDataToken
	}
	return o.CommentDataToken
}

func (o Options) nameFunctions() RelationNameFunctions {
	return o.RelationNameFunctions.withDefaults(OptimalNames)
}

// SchemaFilter decides which user schemas enter the graph.
// Patterns are globs (* and ?); a leading ! negates a pattern.
type SchemaFilter struct {
	Include []string
	Exclude []string
}

// Allows reports whether the schema passes both pattern lists.
func (f SchemaFilter) Allows(name string) bool {
	if len(f.Include) > 0 && !matchesAny(name, f.Include) {
		return false
	}
	return !matchesAny(name, f.Exclude)
}

// matchesAny applies positive patterns first; a matching negation pattern
// overrides them.
func matchesAny(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	matched := false
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchPattern(pattern, name) {
			matched = true
			break
		}
	}

	for _, pattern := range patterns {
		if neg, ok := strings.CutPrefix(pattern, "!"); ok && matchPattern(neg, name) {
			return false
		}
	}

	return matched
}

func matchPattern(pattern, name string) bool {
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		// Invalid glob: compare literally.
		return pattern == name
	}
	return matched
}

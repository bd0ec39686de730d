package ir

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes of graph construction and lookup.
var (
	// ErrNotFound indicates a key lookup without a match.
	ErrNotFound = errors.New("pgstructure: not found")
	// ErrAmbiguousKey indicates a unique lookup that matched more than one item.
	ErrAmbiguousKey = errors.New("pgstructure: ambiguous key")
	// ErrDuplicateKey indicates an insertion that violates a unique key.
	ErrDuplicateKey = errors.New("pgstructure: duplicate key")
	// ErrParse indicates malformed text in a type string or comment.
	ErrParse = errors.New("pgstructure: parse error")
	// ErrUnknownKind indicates an unrecognized catalog kind letter.
	ErrUnknownKind = errors.New("pgstructure: unknown kind")
	// ErrInvalidInput indicates catalog rows that contradict each other.
	ErrInvalidInput = errors.New("pgstructure: invalid input")
	// ErrUnknownStrategy indicates an unrecognized relation naming strategy.
	ErrUnknownStrategy = errors.New("pgstructure: unknown naming strategy")
)

// NotFoundError is returned when a collection holds no item for a key.
type NotFoundError struct {
	Key         string
	Suggestions []string // closest existing keys, best first
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("pgstructure: %q not found", e.Key)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// Is reports whether the target matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AmbiguousKeyError is returned by Get when a key declared unique matches several items.
type AmbiguousKeyError struct {
	Key   string
	Count int
}

// Error implements the error interface.
func (e *AmbiguousKeyError) Error() string {
	return fmt.Sprintf("pgstructure: key %q is shared by %d items, use GetAll", e.Key, e.Count)
}

// Is reports whether the target matches ErrAmbiguousKey.
func (e *AmbiguousKeyError) Is(target error) bool {
	return target == ErrAmbiguousKey
}

// DuplicateKeyError is returned when a throwing collection rejects an insertion.
type DuplicateKeyError struct {
	Index string
	Key   string
}

// Error implements the error interface.
func (e *DuplicateKeyError) Error() string {
	if e.Index != "" {
		return fmt.Sprintf("pgstructure: duplicate %s %q", e.Index, e.Key)
	}
	return fmt.Sprintf("pgstructure: duplicate key %q", e.Key)
}

// Is reports whether the target matches ErrDuplicateKey.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// ParseError describes text that could not be parsed.
type ParseError struct {
	Subject string // what was being parsed, e.g. "comment data"
	Input   string
	Cause   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("pgstructure: cannot parse ")
	b.WriteString(e.Subject)
	fmt.Fprintf(&b, " %q", e.Input)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// KindError is returned for a catalog kind letter the assembler does not know.
type KindError struct {
	Subject string // "entity", "type", "constraint", "function" or "argument mode"
	Name    string
	Kind    string
}

// Error implements the error interface.
func (e *KindError) Error() string {
	return fmt.Sprintf("pgstructure: unknown %s kind %q for %q", e.Subject, e.Kind, e.Name)
}

// Is reports whether the target matches ErrUnknownKind.
func (e *KindError) Is(target error) bool {
	return target == ErrUnknownKind
}

// InputError reports catalog rows that break a structural invariant.
type InputError struct {
	Object  string
	Message string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("pgstructure: invalid catalog input for %s: %s", e.Object, e.Message)
}

// Is reports whether the target matches ErrInvalidInput.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ErrReferenceCycle indicates foreign keys that form a cycle between tables.
var ErrReferenceCycle = errors.New("pgstructure: reference cycle")

// CycleError lists the table groups that reference each other in a cycle.
type CycleError struct {
	Cycles [][]string // full table names per cycle
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Cycles))
	for _, c := range e.Cycles {
		parts = append(parts, "("+strings.Join(c, ", ")+")")
	}
	return "pgstructure: foreign keys form reference cycles: " + strings.Join(parts, ", ")
}

// Is reports whether the target matches ErrReferenceCycle.
func (e *CycleError) Is(target error) bool {
	return target == ErrReferenceCycle
}

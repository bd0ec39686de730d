// Package color highlights the text outline printed by the CLI.
package color

import (
	"os"
)

// ANSI color codes
const (
	Reset   = "\033[0m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
)

// Color represents a colorizer that can be enabled or disabled.
// A nil *Color never colors.
type Color struct {
	enabled bool
}

// New creates a new Color instance
func New(enabled bool) *Color {
	return &Color{enabled: enabled && shouldEnableColor()}
}

// shouldEnableColor honours NO_COLOR (https://no-color.org/) and dumb terminals.
func shouldEnableColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

// Enabled reports whether escape codes are emitted.
func (c *Color) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Color) wrap(code, text string) string {
	if !c.Enabled() || text == "" {
		return text
	}
	return code + text + Reset
}

// Heading marks database and schema lines.
func (c *Color) Heading(text string) string { return c.wrap(Bold, text) }

// Kind marks object kinds such as "table" or "foreign key".
func (c *Color) Kind(text string) string { return c.wrap(Cyan, text) }

// Relation marks relation names.
func (c *Color) Relation(text string) string { return c.wrap(Magenta, text) }

// Warning marks collisions and reference cycles.
func (c *Color) Warning(text string) string { return c.wrap(Yellow, text) }

// Comment marks catalog comments.
func (c *Color) Comment(text string) string { return c.wrap(Dim, text) }

package ir

import (
	"errors"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Comment is a database object comment that may embed a structured block:
//
//	Customer contacts. [pgstructure]{ audit: true, owner: 'crm' }[/pgstructure]
//
// The block is relaxed JSON (unquoted keys, single quotes and trailing
// commas are accepted). It is parsed on the first call to Data and the
// result, including a failure, is memoised. A nil *Comment is valid and
// behaves as "no comment".
type Comment struct {
	text  string
	token string

	once sync.Once
	data any
	err  error
}

var (
	errEmptyData = errors.New("empty data block")
	errNotJSON   = errors.New("block is not a flow mapping, flow sequence or JSON scalar")
)

func newComment(text, token string) *Comment {
	if text == "" {
		return nil
	}
	return &Comment{text: text, token: token}
}

// Text returns the full comment, or "" when there is none.
func (c *Comment) Text() string {
	if c == nil {
		return ""
	}
	return c.text
}

// String implements fmt.Stringer.
func (c *Comment) String() string {
	return c.Text()
}

// HasData reports whether the comment embeds a data block.
func (c *Comment) HasData() bool {
	_, _, _, ok := c.split()
	return ok
}

// Data parses and returns the embedded block. It returns nil, nil when there
// is no comment or no block, and a *ParseError when the block is malformed.
func (c *Comment) Data() (any, error) {
	_, block, _, ok := c.split()
	if !ok {
		return nil, nil
	}
	c.once.Do(func() {
		c.data, c.err = parseRelaxedJSON(block)
	})
	return c.data, c.err
}

// parseRelaxedJSON reads YAML restricted to what relaxed JSON allows: a flow
// mapping or sequence, a quoted string, or a number, boolean or null.
func parseRelaxedJSON(block string) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return nil, &ParseError{Subject: "comment data", Input: block, Cause: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, &ParseError{Subject: "comment data", Input: block, Cause: errEmptyData}
	}
	root := doc.Content[0]
	if !isJSONValue(root) {
		return nil, &ParseError{Subject: "comment data", Input: block, Cause: errNotJSON}
	}
	var v any
	if err := root.Decode(&v); err != nil {
		return nil, &ParseError{Subject: "comment data", Input: block, Cause: err}
	}
	return v, nil
}

func isJSONValue(n *yaml.Node) bool {
	switch n.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		return n.Style&yaml.FlowStyle != 0
	case yaml.ScalarNode:
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
			return true
		}
		switch n.ShortTag() {
		case "!!int", "!!float", "!!bool", "!!null":
			return n.Style == 0
		}
	}
	return false
}

// WithoutData returns the comment with the data block and the whitespace
// around it removed. ok is false when there is no comment or no block.
func (c *Comment) WithoutData() (text string, ok bool) {
	before, _, after, ok := c.split()
	if !ok {
		return "", false
	}
	before, after = strings.TrimSpace(before), strings.TrimSpace(after)
	if before != "" && after != "" {
		return before + " " + after, true
	}
	return before + after, true
}

func (c *Comment) split() (before, block, after string, ok bool) {
	if c == nil {
		return "", "", "", false
	}
	open, closing := "["+c.token+"]", "[/"+c.token+"]"
	start := strings.Index(c.text, open)
	if start < 0 {
		return "", "", "", false
	}
	inner := c.text[start+len(open):]
	end := strings.Index(inner, closing)
	if end < 0 {
		return "", "", "", false
	}
	return c.text[:start], inner[:end], inner[end+len(closing):], true
}

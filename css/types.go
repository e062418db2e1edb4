package css

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	// Fast path: nothing to escape.
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NodeKind identifies what a Node holds.
type NodeKind int

const (
	CommentNode     NodeKind = iota // /* ... */ at top level
	AtRuleNode                      // @font-face { ... }, @media ... { ... }, @import ...;
	RulesetNode                     // selector { ... }
	DeclarationNode                 // property: value
	RawNode                         // tokens of blocks we do not interpret
)

func (k NodeKind) String() string {
	switch k {
	case CommentNode:
		return "comment"
	case AtRuleNode:
		return "at-rule"
	case RulesetNode:
		return "ruleset"
	case DeclarationNode:
		return "declaration"
	case RawNode:
		return "raw"
	}
	return "unknown"
}

// Token is a single lexical token copied out of the parser buffer.
type Token struct {
	Type css.TokenType
	Data string
}

// Node is an element of the stylesheet tree.
//
// Name holds the at-rule keyword (lower case, with "@"), the declaration
// property or the comment text (without delimiters). Prelude keeps at-rule
// prelude and ruleset selector tokens, Values keeps declaration and raw
// tokens.
type Node struct {
	Kind     NodeKind
	Name     string
	Prelude  []Token
	Values   []Token
	Children []*Node
	// Block is set for at-rules followed by a {} block.
	Block bool
}

// Stylesheet is a parsed stylesheet which can be modified in place and
// written back.
type Stylesheet struct {
	Nodes    []*Node
	Warnings []string
}

// Label is a top-level comment together with its position in Stylesheet.Nodes.
type Label struct {
	Pos  int
	Text string
}

// Comments returns all top-level comments in document order.
func (s *Stylesheet) Comments() []Label {
	var res []Label
	for i, n := range s.Nodes {
		if n.Kind == CommentNode {
			res = append(res, Label{Pos: i, Text: n.Name})
		}
	}
	return res
}

// AtRules returns all top-level at-rules in document order.
func (s *Stylesheet) AtRules() []*Node {
	var res []*Node
	for _, n := range s.Nodes {
		if n.Kind == AtRuleNode {
			res = append(res, n)
		}
	}
	return res
}

// Walk visits nodes depth first in document order. Children are skipped when
// fn returns false.
func (s *Stylesheet) Walk(fn func(*Node) bool) {
	for _, n := range s.Nodes {
		n.Walk(fn)
	}
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// URLRef points to a url() token inside a node and allows replacing it.
type URLRef struct {
	node  *Node
	index int
}

// Value returns referenced URL without url() wrapping and quotes.
func (u URLRef) Value() string {
	return URLValue(u.node.Values[u.index].Data)
}

// Node returns declaration holding the reference.
func (u URLRef) Node() *Node {
	return u.node
}

// Set replaces referenced URL with v.
func (u URLRef) Set(v string) {
	u.node.Values[u.index].Data = FormatURL(v)
}

// URLs returns references to all url() tokens under n, including n itself.
func (n *Node) URLs() []URLRef {
	var res []URLRef
	n.Walk(func(node *Node) bool {
		if node.Kind != DeclarationNode {
			return true
		}
		for i, t := range node.Values {
			if t.Type == css.URLToken {
				res = append(res, URLRef{node: node, index: i})
			}
		}
		return true
	})
	return res
}

// URLs returns references to all url() tokens in the stylesheet regardless
// of nesting.
func (s *Stylesheet) URLs() []URLRef {
	var res []URLRef
	for _, n := range s.Nodes {
		res = append(res, n.URLs()...)
	}
	return res
}

// URLValue extracts the address from url() token data.
// Handles: url(x), url("x"), url('x').
func URLValue(data string) string {
	s := strings.TrimSpace(data)
	if len(s) >= 4 && strings.EqualFold(s[:4], "url(") {
		s = s[4:]
	}
	s = strings.TrimSuffix(s, ")")
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		s = s[1 : len(s)-1]
		s = strings.NewReplacer(`\"`, `"`, `\'`, `'`, `\\`, `\`).Replace(s)
	}
	return s
}

// FormatURL produces url() token data for v, quoting only when necessary.
func FormatURL(v string) string {
	if strings.ContainsAny(v, " \t\n\"'()\\") {
		return `url("` + cssEscapeDoubleQuoted(v) + `")`
	}
	return "url(" + v + ")"
}

// String regenerates stylesheet text.
func (s *Stylesheet) String() string {
	var b strings.Builder
	_, _ = s.WriteTo(&b)
	return b.String()
}

// WriteTo writes regenerated stylesheet text to w.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	for _, n := range s.Nodes {
		writeNode(cw, n, 0)
		if cw.err != nil {
			break
		}
	}
	return cw.n, cw.err
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) WriteString(s string) {
	if c.err != nil {
		return
	}
	n, err := io.WriteString(c.w, s)
	c.n += int64(n)
	c.err = err
}

func writeNode(w *countingWriter, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n.Kind {
	case CommentNode:
		w.WriteString(indent + "/*" + n.Name + "*/\n")
	case DeclarationNode:
		w.WriteString(indent + n.Name + ": " + joinTokens(n.Values) + ";\n")
	case RawNode:
		w.WriteString(indent + joinTokens(n.Values) + "\n")
	case RulesetNode:
		w.WriteString(indent + joinTokens(n.Prelude) + " {\n")
		for _, c := range n.Children {
			writeNode(w, c, depth+1)
		}
		w.WriteString(indent + "}\n")
	case AtRuleNode:
		head := n.Name
		if prelude := joinTokens(n.Prelude); prelude != "" {
			head += " " + prelude
		}
		if !n.Block {
			w.WriteString(indent + head + ";\n")
			return
		}
		w.WriteString(indent + head + " {\n")
		for _, c := range n.Children {
			writeNode(w, c, depth+1)
		}
		w.WriteString(indent + "}\n")
	}
}

// joinTokens renders tokens collapsing whitespace and restoring separators
// where dropping them would glue two tokens together.
func joinTokens(tokens []Token) string {
	var (
		b     strings.Builder
		prev  *Token
		space bool
	)
	for i := range tokens {
		t := &tokens[i]
		if t.Type == css.WhitespaceToken {
			space = prev != nil
			continue
		}
		if prev != nil && (space || prev.Type == css.CommaToken || needsSeparator(prev.Type, t.Type)) {
			if t.Type != css.CommaToken && t.Type != css.RightParenthesisToken &&
				prev.Type != css.FunctionToken && prev.Type != css.LeftParenthesisToken {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.Data)
		prev, space = t, false
	}
	return b.String()
}

func needsSeparator(prev, next css.TokenType) bool {
	return isWordLike(prev) && (isWordLike(next) || next == css.FunctionToken)
}

func isWordLike(tt css.TokenType) bool {
	switch tt {
	case css.IdentToken, css.NumberToken, css.DimensionToken, css.PercentageToken,
		css.URLToken, css.StringToken, css.UnicodeRangeToken, css.HashToken, css.RightParenthesisToken:
		return true
	}
	return false
}

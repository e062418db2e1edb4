package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into a tree which keeps enough of the source
// to be written back.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Nodes:    make([]*Node, 0),
		Warnings: make([]string, 0),
	}

	// Log parsing start with source identifier if provided
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	var (
		// open blocks, innermost last
		stack    []*Node
		selector []Token
	)

	add := func(n *Node) {
		if len(stack) == 0 {
			sheet.Nodes = append(sheet.Nodes, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	for {
		gt, tt, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if tt == css.ErrorToken {
				// End of input or lexer failure, either way nothing more is coming
				if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
					sheet.Warnings = append(sheet.Warnings, err.Error())
					p.log.Debug("CSS parse error", zap.Error(err))
				}
				if len(stack) > 0 {
					sheet.Warnings = append(sheet.Warnings, "unexpected end of input inside block")
				}
				return sheet
			}
			// recoverable grammar error, token is dropped
			if err := parser.Err(); err != nil {
				sheet.Warnings = append(sheet.Warnings, err.Error())
				p.log.Debug("CSS grammar error", zap.Error(err))
			}

		case css.CommentGrammar:
			add(&Node{Kind: CommentNode, Name: commentText(data)})

		case css.AtRuleGrammar:
			// Simple @-rule without block (e.g., @import)
			add(&Node{Kind: AtRuleNode, Name: string(data), Prelude: copyTokens(parser.Values())})

		case css.BeginAtRuleGrammar:
			n := &Node{Kind: AtRuleNode, Name: string(data), Prelude: copyTokens(parser.Values()), Block: true}
			add(n)
			stack = append(stack, n)

		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case css.QualifiedRuleGrammar:
			// This shouldn't happen in our flow, but handle it
			selector = append(selector, selectorTokens(tt, data, parser.Values())...)
			selector = append(selector, Token{Type: css.CommaToken, Data: ","})

		case css.BeginRulesetGrammar:
			n := &Node{Kind: RulesetNode, Prelude: append(selector, selectorTokens(tt, data, parser.Values())...)}
			selector = nil
			add(n)
			stack = append(stack, n)

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			add(&Node{Kind: DeclarationNode, Name: string(data), Values: copyTokens(parser.Values())})

		case css.TokenGrammar:
			// Content of @-rules we do not know the grammar of and stray
			// top-level tokens, kept verbatim
			tok := Token{Type: tt, Data: string(data)}
			if last := lastNode(sheet, stack); last != nil && last.Kind == RawNode {
				last.Values = append(last.Values, tok)
			} else {
				add(&Node{Kind: RawNode, Values: []Token{tok}})
			}
		}
	}
}

func lastNode(sheet *Stylesheet, stack []*Node) *Node {
	nodes := sheet.Nodes
	if len(stack) > 0 {
		nodes = stack[len(stack)-1].Children
	}
	if len(nodes) == 0 {
		return nil
	}
	return nodes[len(nodes)-1]
}

// selectorTokens builds selector from token data and values.
func selectorTokens(tt css.TokenType, data []byte, values []css.Token) []Token {
	var res []Token
	if len(data) > 0 && tt != css.WhitespaceToken {
		res = append(res, Token{Type: tt, Data: string(data)})
	}
	return append(res, copyTokens(values)...)
}

// copyTokens detaches tokens from parser buffers, which are reused.
func copyTokens(values []css.Token) []Token {
	if len(values) == 0 {
		return nil
	}
	res := make([]Token, 0, len(values))
	for _, v := range values {
		res = append(res, Token{Type: v.TokenType, Data: string(v.Data)})
	}
	return res
}

// commentText strips comment delimiters.
func commentText(data []byte) string {
	s := string(data)
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	return s
}

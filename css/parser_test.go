package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"fontdl/css"
)

const chunkCSS = `/* [0] */
@font-face {
  font-family: 'Noto Sans JP';
  font-style: normal;
  font-weight: 400;
  font-display: swap;
  src: url(https://fonts.gstatic.com/s/notosansjp/v52/abc.0.woff2) format('woff2');
  unicode-range: U+25ee8, U+25f23;
}
/* [1] */
@font-face {
  font-family: 'Noto Sans JP';
  font-style: normal;
  font-weight: 400;
  font-display: swap;
  src: url(https://fonts.gstatic.com/s/notosansjp/v52/abc.1.woff2) format('woff2');
  unicode-range: U+1f235-1f23b, U+1f240-1f248;
}
`

func TestParser_CommentsAndAtRules(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(chunkCSS), "test")

	if len(sheet.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", sheet.Warnings)
	}

	comments := sheet.Comments()
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].Pos != 0 || comments[1].Pos != 2 {
		t.Errorf("unexpected comment positions: %d, %d", comments[0].Pos, comments[1].Pos)
	}
	if strings.TrimSpace(comments[1].Text) != "[1]" {
		t.Errorf("expected comment text '[1]', got %q", comments[1].Text)
	}

	rules := sheet.AtRules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 at-rules, got %d", len(rules))
	}
	for i, r := range rules {
		if r.Name != "@font-face" {
			t.Errorf("rule %d: expected @font-face, got %q", i, r.Name)
		}
		if !r.Block {
			t.Errorf("rule %d: expected block", i)
		}
		if len(r.Children) != 6 {
			t.Errorf("rule %d: expected 6 declarations, got %d", i, len(r.Children))
		}
	}
}

func TestParser_URLs(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(chunkCSS))

	urls := sheet.URLs()
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d", len(urls))
	}
	want := "https://fonts.gstatic.com/s/notosansjp/v52/abc.1.woff2"
	if got := urls[1].Value(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if urls[1].Node().Name != "src" {
		t.Errorf("expected url inside src declaration, got %q", urls[1].Node().Name)
	}

	perRule := sheet.AtRules()[0].URLs()
	if len(perRule) != 1 {
		t.Fatalf("expected 1 url in first at-rule, got %d", len(perRule))
	}
}

func TestParser_RewriteAndRegenerate(t *testing.T) {
	p := css.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(chunkCSS))

	for i, u := range sheet.URLs() {
		u.Set("/fonts/file-" + string(rune('a'+i)) + ".woff2")
	}

	out := sheet.String()
	for _, s := range []string{
		"/* [0] */",
		"@font-face {",
		"font-family: 'Noto Sans JP';",
		"src: url(/fonts/file-a.woff2) format('woff2');",
		"src: url(/fonts/file-b.woff2) format('woff2');",
		"unicode-range: U+25ee8, U+25f23;",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("regenerated css does not contain %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, "fonts.gstatic.com") {
		t.Errorf("regenerated css still references remote urls:\n%s", out)
	}

	// regenerated text must parse into the same shape
	again := p.Parse([]byte(out))
	if len(again.Warnings) != 0 {
		t.Errorf("unexpected warnings on reparse: %v", again.Warnings)
	}
	if len(again.Comments()) != 2 || len(again.AtRules()) != 2 || len(again.URLs()) != 2 {
		t.Errorf("reparse changed structure: %d comments, %d at-rules, %d urls",
			len(again.Comments()), len(again.AtRules()), len(again.URLs()))
	}
	if got := again.URLs()[0].Value(); got != "/fonts/file-a.woff2" {
		t.Errorf("expected rewritten url after reparse, got %q", got)
	}
}

func TestParser_NestedURLs(t *testing.T) {
	input := `@media screen and (min-width: 100px) {
  .hero, .banner { background: url("img/a b.png") no-repeat; color: red; }
}
@import url(other.css);
p { margin: 0 }
`
	p := css.NewParser(zap.NewNop())
	sheet := p.Parse([]byte(input))

	if len(sheet.Nodes) != 3 {
		t.Fatalf("expected 3 top-level nodes, got %d", len(sheet.Nodes))
	}
	media := sheet.Nodes[0]
	if media.Kind != css.AtRuleNode || media.Name != "@media" || len(media.Children) != 1 {
		t.Fatalf("unexpected @media node: %+v", media)
	}
	ruleset := media.Children[0]
	if ruleset.Kind != css.RulesetNode {
		t.Fatalf("expected ruleset inside @media, got %s", ruleset.Kind)
	}

	urls := sheet.URLs()
	if len(urls) != 1 {
		t.Fatalf("expected 1 url in declarations, got %d", len(urls))
	}
	if got := urls[0].Value(); got != "img/a b.png" {
		t.Errorf("expected unquoted value, got %q", got)
	}

	urls[0].Set("new place.png")
	out := sheet.String()
	if !strings.Contains(out, `url("new place.png")`) {
		t.Errorf("expected quoted url in output:\n%s", out)
	}
	if !strings.Contains(out, ".hero, .banner {") {
		t.Errorf("expected selector group preserved:\n%s", out)
	}
	if !strings.Contains(out, "@import url(other.css);") {
		t.Errorf("expected @import preserved:\n%s", out)
	}
}

func TestURLValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"url(a.woff2)", "a.woff2"},
		{`url("a.woff2")`, "a.woff2"},
		{"url('a.woff2')", "a.woff2"},
		{"url( a.woff2 )", "a.woff2"},
		{`url("a\"b")`, `a"b`},
	}
	for _, tt := range tests {
		if got := css.URLValue(tt.in); got != tt.want {
			t.Errorf("URLValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatURL(t *testing.T) {
	if got := css.FormatURL("/f/a.woff2"); got != "url(/f/a.woff2)" {
		t.Errorf("unexpected %q", got)
	}
	if got := css.FormatURL(`a "b".woff2`); got != `url("a \"b\".woff2")` {
		t.Errorf("unexpected %q", got)
	}
}

func TestStylesheet_Dump(t *testing.T) {
	sheet := css.NewParser(zap.NewNop()).Parse([]byte(chunkCSS))
	out := sheet.Dump()
	for _, s := range []string{
		"stylesheet: 4 node(s), 0 warning(s)",
		`#0 comment: " [0] "`,
		`#1 at-rule @font-face "" (6 child(ren))`,
		`#4 declaration src: "url(https://fonts.gstatic.com/s/notosansjp/v52/abc.0.woff2) format('woff2')"`,
	} {
		if !strings.Contains(out, s) {
			t.Errorf("dump does not contain %q:\n%s", s, out)
		}
	}
}

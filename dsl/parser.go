// Package dsl 解析模板主题样式表：一种类 CSS 的小语言。
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/resumepress/dom"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "Hash", Pattern: `#[A-Za-z0-9_-]+`},
		{Name: "Number", Pattern: `-?(?:\d+(?:\.\d+)?|\.\d+)(?:pt|mm|cm|in|px|em|%|x)?`},
		{Name: "Class", Pattern: `\.[A-Za-z_-][A-Za-z0-9_-]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `-{0,2}[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[{}:;,*]`},
	})

	tokenNames      = invertSymbols(dslLexer.Symbols())
	hashTokenType   = mustTokenType("Hash")
	classTokenType  = mustTokenType("Class")
	identTokenType  = mustTokenType("Ident")
	punctTokenType  = mustTokenType("Punct")
	stringTokenType = mustTokenType("String")

	sheetParser = participle.MustBuild[Sheet](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "BlockComment"),
	)
)

// Sheet 是样式表文件的根节点。
type Sheet struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Rules []*Rule        `parser:"@@*"`
}

// Rule 是逗号分隔的选择器组加一个声明块。
type Rule struct {
	Pos          lexer.Position `parser:"" json:"-"`
	Selectors    []*Selector    `parser:"@@ ( ',' @@ )*"`
	Declarations []*Declaration `parser:"'{' @@* '}'"`
}

// Declaration 是 `property: value;`，末尾分号可省略。
type Declaration struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Property string         `parser:"@Ident ':'"`
	Values   []*Lexeme      `parser:"@@+ ';'?"`
}

// Value 把取值记号拼回字符串，逗号前不留空格。
func (d *Declaration) Value() string {
	out := ""
	for i, l := range d.Values {
		if i > 0 && l.Raw != "," {
			out += " "
		}
		out += l.Value
	}
	return out
}

// Selector 是由后代关系连接的复合选择器链。
// 空白在词法阶段被丢弃，因此按记号是否紧邻来划分复合选择器。
type Selector struct {
	Pos       lexer.Position `json:"-"`
	Compounds []dom.Compound `json:"compounds"`
}

// Parse implements participle.Parseable for Selector.
func (s *Selector) Parse(lex *lexer.PeekingLexer) error {
	var compounds []dom.Compound
	prevEnd := -1
	for {
		tok := lex.Peek()
		if !isSelectorToken(tok) {
			break
		}
		if len(compounds) == 0 {
			s.Pos = tok.Pos
		}
		if len(compounds) == 0 || tok.Pos.Offset != prevEnd {
			compounds = append(compounds, dom.Compound{})
		}
		cur := &compounds[len(compounds)-1]
		switch tok.Type {
		case identTokenType:
			if cur.Tag != "" || cur.Universal || len(cur.Classes) > 0 || cur.ID != "" {
				return fmt.Errorf("%s: 选择器中标签名位置错误: %q", tok.Pos, tok.Value)
			}
			cur.Tag = tok.Value
		case hashTokenType:
			if cur.ID != "" {
				return fmt.Errorf("%s: 复合选择器只能有一个 id: %q", tok.Pos, tok.Value)
			}
			cur.ID = tok.Value[1:]
		case classTokenType:
			cur.Classes = append(cur.Classes, tok.Value[1:])
		default:
			cur.Universal = true
		}
		prevEnd = tok.Pos.Offset + len(tok.Value)
		lex.Next()
	}
	if len(compounds) == 0 {
		return participle.NextMatch
	}
	s.Compounds = compounds
	return nil
}

func isSelectorToken(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return false
	}
	switch tok.Type {
	case identTokenType, hashTokenType, classTokenType:
		return true
	case punctTokenType:
		return tok.Value == "*"
	default:
		return false
	}
}

// Lexeme captures a single value token.
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse implements participle.Parseable so Lexeme can act as a grammar atom.
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if shouldStopValue(tok) {
		return participle.NextMatch
	}
	lexeme, err := newLexeme(*lex.Next())
	if err != nil {
		return err
	}
	*l = lexeme
	return nil
}

func shouldStopValue(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	if tok.Type == punctTokenType {
		return tok.Value != ","
	}
	return false
}

// Parse parses a stylesheet from an io.Reader.
func Parse(r io.Reader) (*Sheet, error) {
	return sheetParser.Parse("", r)
}

// ParseString parses a stylesheet from a string.
func ParseString(input string) (*Sheet, error) {
	return sheetParser.ParseString("", input)
}

// ParseNamed 与 ParseString 相同，错误位置中带上文件名。
func ParseNamed(name, input string) (*Sheet, error) {
	return sheetParser.ParseString(name, input)
}

func newLexeme(tok lexer.Token) (Lexeme, error) {
	name, ok := tokenNames[tok.Type]
	if !ok {
		name = fmt.Sprintf("#%d", tok.Type)
	}
	val := tok.Value
	if tok.Type == stringTokenType {
		unquoted, err := strconv.Unquote(tok.Value)
		if err != nil {
			return Lexeme{}, err
		}
		val = unquoted
	}
	return Lexeme{
		Type:  name,
		Value: val,
		Raw:   tok.Value,
		Pos:   tok.Pos,
	}, nil
}

func invertSymbols(symbols map[string]lexer.TokenType) map[lexer.TokenType]string {
	out := make(map[lexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		out[tt] = name
	}
	return out
}

func mustTokenType(name string) lexer.TokenType {
	symbols := dslLexer.Symbols()
	tt, ok := symbols[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}

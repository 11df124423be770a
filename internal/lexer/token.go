// Package lexer converts raw C source text into a stream of tokens.
//
// No preprocessing is performed; directives are surfaced as pseudo tokens so
// downstream stages can build a macro catalog without the lexer knowing
// anything about macros.
package lexer

import "fmt"

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	// Unknown marks a byte sequence the lexer could not classify. The
	// token is passed through so downstream stages can report it instead
	// of the whole file failing.
	Unknown
	Ident
	Keyword
	Punct
	Number
	String
	CharConst
	// Directive is the name token of a `#name` preprocessor line
	// ("define", "include", "ifndef", ...).
	Directive
	// EndDirective is a pseudo token marking the end of a directive's
	// logical line, after continuation joining.
	EndDirective
	// HeaderName is a `<...>` or `"..."` include target.
	HeaderName
	// FuncLikeDefine is a pseudo token emitted when a `#define NAME` is
	// immediately followed by '(' with no intervening whitespace. The
	// distinction is lost once whitespace is discarded, so it has to be
	// made here.
	FuncLikeDefine
)

var kindNames = map[Kind]string{
	EOF:            "EOF",
	Unknown:        "unknown",
	Ident:          "identifier",
	Keyword:        "keyword",
	Punct:          "punctuator",
	Number:         "number",
	String:         "string",
	CharConst:      "char",
	Directive:      "directive",
	EndDirective:   "end-directive",
	HeaderName:     "header-name",
	FuncLikeDefine: "funclike-define",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Pos is a line/column source position, both 1-based.
type Pos struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is a single lexed token. Tokens are immutable once produced.
type Token struct {
	Kind Kind
	Val  string
	Pos  Pos
}

// IsKeyword reports whether the token is the given keyword.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == Keyword && t.Val == kw
}

// IsPunct reports whether the token is the given punctuator.
func (t Token) IsPunct(p string) bool {
	return t.Kind == Punct && t.Val == p
}

var keywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true,
	"const": true, "continue": true, "default": true, "do": true,
	"double": true, "else": true, "enum": true, "extern": true,
	"float": true, "for": true, "goto": true, "if": true,
	"inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true, "_Bool": true,
}

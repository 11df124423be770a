package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Scanner lexes a single source text. It is pull-based: callers read tokens
// one at a time with Next. Scanning never fails; problems surface as Unknown
// tokens or entries in Diagnostics.
type Scanner struct {
	path string
	src  string
	off  int
	pos  Pos
	// At the beginning of a line, not counting whitespace. Decides
	// whether '#' starts a directive.
	bol bool
	// Inside a `#...` directive line. A newline ends it with an
	// EndDirective pseudo token.
	inDirective bool
	pending     []Token
	diags       []string
	done        bool
}

const noRune = rune(-1)

// Scan creates a Scanner over src. path is used only in diagnostics.
func Scan(path, src string) *Scanner {
	return &Scanner{
		path: path,
		src:  src,
		pos:  Pos{Line: 1, Col: 1},
		bol:  true,
	}
}

// Diagnostics returns non-fatal problems found so far, such as an
// unterminated block comment. Complete only once Next has returned EOF.
func (s *Scanner) Diagnostics() []string {
	return s.diags
}

// All reads every remaining token up to and including EOF.
func (s *Scanner) All() []Token {
	var toks []Token
	for {
		t := s.Next()
		toks = append(toks, t)
		if t.Kind == EOF {
			return toks
		}
	}
}

// peek returns the next rune without consuming it, joining backslash-newline
// continuations transparently.
func (s *Scanner) peek() rune {
	off := s.off
	for {
		if off >= len(s.src) {
			return noRune
		}
		if s.src[off] == '\\' {
			if n := continuationLen(s.src[off:]); n > 0 {
				off += n
				continue
			}
		}
		r, _ := utf8.DecodeRuneInString(s.src[off:])
		return r
	}
}

// next consumes and returns one rune, joining continuations and tracking the
// line/column position.
func (s *Scanner) next() rune {
	for {
		if s.off >= len(s.src) {
			return noRune
		}
		if s.src[s.off] == '\\' {
			if n := continuationLen(s.src[s.off:]); n > 0 {
				s.off += n
				s.pos.Line++
				s.pos.Col = 1
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(s.src[s.off:])
		s.off += size
		switch r {
		case '\n':
			s.pos.Line++
			s.pos.Col = 1
		case '\t':
			s.pos.Col += 4
		default:
			s.pos.Col++
		}
		return r
	}
}

// continuationLen reports the byte length of a backslash-newline sequence at
// the start of rest, or 0 if rest does not start with one.
func continuationLen(rest string) int {
	if len(rest) >= 3 && rest[0] == '\\' && rest[1] == '\r' && rest[2] == '\n' {
		return 3
	}
	if len(rest) >= 2 && rest[0] == '\\' && (rest[1] == '\n' || rest[1] == '\r') {
		return 2
	}
	return 0
}

func (s *Scanner) tok(kind Kind, val string, pos Pos) Token {
	if kind != EndDirective {
		s.bol = false
	}
	return Token{Kind: kind, Val: val, Pos: pos}
}

func (s *Scanner) push(kind Kind, val string, pos Pos) {
	s.pending = append(s.pending, s.tok(kind, val, pos))
}

// Next returns the next token. After the end of input it returns EOF tokens
// forever.
func (s *Scanner) Next() Token {
	if len(s.pending) > 0 {
		t := s.pending[0]
		s.pending = s.pending[1:]
		return t
	}
	if s.done {
		return Token{Kind: EOF, Pos: s.pos}
	}

	for {
		s.skipSpaceAndComments()
		if len(s.pending) > 0 {
			// A newline inside a directive queued an EndDirective.
			return s.Next()
		}
		start := s.pos
		r := s.peek()
		if r == noRune {
			s.done = true
			if s.inDirective {
				s.inDirective = false
				return s.tok(EndDirective, "", start)
			}
			return Token{Kind: EOF, Pos: start}
		}

		switch {
		case isIdentStart(r):
			return s.scanIdent(start)
		case isDigit(r):
			return s.scanNumber(start)
		}

		switch r {
		case '#':
			if s.bol {
				s.next()
				if t, ok := s.scanDirective(start); ok {
					return t
				}
				continue
			}
			s.next()
			return s.tok(Punct, "#", start)
		case '"':
			return s.scanString(start)
		case '\'':
			return s.scanChar(start)
		case '.':
			s.next()
			if s.peek() == '.' {
				save := *s
				s.next()
				if s.peek() == '.' {
					s.next()
					return s.tok(Punct, "...", start)
				}
				*s = save
			}
			return s.tok(Punct, ".", start)
		}

		if op := s.scanOperator(); op != "" {
			return s.tok(Punct, op, start)
		}

		s.next()
		s.diags = append(s.diags, fmt.Sprintf("%s:%s: unrecognized character %q", s.path, start, r))
		return s.tok(Unknown, string(r), start)
	}
}

// skipSpaceAndComments consumes whitespace and comments. Newlines terminate
// an active directive by queueing an EndDirective token.
func (s *Scanner) skipSpaceAndComments() {
	for {
		r := s.peek()
		switch r {
		case ' ', '\t', '\r', '\f', '\v':
			s.next()
		case '\n':
			pos := s.pos
			s.next()
			s.bol = true
			if s.inDirective {
				s.inDirective = false
				s.pending = append(s.pending, Token{Kind: EndDirective, Pos: pos})
				return
			}
		case '/':
			if !s.skipComment() {
				return
			}
		default:
			return
		}
	}
}

// skipComment consumes a // or /* */ comment if one starts at the current
// offset. Returns false when the '/' is not a comment opener.
func (s *Scanner) skipComment() bool {
	rest := s.src[s.off:]
	if strings.HasPrefix(rest, "//") {
		for {
			r := s.peek()
			if r == noRune || r == '\n' {
				return true
			}
			s.next()
		}
	}
	if strings.HasPrefix(rest, "/*") {
		start := s.pos
		s.next()
		s.next()
		for {
			r := s.next()
			if r == noRune {
				s.diags = append(s.diags, fmt.Sprintf("%s:%s: unterminated block comment", s.path, start))
				return true
			}
			if r == '*' && s.peek() == '/' {
				s.next()
				return true
			}
		}
	}
	return false
}

func (s *Scanner) scanIdent(start Pos) Token {
	var b strings.Builder
	for {
		r := s.peek()
		if !isIdentPart(r) {
			break
		}
		b.WriteRune(r)
		s.next()
	}
	val := b.String()
	if keywords[val] {
		return s.tok(Keyword, val, start)
	}
	return s.tok(Ident, val, start)
}

func (s *Scanner) scanNumber(start Pos) Token {
	var b strings.Builder
	for {
		r := s.peek()
		// pp-number: digits, ident chars, '.', and exponent signs.
		if isIdentPart(r) || r == '.' {
			prev := r
			b.WriteRune(r)
			s.next()
			if (prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P') &&
				(s.peek() == '+' || s.peek() == '-') {
				b.WriteRune(s.peek())
				s.next()
			}
			continue
		}
		break
	}
	return s.tok(Number, b.String(), start)
}

func (s *Scanner) scanString(start Pos) Token {
	var b strings.Builder
	b.WriteRune(s.next()) // opening quote
	for {
		r := s.next()
		if r == noRune || r == '\n' {
			s.diags = append(s.diags, fmt.Sprintf("%s:%s: unterminated string literal", s.path, start))
			return s.tok(String, b.String(), start)
		}
		if r == '\\' {
			esc := s.next()
			if esc == noRune {
				s.diags = append(s.diags, fmt.Sprintf("%s:%s: unterminated string literal", s.path, start))
				return s.tok(String, b.String(), start)
			}
			b.WriteRune('\\')
			b.WriteRune(esc)
			continue
		}
		b.WriteRune(r)
		if r == '"' {
			return s.tok(String, b.String(), start)
		}
	}
}

func (s *Scanner) scanChar(start Pos) Token {
	var b strings.Builder
	b.WriteRune(s.next()) // opening quote
	for {
		r := s.next()
		if r == noRune || r == '\n' {
			s.diags = append(s.diags, fmt.Sprintf("%s:%s: unterminated character literal", s.path, start))
			return s.tok(CharConst, b.String(), start)
		}
		if r == '\\' {
			esc := s.next()
			if esc == noRune {
				s.diags = append(s.diags, fmt.Sprintf("%s:%s: unterminated character literal", s.path, start))
				return s.tok(CharConst, b.String(), start)
			}
			b.WriteRune('\\')
			b.WriteRune(esc)
			continue
		}
		b.WriteRune(r)
		if r == '\'' {
			return s.tok(CharConst, b.String(), start)
		}
	}
}

// operators is checked in order, longest first.
var operators = []string{
	"<<=", ">>=",
	"->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
	"(", ")", "{", "}", "[", "]", ",", ";", ":", "?", "~",
	"+", "-", "*", "/", "%", "<", ">", "=", "!", "&", "|", "^",
}

func (s *Scanner) scanOperator() string {
	rest := s.src[s.off:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			for range op {
				s.next()
			}
			return op
		}
	}
	return ""
}

// scanDirective handles a '#' at the beginning of a line. The directive name
// is emitted as a Directive token; `#include` and `#define` get extra help
// (header name, function-like detection) that is impossible to reconstruct
// once whitespace is gone. A stray '#' with no name is left to the parser.
func (s *Scanner) scanDirective(start Pos) (Token, bool) {
	for {
		r := s.peek()
		if r == ' ' || r == '\t' {
			s.next()
			continue
		}
		break
	}
	if !isIdentStart(s.peek()) {
		return Token{}, false
	}
	var b strings.Builder
	for isIdentPart(s.peek()) {
		b.WriteRune(s.peek())
		s.next()
	}
	name := b.String()
	s.inDirective = true
	t := s.tok(Directive, name, start)
	switch name {
	case "include":
		s.queueHeaderName()
	case "define":
		s.queueDefineName()
	}
	return t, true
}

// queueHeaderName reads the <...> or "..." target of an #include.
func (s *Scanner) queueHeaderName() {
	for s.peek() == ' ' || s.peek() == '\t' {
		s.next()
	}
	start := s.pos
	open := s.peek()
	var term rune
	switch open {
	case '<':
		term = '>'
	case '"':
		term = '"'
	default:
		return
	}
	var b strings.Builder
	b.WriteRune(s.next())
	for {
		r := s.next()
		if r == noRune || r == '\n' {
			s.diags = append(s.diags, fmt.Sprintf("%s:%s: unterminated include target", s.path, start))
			break
		}
		b.WriteRune(r)
		if r == term {
			break
		}
	}
	s.pending = append(s.pending, s.tok(HeaderName, b.String(), start))
}

// queueDefineName reads the macro name after #define and, when '(' follows
// it with no whitespace, queues a FuncLikeDefine marker ahead of the name.
func (s *Scanner) queueDefineName() {
	for s.peek() == ' ' || s.peek() == '\t' {
		s.next()
	}
	if !isIdentStart(s.peek()) {
		return
	}
	start := s.pos
	var b strings.Builder
	for isIdentPart(s.peek()) {
		b.WriteRune(s.peek())
		s.next()
	}
	if s.peek() == '(' {
		s.pending = append(s.pending, s.tok(FuncLikeDefine, "", start))
	}
	s.pending = append(s.pending, s.tok(Ident, b.String(), start))
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

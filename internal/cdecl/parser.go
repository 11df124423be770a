package cdecl

import (
	"fmt"
	"strconv"
	"strings"

	"cscan/internal/lexer"
)

// Result holds everything the parser recognized in one pass, plus the
// diagnostics for declarations it had to skip.
type Result struct {
	Functions   []FunctionDecl
	Types       []TypeDecl
	Diagnostics []string
}

type parser struct {
	path string
	toks []lexer.Token
	i    int
	res  Result
	// typedef names seen so far, so later declarations can use them in
	// specifier position.
	typedefs map[string]bool
}

// parseFailure aborts the current declaration; the top-level loop recovers
// and resynchronizes at the next statement boundary.
type parseFailure struct {
	msg string
	pos lexer.Pos
}

// Parse recognizes top-level function and type declarations in toks, which
// must be free of preprocessor directive tokens. A declaration that cannot
// be parsed is skipped with a diagnostic; it never aborts the rest of the
// stream. path is used only in diagnostics.
func Parse(path string, toks []lexer.Token) Result {
	p := &parser{path: path, toks: toks, typedefs: map[string]bool{}}
	for !p.atEOF() {
		p.parseTopLevel()
	}
	return p.res
}

func (p *parser) cur() lexer.Token {
	if p.i < len(p.toks) {
		return p.toks[p.i]
	}
	return lexer.Token{Kind: lexer.EOF}
}

func (p *parser) peek() lexer.Token {
	if p.i+1 < len(p.toks) {
		return p.toks[p.i+1]
	}
	return lexer.Token{Kind: lexer.EOF}
}

func (p *parser) next() lexer.Token {
	t := p.cur()
	if p.i < len(p.toks) {
		p.i++
	}
	return t
}

func (p *parser) atEOF() bool {
	return p.cur().Kind == lexer.EOF
}

func (p *parser) fail(pos lexer.Pos, format string, args ...interface{}) {
	panic(parseFailure{msg: fmt.Sprintf(format, args...), pos: pos})
}

func (p *parser) expectPunct(s string) {
	if !p.cur().IsPunct(s) {
		p.fail(p.cur().Pos, "expected %q, got %q", s, p.cur().Val)
	}
	p.next()
}

// parseTopLevel parses one declaration, recovering from failures by skipping
// to the next top-level ';' or balanced '}'.
func (p *parser) parseTopLevel() {
	if p.cur().IsPunct(";") {
		p.next()
		return
	}
	start := p.i
	defer func() {
		if e := recover(); e != nil {
			pf, ok := e.(parseFailure)
			if !ok {
				panic(e)
			}
			p.res.Diagnostics = append(p.res.Diagnostics,
				fmt.Sprintf("%s:%s: skipped unparseable declaration: %s", p.path, pf.pos, pf.msg))
			if p.i == start {
				p.next()
			}
			p.resync()
		}
	}()
	p.parseDeclaration()
}

// resync skips tokens until just past a ';' or a balanced '}' at brace depth
// zero. Only braces are tracked: the declaration being skipped may have
// unbalanced parentheses, so counting them would overrun the boundary.
func (p *parser) resync() {
	depth := 0
	for !p.atEOF() {
		t := p.next()
		if t.Kind != lexer.Punct {
			continue
		}
		switch t.Val {
		case "{":
			depth++
		case "}":
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				// A closing brace may be followed by the
				// declarator-less ';' of a definition.
				if p.cur().IsPunct(";") {
					p.next()
				}
				return
			}
		case ";":
			if depth == 0 {
				return
			}
		}
	}
}

// specifiers is the decomposed declaration-specifier prefix of a declaration.
type specifiers struct {
	base      TypeExpr
	isTypedef bool
	// tagDecl is a struct/union/enum definition found in specifier
	// position, recorded once the whole declaration is understood.
	tagDecl *TypeDecl
	pos     lexer.Pos
}

var baseTypeWords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true,
}

var storageWords = map[string]bool{
	"static": true, "extern": true, "register": true, "auto": true,
	"inline": true, "const": true, "volatile": true, "restrict": true,
}

// parseSpecifiers consumes storage classes, qualifiers and the base type.
// C allows an implicit int base, so an empty specifier list is not itself an
// error; the declarator that follows decides.
func (p *parser) parseSpecifiers() specifiers {
	sp := specifiers{pos: p.cur().Pos}
	var words []string
	for {
		t := p.cur()
		switch {
		case t.IsKeyword("typedef"):
			sp.isTypedef = true
			p.next()
		case t.Kind == lexer.Keyword && storageWords[t.Val]:
			p.next()
		case t.Kind == lexer.Keyword && baseTypeWords[t.Val]:
			words = append(words, t.Val)
			p.next()
		case t.IsKeyword("struct") || t.IsKeyword("union") || t.IsKeyword("enum"):
			sp.base = p.parseTagType(&sp)
			return sp
		case t.Kind == lexer.Ident && len(words) == 0 && sp.base == nil && p.identIsTypeName():
			sp.base = Named{Name: t.Val}
			p.next()
			return sp
		default:
			if len(words) > 0 {
				sp.base = Primitive{Name: strings.Join(words, " ")}
			}
			return sp
		}
	}
}

// identIsTypeName decides whether the identifier at the cursor is used as a
// type name. Known typedefs always are; otherwise an identifier followed by
// another identifier or '*' must be (two consecutive identifiers cannot both
// be declarators).
func (p *parser) identIsTypeName() bool {
	if p.typedefs[p.cur().Val] {
		return true
	}
	nxt := p.peek()
	return nxt.Kind == lexer.Ident || nxt.IsPunct("*")
}

// parseTagType handles struct/union/enum in specifier position, including an
// attached body. A named definition is recorded as a TypeDecl; an anonymous
// body is only meaningful when a typedef later binds it to a name.
func (p *parser) parseTagType(sp *specifiers) TypeExpr {
	kw := p.next()
	tag := kw.Val
	name := ""
	if p.cur().Kind == lexer.Ident {
		name = p.next().Val
	}
	hasBody := false
	if p.cur().IsPunct("{") {
		hasBody = true
		p.skipBraces()
	}
	if hasBody && name != "" {
		sp.tagDecl = &TypeDecl{Name: name, Kind: TypeDeclKind(tag), Pos: kw.Pos}
	}
	if name == "" {
		// Anonymous: representable only through the enclosing typedef.
		return Named{Tag: tag, Name: "<anonymous>"}
	}
	return Named{Tag: tag, Name: name}
}

// skipBraces consumes a balanced brace block starting at '{'.
func (p *parser) skipBraces() {
	open := p.cur()
	p.expectPunct("{")
	depth := 1
	for depth > 0 {
		if p.atEOF() {
			p.fail(open.Pos, "unbalanced braces")
		}
		t := p.next()
		if t.IsPunct("{") {
			depth++
		} else if t.IsPunct("}") {
			depth--
		}
	}
}

func (p *parser) parseDeclaration() {
	sp := p.parseSpecifiers()

	// `struct X { ... };` with no declarator.
	if p.cur().IsPunct(";") {
		p.next()
		if sp.tagDecl != nil {
			p.res.Types = append(p.res.Types, *sp.tagDecl)
		}
		return
	}

	if sp.base == nil {
		if sp.tagDecl != nil {
			p.res.Types = append(p.res.Types, *sp.tagDecl)
		}
		p.fail(p.cur().Pos, "expected declaration specifiers, got %q", p.cur().Val)
	}
	if sp.tagDecl != nil {
		p.res.Types = append(p.res.Types, *sp.tagDecl)
	}

	first := true
	for {
		name, ty, pos := p.parseDeclarator(sp.base)

		if fn, ok := ty.(Func); ok && !sp.isTypedef && name != "" {
			decl := FunctionDecl{
				Name:     name,
				Return:   fn.Return,
				Params:   fn.Params,
				Variadic: fn.Variadic,
				Pos:      pos,
			}
			if first && p.cur().IsPunct("{") {
				decl.IsDefinition = true
				p.skipBraces()
				p.res.Functions = append(p.res.Functions, decl)
				return
			}
			p.res.Functions = append(p.res.Functions, decl)
		} else if sp.isTypedef {
			if name == "" {
				p.fail(pos, "typedef without a name")
			}
			p.typedefs[name] = true
			p.res.Types = append(p.res.Types, TypeDecl{
				Name:       name,
				Kind:       TypedefDecl,
				Underlying: ty,
				Pos:        pos,
			})
		}

		if p.cur().IsPunct("=") {
			p.next()
			p.skipInitializer()
		}
		if !p.cur().IsPunct(",") {
			break
		}
		p.next()
		first = false
	}
	p.expectPunct(";")
}

// skipInitializer consumes an initializer expression up to the next ',' or
// ';' at nesting depth zero.
func (p *parser) skipInitializer() {
	depth := 0
	for !p.atEOF() {
		t := p.cur()
		if t.Kind == lexer.Punct {
			switch t.Val {
			case "(", "[", "{":
				depth++
			case ")", "]", "}":
				depth--
			case ",", ";":
				if depth <= 0 {
					return
				}
			}
		}
		p.next()
	}
}

// parseDeclarator resolves one declarator against the base type, following
// declaration-mirrors-usage: suffixes bind tighter than pointer prefixes,
// and a parenthesized inner declarator wraps around the fully suffixed type.
func (p *parser) parseDeclarator(base TypeExpr) (string, TypeExpr, lexer.Pos) {
	startPos := p.cur().Pos
	name, wrap := p.declaratorPart()
	return name, wrap(base), startPos
}

// typeWrap builds the final type of a declarator level from the type
// constructed by the enclosing levels.
type typeWrap func(TypeExpr) TypeExpr

func (p *parser) declaratorPart() (string, typeWrap) {
	// Pointer prefix, qualifiers interleaved.
	ptrs := 0
	for {
		t := p.cur()
		if t.IsPunct("*") {
			ptrs++
			p.next()
			continue
		}
		if t.Kind == lexer.Keyword && (t.Val == "const" || t.Val == "volatile" || t.Val == "restrict") {
			p.next()
			continue
		}
		break
	}

	name := ""
	inner := typeWrap(nil)
	switch {
	case p.cur().IsPunct("(") && (p.peek().IsPunct("*") || p.peek().IsPunct("(")):
		p.next()
		name, inner = p.declaratorPart()
		p.expectPunct(")")
	case p.cur().Kind == lexer.Ident:
		name = p.next().Val
	default:
		// Abstract declarator: no identifier.
	}

	suffixes := p.parseSuffixes()

	wrap := func(t TypeExpr) TypeExpr {
		for i := 0; i < ptrs; i++ {
			t = Pointer{To: t}
		}
		for i := len(suffixes) - 1; i >= 0; i-- {
			t = suffixes[i](t)
		}
		if inner != nil {
			t = inner(t)
		}
		return t
	}
	return name, wrap
}

// parseSuffixes reads array and function declarator suffixes in source
// order.
func (p *parser) parseSuffixes() []typeWrap {
	var suffixes []typeWrap
	for {
		switch {
		case p.cur().IsPunct("["):
			size := p.parseArraySize()
			suffixes = append(suffixes, func(t TypeExpr) TypeExpr {
				return Array{Of: t, Size: size}
			})
		case p.cur().IsPunct("("):
			params, variadic := p.parseParamList()
			suffixes = append(suffixes, func(t TypeExpr) TypeExpr {
				return Func{Return: t, Params: params, Variadic: variadic}
			})
		default:
			return suffixes
		}
	}
}

func (p *parser) parseArraySize() int {
	open := p.cur()
	p.expectPunct("[")
	size := -1
	if p.cur().Kind == lexer.Number {
		if n, err := strconv.ParseInt(strings.TrimRight(p.cur().Val, "uUlL"), 0, 64); err == nil {
			size = int(n)
		}
	}
	// Skip anything up to the matching ']'; sizes may be arbitrary
	// constant expressions we do not evaluate.
	depth := 1
	for depth > 0 {
		if p.atEOF() {
			p.fail(open.Pos, "unbalanced brackets")
		}
		t := p.next()
		if t.IsPunct("[") {
			depth++
		} else if t.IsPunct("]") {
			depth--
		}
	}
	return size
}

// parseParamList reads a parenthesized parameter list. `(void)` and `()`
// both mean no parameters; a trailing `...` sets the variadic flag and is
// not included in the list.
func (p *parser) parseParamList() ([]Parameter, bool) {
	p.expectPunct("(")
	if p.cur().IsPunct(")") {
		p.next()
		return nil, false
	}
	if p.cur().IsKeyword("void") && p.peek().IsPunct(")") {
		p.next()
		p.next()
		return nil, false
	}

	var params []Parameter
	variadic := false
	for {
		if p.cur().IsPunct("...") {
			variadic = true
			p.next()
			break
		}
		sp := p.parseSpecifiers()
		if sp.base == nil {
			p.fail(p.cur().Pos, "expected parameter type, got %q", p.cur().Val)
		}
		name, ty, _ := p.parseDeclarator(sp.base)
		params = append(params, Parameter{Name: name, Type: ty})
		if !p.cur().IsPunct(",") {
			break
		}
		p.next()
	}
	p.expectPunct(")")
	return params, variadic
}

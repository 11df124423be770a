// Package preproc builds the macro catalog and include list of a file from
// its token stream. Conditional compilation is deliberately approximated:
// conditions are never evaluated and every branch is treated as active text.
package preproc

import (
	"fmt"
	"strings"

	"cscan/internal/lexer"
)

// MacroKind distinguishes object-like from function-like macros.
type MacroKind string

const (
	ObjectMacro   MacroKind = "object"
	FunctionMacro MacroKind = "function"
)

// MacroDecl is one recorded #define.
type MacroDecl struct {
	Name string
	Kind MacroKind
	// Params is the parameter list of a function-like macro, in
	// declaration order. Empty for object-like macros.
	Params []string
	// Body is the replacement text, reconstructed from the directive's
	// tokens after continuation joining.
	Body string
	// IsHeaderGuard is set when the macro looks like the file's include
	// guard: the first macro defined, immediately after an #ifndef test
	// of the same name. The pairing is a convention, so a missed guard
	// is harmless.
	IsHeaderGuard bool
	Pos           lexer.Pos
}

// Include is one #include directive.
type Include struct {
	// Path is the include target without its <> or "" delimiters.
	Path string
	// IsSystem is true for <...> includes.
	IsSystem bool
	Pos      lexer.Pos
}

// Catalog is the preprocessor-level surface of one file.
type Catalog struct {
	Macros      []MacroDecl
	Includes    []Include
	Diagnostics []string
}

// Build scans toks (a full token stream including directive tokens) and
// collects every #define and #include. Malformed defines are skipped with a
// diagnostic; they never abort the rest of the stream. path is used only in
// diagnostics.
func Build(path string, toks []lexer.Token) Catalog {
	var cat Catalog

	// Name tested by the immediately preceding #ifndef, for guard
	// detection. Cleared by any other directive in between.
	pendingIfndef := ""

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind != lexer.Directive {
			continue
		}
		line, rest := directiveLine(toks, i)
		i = rest - 1

		switch t.Val {
		case "define":
			m, err := parseDefine(t.Pos, line)
			if err != nil {
				cat.Diagnostics = append(cat.Diagnostics,
					fmt.Sprintf("%s:%s: skipped malformed #define: %v", path, t.Pos, err))
				break
			}
			if len(cat.Macros) == 0 && pendingIfndef != "" && m.Name == pendingIfndef {
				m.IsHeaderGuard = true
			}
			cat.Macros = append(cat.Macros, m)
		case "include":
			if len(line) > 0 && line[0].Kind == lexer.HeaderName {
				val := line[0].Val
				cat.Includes = append(cat.Includes, Include{
					Path:     strings.Trim(val, `<>"`),
					IsSystem: strings.HasPrefix(val, "<"),
					Pos:      t.Pos,
				})
			} else {
				cat.Diagnostics = append(cat.Diagnostics,
					fmt.Sprintf("%s:%s: #include without a target", path, t.Pos))
			}
		case "ifndef":
			if len(line) > 0 && line[0].Kind == lexer.Ident {
				pendingIfndef = line[0].Val
				continue
			}
		}
		if t.Val != "ifndef" {
			pendingIfndef = ""
		}
	}
	return cat
}

// directiveLine returns the tokens of the directive starting at toks[i]
// (excluding the Directive and EndDirective tokens themselves) and the index
// just past the line.
func directiveLine(toks []lexer.Token, i int) ([]lexer.Token, int) {
	j := i + 1
	for j < len(toks) && toks[j].Kind != lexer.EndDirective && toks[j].Kind != lexer.EOF {
		j++
	}
	if j < len(toks) && toks[j].Kind == lexer.EndDirective {
		return toks[i+1 : j], j + 1
	}
	return toks[i+1 : j], j
}

func parseDefine(pos lexer.Pos, line []lexer.Token) (MacroDecl, error) {
	funcLike := false
	if len(line) > 0 && line[0].Kind == lexer.FuncLikeDefine {
		funcLike = true
		line = line[1:]
	}
	if len(line) == 0 || line[0].Kind != lexer.Ident {
		return MacroDecl{}, fmt.Errorf("missing macro name")
	}
	m := MacroDecl{Name: line[0].Val, Kind: ObjectMacro, Pos: pos}
	line = line[1:]

	if funcLike {
		m.Kind = FunctionMacro
		var err error
		m.Params, line, err = parseMacroParams(line)
		if err != nil {
			return MacroDecl{}, err
		}
	}
	m.Body = joinTokens(line)
	return m, nil
}

// parseMacroParams reads the comma-separated parameter list between the '('
// that directly follows the macro name and its matching ')'.
func parseMacroParams(line []lexer.Token) ([]string, []lexer.Token, error) {
	if len(line) == 0 || !line[0].IsPunct("(") {
		return nil, nil, fmt.Errorf("function-like macro without parameter list")
	}
	line = line[1:]
	var params []string
	for {
		if len(line) == 0 {
			return nil, nil, fmt.Errorf("unmatched '(' in macro parameter list")
		}
		if line[0].IsPunct(")") {
			return params, line[1:], nil
		}
		switch {
		case line[0].Kind == lexer.Ident:
			params = append(params, line[0].Val)
		case line[0].IsPunct("..."):
			params = append(params, "...")
		default:
			return nil, nil, fmt.Errorf("unexpected %q in macro parameter list", line[0].Val)
		}
		line = line[1:]
		if len(line) > 0 && line[0].IsPunct(",") {
			line = line[1:]
		}
	}
}

// joinTokens reconstructs readable body text: adjacent word-like tokens are
// separated by a space, punctuation is packed tight.
func joinTokens(toks []lexer.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && wordLike(toks[i-1]) && wordLike(t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.Val)
	}
	return b.String()
}

func wordLike(t lexer.Token) bool {
	switch t.Kind {
	case lexer.Ident, lexer.Keyword, lexer.Number, lexer.String, lexer.CharConst:
		return true
	}
	return false
}

// Package cdecl recognizes top-level C declarations from a token stream and
// resolves declarators into structured type expressions.
package cdecl

import (
	"strconv"
	"strings"

	"cscan/internal/lexer"
)

// TypeExpr is a structured description of a C type. The nesting of the tree
// mirrors the declarator nesting in the source exactly.
type TypeExpr interface {
	// String renders the type in readable C-like form.
	String() string
	typeExpr()
}

// Primitive is a builtin type, possibly multi-word ("unsigned long").
type Primitive struct {
	Name string
}

// Named references a struct, union, enum or typedef by name.
type Named struct {
	// Tag is "struct", "union" or "enum" for tagged references, empty
	// for typedef names.
	Tag  string
	Name string
}

// Pointer is a pointer to another type.
type Pointer struct {
	To TypeExpr
}

// Array is an array type. Size is -1 when the source omits it.
type Array struct {
	Of   TypeExpr
	Size int
}

// Func is a function type: the direct type of a function declarator, or
// the pointee of a function pointer.
type Func struct {
	Return   TypeExpr
	Params   []Parameter
	Variadic bool
}

func (Primitive) typeExpr() {}
func (Named) typeExpr()     {}
func (Pointer) typeExpr()   {}
func (Array) typeExpr()     {}
func (Func) typeExpr()      {}

func (t Primitive) String() string { return t.Name }

func (t Named) String() string {
	if t.Tag == "" {
		return t.Name
	}
	return t.Tag + " " + t.Name
}

func (t Pointer) String() string {
	if fn, ok := t.To.(Func); ok {
		return fn.Return.String() + " (*)(" + fn.paramString() + ")"
	}
	return t.To.String() + "*"
}

func (t Array) String() string {
	if t.Size < 0 {
		return t.Of.String() + "[]"
	}
	return t.Of.String() + "[" + strconv.Itoa(t.Size) + "]"
}

func (t Func) String() string {
	return t.Return.String() + "(" + t.paramString() + ")"
}

func (t Func) paramString() string {
	var parts []string
	for _, p := range t.Params {
		parts = append(parts, p.Type.String())
	}
	if t.Variadic {
		parts = append(parts, "...")
	}
	return strings.Join(parts, ", ")
}

// Parameter is one function parameter. Name is empty when the prototype
// omits it.
type Parameter struct {
	Name string   `json:"name,omitempty"`
	Type TypeExpr `json:"type"`
}

// FunctionDecl is a recognized function declaration or definition.
type FunctionDecl struct {
	Name         string      `json:"name"`
	Return       TypeExpr    `json:"return"`
	Params       []Parameter `json:"params,omitempty"`
	Variadic     bool        `json:"variadic,omitempty"`
	IsDefinition bool        `json:"isDefinition,omitempty"`
	Pos          lexer.Pos   `json:"pos"`
}

// Signature renders the declaration as "ReturnType(ParamType ParamName, ...)".
// Parameter names absent in the source are omitted.
func (f FunctionDecl) Signature() string {
	var parts []string
	for _, p := range f.Params {
		if p.Name == "" {
			parts = append(parts, p.Type.String())
		} else {
			parts = append(parts, p.Type.String()+" "+p.Name)
		}
	}
	if f.Variadic {
		parts = append(parts, "...")
	}
	return f.Return.String() + "(" + strings.Join(parts, ", ") + ")"
}

// TypeDeclKind classifies a type declaration.
type TypeDeclKind string

const (
	StructDecl  TypeDeclKind = "struct"
	UnionDecl   TypeDeclKind = "union"
	EnumDecl    TypeDeclKind = "enum"
	TypedefDecl TypeDeclKind = "typedef"
)

// TypeDecl is a recognized struct/union/enum definition or typedef.
type TypeDecl struct {
	Name string       `json:"name"`
	Kind TypeDeclKind `json:"kind"`
	// Underlying is the aliased type for typedefs, nil otherwise.
	Underlying TypeExpr  `json:"underlying,omitempty"`
	Pos        lexer.Pos `json:"pos"`
}

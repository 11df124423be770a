package cdecl

import (
	"testing"

	"cscan/internal/lexer"
)

func parseSrc(t *testing.T, src string) Result {
	t.Helper()
	return Parse("test.h", lexer.Scan("test.h", src).All())
}

func TestParsePrototype(t *testing.T) {
	res := parseSrc(t, "int add(int a, int b);")

	if len(res.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(res.Functions))
	}
	fn := res.Functions[0]
	if fn.Name != "add" {
		t.Errorf("name = %q, want add", fn.Name)
	}
	if prim, ok := fn.Return.(Primitive); !ok || prim.Name != "int" {
		t.Errorf("return = %v, want primitive int", fn.Return)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("got %d params, want 2", len(fn.Params))
	}
	if fn.Params[0].Name != "a" || fn.Params[1].Name != "b" {
		t.Errorf("param names = %q, %q", fn.Params[0].Name, fn.Params[1].Name)
	}
	if fn.Variadic {
		t.Error("not variadic")
	}
	if fn.IsDefinition {
		t.Error("prototype is not a definition")
	}
	if got := fn.Signature(); got != "int(int a, int b)" {
		t.Errorf("signature = %q, want %q", got, "int(int a, int b)")
	}
}

func TestParseDefinition(t *testing.T) {
	res := parseSrc(t, "static int helper(void) { return 42; }\nint after(void);")

	if len(res.Functions) != 2 {
		t.Fatalf("got %d functions, want 2: %+v", len(res.Functions), res.Functions)
	}
	if !res.Functions[0].IsDefinition {
		t.Error("first function should be a definition")
	}
	if res.Functions[1].Name != "after" {
		t.Errorf("second function = %q, want after", res.Functions[1].Name)
	}
}

func TestParseUnnamedParams(t *testing.T) {
	res := parseSrc(t, "int add(int, int);")

	fn := res.Functions[0]
	if fn.Params[0].Name != "" || fn.Params[1].Name != "" {
		t.Errorf("params should be unnamed: %+v", fn.Params)
	}
	if got := fn.Signature(); got != "int(int, int)" {
		t.Errorf("signature = %q, want %q", got, "int(int, int)")
	}
}

func TestParseVariadic(t *testing.T) {
	res := parseSrc(t, "int printf(const char *fmt, ...);")

	fn := res.Functions[0]
	if !fn.Variadic {
		t.Fatal("expected variadic")
	}
	// The ellipsis is not a parameter.
	if len(fn.Params) != 1 {
		t.Errorf("got %d params, want 1", len(fn.Params))
	}
	if _, ok := fn.Params[0].Type.(Pointer); !ok {
		t.Errorf("param type = %v, want pointer", fn.Params[0].Type)
	}
}

func TestParseVoidParamList(t *testing.T) {
	res := parseSrc(t, "void reset(void);")

	fn := res.Functions[0]
	if len(fn.Params) != 0 {
		t.Errorf("(void) means no parameters, got %+v", fn.Params)
	}
}

func TestFunctionPointerParam(t *testing.T) {
	res := parseSrc(t, "void on_event(void (*cb)(int));")

	fn := res.Functions[0]
	if len(fn.Params) != 1 {
		t.Fatalf("got %d params, want 1", len(fn.Params))
	}
	ptr, ok := fn.Params[0].Type.(Pointer)
	if !ok {
		t.Fatalf("param type = %T, want pointer-to-function", fn.Params[0].Type)
	}
	inner, ok := ptr.To.(Func)
	if !ok {
		t.Fatalf("pointee = %T, want function type", ptr.To)
	}
	if prim, ok := inner.Return.(Primitive); !ok || prim.Name != "void" {
		t.Errorf("callback return = %v, want void", inner.Return)
	}
	if len(inner.Params) != 1 {
		t.Errorf("callback params = %+v, want one int", inner.Params)
	}
}

func TestArrayOfPointersDeclarator(t *testing.T) {
	// `int *arr[10]` is an array of pointers, not a pointer to array.
	res := parseSrc(t, "typedef int *arr_t[10];")

	if len(res.Types) != 1 {
		t.Fatalf("got %d types, want 1", len(res.Types))
	}
	arr, ok := res.Types[0].Underlying.(Array)
	if !ok {
		t.Fatalf("underlying = %T, want array", res.Types[0].Underlying)
	}
	if arr.Size != 10 {
		t.Errorf("size = %d, want 10", arr.Size)
	}
	if _, ok := arr.Of.(Pointer); !ok {
		t.Errorf("element = %T, want pointer", arr.Of)
	}
}

func TestPointerToArrayDeclarator(t *testing.T) {
	// `int (*p)[10]` is a pointer to an array.
	res := parseSrc(t, "typedef int (*row_t)[10];")

	ptr, ok := res.Types[0].Underlying.(Pointer)
	if !ok {
		t.Fatalf("underlying = %T, want pointer", res.Types[0].Underlying)
	}
	if _, ok := ptr.To.(Array); !ok {
		t.Errorf("pointee = %T, want array", ptr.To)
	}
}

func TestTypedefSimple(t *testing.T) {
	res := parseSrc(t, "typedef unsigned long size_type;")

	if len(res.Types) != 1 {
		t.Fatalf("got %d types, want 1", len(res.Types))
	}
	td := res.Types[0]
	if td.Name != "size_type" || td.Kind != TypedefDecl {
		t.Errorf("decl = %+v", td)
	}
	if prim, ok := td.Underlying.(Primitive); !ok || prim.Name != "unsigned long" {
		t.Errorf("underlying = %v, want unsigned long", td.Underlying)
	}
}

func TestTypedefAnonymousStruct(t *testing.T) {
	res := parseSrc(t, "typedef struct { int x; int y; } Point;")

	if len(res.Types) != 1 {
		t.Fatalf("got %d types, want 1: %+v", len(res.Types), res.Types)
	}
	if res.Types[0].Name != "Point" {
		t.Errorf("name = %q, want Point", res.Types[0].Name)
	}
}

func TestBareAnonymousStructSkipped(t *testing.T) {
	res := parseSrc(t, "struct { int x; };\nint f(void);")

	if len(res.Types) != 0 {
		t.Errorf("anonymous struct with no typedef should not be counted: %+v", res.Types)
	}
	if len(res.Functions) != 1 {
		t.Errorf("following declaration must still parse")
	}
}

func TestNamedStructDefinition(t *testing.T) {
	res := parseSrc(t, "struct Node { struct Node *next; int value; };")

	if len(res.Types) != 1 {
		t.Fatalf("got %d types, want 1", len(res.Types))
	}
	if res.Types[0].Name != "Node" || res.Types[0].Kind != StructDecl {
		t.Errorf("decl = %+v", res.Types[0])
	}
}

func TestEnumAndUnionDefinitions(t *testing.T) {
	res := parseSrc(t, "enum Color { RED, GREEN, BLUE };\nunion Value { int i; float f; };")

	if len(res.Types) != 2 {
		t.Fatalf("got %d types, want 2: %+v", len(res.Types), res.Types)
	}
	if res.Types[0].Kind != EnumDecl || res.Types[1].Kind != UnionDecl {
		t.Errorf("kinds = %s, %s", res.Types[0].Kind, res.Types[1].Kind)
	}
}

func TestTypedefNameUsableAsType(t *testing.T) {
	res := parseSrc(t, "typedef unsigned int uint32;\nuint32 checksum(uint32 seed);")

	if len(res.Functions) != 1 {
		t.Fatalf("got %d functions, want 1: %+v", len(res.Functions), res.Functions)
	}
	fn := res.Functions[0]
	if named, ok := fn.Return.(Named); !ok || named.Name != "uint32" {
		t.Errorf("return = %v, want uint32", fn.Return)
	}
}

func TestStructReturnType(t *testing.T) {
	res := parseSrc(t, "struct Point make_point(int x, int y);")

	fn := res.Functions[0]
	if named, ok := fn.Return.(Named); !ok || named.Tag != "struct" || named.Name != "Point" {
		t.Errorf("return = %v, want struct Point", fn.Return)
	}
	if got := fn.Signature(); got != "struct Point(int x, int y)" {
		t.Errorf("signature = %q", got)
	}
}

func TestMalformedDeclarationRecovery(t *testing.T) {
	src := "int ok_before(void);\nint broken(((;\nint ok_after(void);"
	res := parseSrc(t, src)

	names := make([]string, 0, len(res.Functions))
	for _, fn := range res.Functions {
		names = append(names, fn.Name)
	}
	if len(names) != 2 || names[0] != "ok_before" || names[1] != "ok_after" {
		t.Errorf("functions = %v, want [ok_before ok_after]", names)
	}
	if len(res.Diagnostics) == 0 {
		t.Error("skipped declaration must produce a diagnostic")
	}
}

func TestDuplicatePrototypesCountedSeparately(t *testing.T) {
	res := parseSrc(t, "int f(void);\nint f(void);")

	if len(res.Functions) != 2 {
		t.Errorf("got %d functions, want 2 (no duplicate suppression)", len(res.Functions))
	}
}

func TestFunctionReturningPointer(t *testing.T) {
	res := parseSrc(t, "char *strdup2(const char *s);")

	fn := res.Functions[0]
	if _, ok := fn.Return.(Pointer); !ok {
		t.Errorf("return = %T, want pointer", fn.Return)
	}
	if got := fn.Signature(); got != "char*(char* s)" {
		t.Errorf("signature = %q", got)
	}
}

func TestVariableDeclarationsIgnored(t *testing.T) {
	res := parseSrc(t, "extern int errno_value;\nstatic const char *name = \"x\";")

	if len(res.Functions) != 0 || len(res.Types) != 0 {
		t.Errorf("variables are not functions or types: %+v %+v", res.Functions, res.Types)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", res.Diagnostics)
	}
}

func TestFunctionPointerTypedefRendering(t *testing.T) {
	res := parseSrc(t, "typedef void (*handler_t)(int sig);")

	td := res.Types[0]
	if got := td.Underlying.String(); got != "void (*)(int)" {
		t.Errorf("rendered = %q, want %q", got, "void (*)(int)")
	}
}

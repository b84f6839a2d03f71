package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/delbato/pragmatic-script/ast"
	"github.com/delbato/pragmatic-script/errz"
)

func parseOne(t *testing.T, input string) ast.Decl {
	t.Helper()
	program, err := Parse(context.Background(), input)
	assert.Nil(t, err)
	assert.Len(t, program.Decls, 1)
	return program.Decls[0]
}

func TestFunctionDecl(t *testing.T) {
	decl := parseOne(t, `
	fn: add(a: int, b: int) ~ int {
		return a + b;
	}`)
	fn, ok := decl.(*ast.Function)
	assert.True(t, ok)
	assert.Equal(t, "add", fn.Name.Name)
	assert.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name.Name)
	assert.Equal(t, "int", fn.Params[0].Type.Name)
	assert.Equal(t, "b", fn.Params[1].Name.Name)
	assert.NotNil(t, fn.Return)
	assert.Equal(t, "int", fn.Return.Name)
	assert.Len(t, fn.Body.Stmts, 1)

	ret, ok := fn.Body.Stmts[0].(*ast.Return)
	assert.True(t, ok)
	infix, ok := ret.Value.(*ast.Infix)
	assert.True(t, ok)
	assert.Equal(t, "+", infix.Op)
}

func TestFunctionWithoutReturnType(t *testing.T) {
	decl := parseOne(t, `fn: noop() {}`)
	fn, ok := decl.(*ast.Function)
	assert.True(t, ok)
	assert.Equal(t, "noop", fn.Name.Name)
	assert.Len(t, fn.Params, 0)
	assert.Nil(t, fn.Return)
}

func TestModuleDecl(t *testing.T) {
	decl := parseOne(t, `
	mod: math {
		fn: square(x: int) ~ int {
			return x * x;
		}
	}`)
	mod, ok := decl.(*ast.Module)
	assert.True(t, ok)
	assert.Equal(t, "math", mod.Name.Name)
	assert.Len(t, mod.Decls, 1)
}

func TestNestedModules(t *testing.T) {
	decl := parseOne(t, `
	mod: outer {
		mod: inner {
			fn: f() {}
		}
	}`)
	outer, ok := decl.(*ast.Module)
	assert.True(t, ok)
	inner, ok := outer.Decls[0].(*ast.Module)
	assert.True(t, ok)
	assert.Equal(t, "inner", inner.Name.Name)
	assert.Len(t, inner.Decls, 1)
}

func TestContainerDecl(t *testing.T) {
	decl := parseOne(t, `
	cont: Vector {
		x: float;
		y: float;
	}`)
	cont, ok := decl.(*ast.Container)
	assert.True(t, ok)
	assert.Equal(t, "Vector", cont.Name.Name)
	assert.Len(t, cont.Fields, 2)
	assert.Equal(t, "x", cont.Fields[0].Name.Name)
	assert.Equal(t, "float", cont.Fields[0].Type.Name)
	assert.Equal(t, "y", cont.Fields[1].Name.Name)
}

func TestImplDecl(t *testing.T) {
	decl := parseOne(t, `
	impl: Vector {
		fn: length(self: Vector) ~ float {
			return sqrt(self.x * self.x + self.y * self.y);
		}
	}`)
	impl, ok := decl.(*ast.Impl)
	assert.True(t, ok)
	assert.Equal(t, "Vector", impl.Name.Name)
	assert.Len(t, impl.Funcs, 1)
	assert.Equal(t, "length", impl.Funcs[0].Name.Name)
}

func TestImportDecl(t *testing.T) {
	decl := parseOne(t, `import vec::math::Vector = Vec;`)
	imp, ok := decl.(*ast.Import)
	assert.True(t, ok)
	assert.Len(t, imp.Path, 3)
	assert.Equal(t, "vec", imp.Path[0].Name)
	assert.Equal(t, "math", imp.Path[1].Name)
	assert.Equal(t, "Vector", imp.Path[2].Name)
	assert.NotNil(t, imp.Alias)
	assert.Equal(t, "Vec", imp.Alias.Name)
	assert.Equal(t, "Vec", imp.LocalName())
}

func TestImportWithoutAlias(t *testing.T) {
	decl := parseOne(t, `import ext::geti;`)
	imp, ok := decl.(*ast.Import)
	assert.True(t, ok)
	assert.Len(t, imp.Path, 2)
	assert.Nil(t, imp.Alias)
	assert.Equal(t, "geti", imp.LocalName())
}

func TestVarStatement(t *testing.T) {
	decl := parseOne(t, `
	fn: main() {
		var count: int = 4 + 1;
	}`)
	fn := decl.(*ast.Function)
	stmt, ok := fn.Body.Stmts[0].(*ast.Var)
	assert.True(t, ok)
	assert.Equal(t, "count", stmt.Name.Name)
	assert.Equal(t, "int", stmt.Type.Name)
	infix, ok := stmt.Value.(*ast.Infix)
	assert.True(t, ok)
	assert.Equal(t, "+", infix.Op)
}

func TestIfElse(t *testing.T) {
	decl := parseOne(t, `
	fn: main() {
		if x < 10 {
			x = x + 1;
		} else {
			x = 0;
		}
	}`)
	fn := decl.(*ast.Function)
	stmt, ok := fn.Body.Stmts[0].(*ast.If)
	assert.True(t, ok)
	cond, ok := stmt.Cond.(*ast.Infix)
	assert.True(t, ok)
	assert.Equal(t, "<", cond.Op)
	assert.Len(t, stmt.Body.Stmts, 1)
	assert.NotNil(t, stmt.Else)
	assert.Len(t, stmt.Else.Stmts, 1)
}

func TestLoops(t *testing.T) {
	decl := parseOne(t, `
	fn: main() {
		while i < 10 {
			i = i + 1;
		}
		loop {
			break;
		}
		for item in items {
			continue;
		}
	}`)
	fn := decl.(*ast.Function)
	assert.Len(t, fn.Body.Stmts, 3)

	while, ok := fn.Body.Stmts[0].(*ast.While)
	assert.True(t, ok)
	assert.Len(t, while.Body.Stmts, 1)

	loop, ok := fn.Body.Stmts[1].(*ast.Loop)
	assert.True(t, ok)
	_, ok = loop.Body.Stmts[0].(*ast.Break)
	assert.True(t, ok)

	forStmt, ok := fn.Body.Stmts[2].(*ast.For)
	assert.True(t, ok)
	assert.Equal(t, "item", forStmt.Name.Name)
	_, ok = forStmt.Body.Stmts[0].(*ast.Continue)
	assert.True(t, ok)
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3;", "(1 + (2 * 3))"},
		{"(1 + 2) * 3;", "((1 + 2) * 3)"},
		{"-a * b;", "((-a) * b)"},
		{"!true == false;", "((!true) == false)"},
		{"a + b < c * d;", "((a + b) < (c * d))"},
		{"a == b != c;", "((a == b) != c)"},
		{"1 <= 2 == true;", "((1 <= 2) == true)"},
		{"a.b + c;", "(a.b + c)"},
		{"f(a) * 2;", "(f(a) * 2)"},
	}
	for _, tt := range tests {
		decl := parseOne(t, "fn: main() { "+tt.input+" }")
		fn := decl.(*ast.Function)
		stmt, ok := fn.Body.Stmts[0].(*ast.ExprStmt)
		assert.True(t, ok)
		assert.Equal(t, tt.expected, stmt.X.String(), tt.input)
	}
}

func TestCallExpression(t *testing.T) {
	decl := parseOne(t, `
	fn: main() {
		add(1, 2 * 3, other(4));
	}`)
	fn := decl.(*ast.Function)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	call, ok := stmt.X.(*ast.Call)
	assert.True(t, ok)
	ident, ok := call.Fun.(*ast.Ident)
	assert.True(t, ok)
	assert.Equal(t, "add", ident.Name)
	assert.Len(t, call.Args, 3)
}

func TestMethodCall(t *testing.T) {
	decl := parseOne(t, `
	fn: main() {
		v.length();
	}`)
	fn := decl.(*ast.Function)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	call, ok := stmt.X.(*ast.Call)
	assert.True(t, ok)
	field, ok := call.Fun.(*ast.GetField)
	assert.True(t, ok)
	assert.Equal(t, "length", field.Name.Name)
}

func TestStructLiteral(t *testing.T) {
	decl := parseOne(t, `
	fn: main() {
		var v: Vector = Vector {
			x: 1.5;
			y: 2.5;
		};
	}`)
	fn := decl.(*ast.Function)
	stmt := fn.Body.Stmts[0].(*ast.Var)
	lit, ok := stmt.Value.(*ast.StructLit)
	assert.True(t, ok)
	assert.Equal(t, "Vector", lit.TypeName.Name)
	assert.Len(t, lit.Fields, 2)
	assert.Equal(t, "x", lit.Fields[0].Name.Name)
	assert.Equal(t, "y", lit.Fields[1].Name.Name)
}

func TestStructLiteralCommaSeparators(t *testing.T) {
	decl := parseOne(t, `
	fn: main() {
		var v: Vector = Vector { x: 3.0, y: 4.0 };
	}`)
	fn := decl.(*ast.Function)
	stmt := fn.Body.Stmts[0].(*ast.Var)
	lit, ok := stmt.Value.(*ast.StructLit)
	assert.True(t, ok)
	assert.Len(t, lit.Fields, 2)
	assert.Equal(t, "x", lit.Fields[0].Name.Name)
	assert.Equal(t, "y", lit.Fields[1].Name.Name)
}

func TestStructLiteralSuppressedInCondition(t *testing.T) {
	// `x {` after if must open the body, not a struct literal
	decl := parseOne(t, `
	fn: main() {
		if ready {
			go();
		}
	}`)
	fn := decl.(*ast.Function)
	stmt, ok := fn.Body.Stmts[0].(*ast.If)
	assert.True(t, ok)
	_, ok = stmt.Cond.(*ast.Ident)
	assert.True(t, ok)
}

func TestStructLiteralInParenthesizedCondition(t *testing.T) {
	decl := parseOne(t, `
	fn: main() {
		if (Point { x: 1; }).x < 2 {
			go();
		}
	}`)
	fn := decl.(*ast.Function)
	stmt, ok := fn.Body.Stmts[0].(*ast.If)
	assert.True(t, ok)
	cond, ok := stmt.Cond.(*ast.Infix)
	assert.True(t, ok)
	field, ok := cond.X.(*ast.GetField)
	assert.True(t, ok)
	_, ok = field.X.(*ast.StructLit)
	assert.True(t, ok)
}

func TestFieldAssignment(t *testing.T) {
	decl := parseOne(t, `
	fn: main() {
		v.x = 3.0;
	}`)
	fn := decl.(*ast.Function)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	assign, ok := stmt.X.(*ast.Assign)
	assert.True(t, ok)
	_, ok = assign.X.(*ast.GetField)
	assert.True(t, ok)
}

func TestComments(t *testing.T) {
	decl := parseOne(t, `
	# hash comment
	// line comment
	/* block
	   comment */
	fn: main() {
		return 1; # trailing
	}`)
	fn, ok := decl.(*ast.Function)
	assert.True(t, ok)
	assert.Equal(t, "main", fn.Name.Name)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing colon after fn", `fn main() {}`},
		{"missing semicolon", `fn: main() { return 1 }`},
		{"unterminated block", `fn: main() {`},
		{"missing var type", `fn: main() { var x = 1; }`},
		{"missing var initializer", `fn: main() { var x: int; }`},
		{"stray token at top level", `return 1;`},
		{"invalid assignment target", `fn: main() { 1 = 2; }`},
		{"else without block", `fn: main() { if x { } else return; }`},
		{"non-function in impl", `impl: Vector { var x: int = 1; }`},
		{"import without semicolon", `import ext::geti`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)
			assert.NotNil(t, err)
			var structured *errz.StructuredError
			assert.True(t, errors.As(err, &structured))
			assert.Equal(t, errz.ErrParse, structured.Kind)
		})
	}
}

func TestErrorLocation(t *testing.T) {
	_, err := Parse(context.Background(),
		"fn: main() {\n\tvar x: int 5;\n}",
		WithFilename("main.pgs"))
	assert.NotNil(t, err)
	var structured *errz.StructuredError
	assert.True(t, errors.As(err, &structured))
	assert.Equal(t, "main.pgs", structured.Location.Filename)
	assert.Equal(t, 2, structured.Location.Line)
}

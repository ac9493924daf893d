package parser_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimix/internal/ast"
	"optimix/internal/parser"
	"optimix/internal/testkit"
)

func TestParseSource_Programs(t *testing.T) {
	for _, p := range testkit.Programs() {
		t.Run(p.Name, func(t *testing.T) {
			fn, err := parser.ParseSource(p.Name+".optx", p.Source)
			require.NoError(t, err)
			assert.Equal(t, p.AST().String(), fn.String())
		})
	}
}

func TestParseSource_Precedence(t *testing.T) {
	fn, err := parser.ParseSource("t.optx", "int main() { return 1 < 2 + 3 * (4 - 5); }")
	require.NoError(t, err)
	want := ast.NewFunc("main", ast.Return(
		ast.Bin("<", ast.Int(1),
			ast.Bin("+", ast.Int(2),
				ast.Bin("*", ast.Int(3), ast.Bin("-", ast.Int(4), ast.Int(5))))),
	))
	assert.Equal(t, want.String(), fn.String())
}

func TestParseSource_LeftAssociative(t *testing.T) {
	fn, err := parser.ParseSource("t.optx", "int main() { return 10 - 3 - 2; }")
	require.NoError(t, err)
	want := ast.NewFunc("main", ast.Return(
		ast.Bin("-", ast.Bin("-", ast.Int(10), ast.Int(3)), ast.Int(2)),
	))
	assert.Equal(t, want.String(), fn.String())
}

func TestParseSource_CommentsAndBareReturn(t *testing.T) {
	src := `// leading comment
int start() {
  // inside
  print(a[i + 1]); // trailing
  return;
}`
	fn, err := parser.ParseSource("t.optx", src)
	require.NoError(t, err)
	assert.Equal(t, "start", fn.Name)
	want := ast.NewFunc("start",
		ast.Print(ast.Index("a", ast.Bin("+", ast.Var("i"), ast.Int(1)))),
		ast.Return(nil),
	)
	assert.Equal(t, want.String(), fn.String())
}

func TestParseSource_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"missing semicolon", "int main() {\n  return 1\n}", 3},
		{"missing semicolon in loop body", "int main() {\n  while (1) {\n    x = 1\n  }\n}", 4},
		{"dangling operator", "int main() {\n  int x = 1 +;\n}", 2},
		{"keyword as name", "int main() {\n  int while = 1;\n}", 2},
		{"array with init", "int main() {\n  int a[2] = 1;\n}", 2},
		{"unknown char", "int main() { return 1 % 2; }", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ParseSource("bad.optx", tt.src)
			var pe *parser.Error
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.line, pe.Pos.Line)
		})
	}
}

func TestParseStatements(t *testing.T) {
	stmts, err := parser.ParseStatements("repl", "int x = 2; x = x * 3; print(x);")
	require.NoError(t, err)
	require.Len(t, stmts, 3)
	assert.Equal(t, ast.StmtVarDecl, stmts[0].Kind)
	assert.Equal(t, ast.StmtAssign, stmts[1].Kind)
	assert.Equal(t, ast.StmtPrint, stmts[2].Kind)
}

func TestFormatError(t *testing.T) {
	src := "int main() {\n  return 1\n}"
	_, err := parser.ParseSource("bad.optx", src)
	require.Error(t, err)

	var buf bytes.Buffer
	parser.FormatError(&buf, src, err, false)
	out := buf.String()
	assert.Contains(t, out, "syntax error in bad.optx at line 3, column 1:")
	assert.Contains(t, out, "\n}\n^\n")
}

func TestFormatError_Plain(t *testing.T) {
	var buf bytes.Buffer
	parser.FormatError(&buf, "", errors.New("boom"), false)
	assert.Equal(t, "error: boom\n", buf.String())
}

package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"optimix/internal/ast"
)

func TestDump_WhileLoop(t *testing.T) {
	fn := ast.NewFunc("main",
		ast.Decl("x", ast.Int(0)),
		ast.While(ast.Bin("<", ast.Var("x"), ast.Int(3)),
			ast.Assign("x", ast.Bin("+", ast.Var("x"), ast.Int(1))),
		),
		ast.Return(ast.Var("x")),
	)

	want := `Func(main)
  VarDecl(x)
    Int(0)
  While
    Binary(<)
      Var(x)
      Int(3)
    Assign(x)
      Binary(+)
        Var(x)
        Int(1)
  Return
    Var(x)
`
	assert.Equal(t, want, fn.String())
}

func TestDump_ArraysAndBareReturn(t *testing.T) {
	fn := ast.NewFunc("main",
		ast.ArrayDecl("a", 3),
		ast.IndexAssign("a", ast.Int(1), ast.Int(7)),
		ast.Print(ast.Index("a", ast.Int(1))),
		ast.Decl("y", nil),
		ast.Return(nil),
	)

	want := `Func(main)
  ArrayDecl(a, 3)
  IndexAssign(a)
    Int(1)
    Int(7)
  Print
    Index(a)
      Int(1)
  VarDecl(y)
  Return
`
	assert.Equal(t, want, fn.String())
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "binary", ast.ExprBinary.String())
	assert.Equal(t, "index-assign", ast.StmtIndexAssign.String())
	assert.Equal(t, "unknown", ast.StmtKind(99).String())
}

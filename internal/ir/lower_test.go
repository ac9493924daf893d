package ir_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimix/internal/ast"
	"optimix/internal/ir"
)

func mustBuild(t *testing.T, fn *ast.Func) *ir.Func {
	t.Helper()
	f, err := ir.Build(fn)
	require.NoError(t, err)
	require.NoError(t, ir.Validate(f))
	return f
}

func TestBuild_PrecedenceTemps(t *testing.T) {
	// return 1 + 2 * 3;
	f := mustBuild(t, ast.NewFunc("main",
		ast.Return(ast.Bin("+", ast.Int(1), ast.Bin("*", ast.Int(2), ast.Int(3)))),
	))

	want := "function main:\n" +
		"entry:\n" +
		"  MUL t0, 2, 3\n" +
		"  ADD t1, 1, t0\n" +
		"  RET t1\n"
	assert.Equal(t, want, f.String())
}

func TestBuild_WhileLoop(t *testing.T) {
	f := mustBuild(t, ast.NewFunc("main",
		ast.Decl("x", ast.Int(0)),
		ast.While(ast.Bin("<", ast.Var("x"), ast.Int(3)),
			ast.Assign("x", ast.Bin("+", ast.Var("x"), ast.Int(1))),
		),
		ast.Return(ast.Var("x")),
	))

	want := "function main:\n" +
		"entry:\n" +
		"  MOV x, 0\n" +
		"  JMP loop_L0\n" +
		"loop_L0:\n" +
		"  LT t0, x, 3\n" +
		"  JMP_IF loop_body_L1, t0\n" +
		"  JMP loop_exit_L2\n" +
		"loop_body_L1:\n" +
		"  ADD t1, x, 1\n" +
		"  MOV x, t1\n" +
		"  JMP loop_L0\n" +
		"loop_exit_L2:\n" +
		"  RET x\n"
	assert.Equal(t, want, f.String())
}

func TestBuild_StraightLineCounts(t *testing.T) {
	// One instruction per simple statement plus one per binary operator.
	tests := []struct {
		name  string
		body  []*ast.Stmt
		count int
	}{
		{"bare return", []*ast.Stmt{ast.Return(nil)}, 1},
		{"decl without init", []*ast.Stmt{ast.Decl("x", nil), ast.Return(ast.Var("x"))}, 1},
		{"decl and print", []*ast.Stmt{
			ast.Decl("x", ast.Int(4)),
			ast.Print(ast.Bin("*", ast.Var("x"), ast.Var("x"))),
			ast.Return(ast.Int(0)),
		}, 4},
		{"arrays", []*ast.Stmt{
			ast.ArrayDecl("a", 3),
			ast.IndexAssign("a", ast.Int(0), ast.Bin("+", ast.Int(1), ast.Int(2))),
			ast.Return(ast.Index("a", ast.Int(0))),
		}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := mustBuild(t, ast.NewFunc("main", tt.body...))
			require.Len(t, f.Blocks, 1)
			assert.Equal(t, ir.EntryLabel, f.Blocks[0].Label)
			assert.Equal(t, tt.count, f.InstrCount())
		})
	}
}

func TestBuild_ArrayInstrs(t *testing.T) {
	f := mustBuild(t, ast.NewFunc("main",
		ast.ArrayDecl("a", 3),
		ast.IndexAssign("a", ast.Int(1), ast.Int(5)),
		ast.Print(ast.Index("a", ast.Int(1))),
		ast.Return(nil),
	))
	want := "function main:\n" +
		"entry:\n" +
		"  ALLOCA a, 3\n" +
		"  STORE a, 1, 5\n" +
		"  LOAD t0, a, 1\n" +
		"  PRINT t0\n" +
		"  RET 0\n"
	assert.Equal(t, want, f.String())
}

func TestBuild_LoopAddsThreeBlocks(t *testing.T) {
	loop := func() *ast.Stmt {
		return ast.While(ast.Bin("!=", ast.Var("i"), ast.Int(0)), ast.Assign("i", ast.Int(0)))
	}
	f := mustBuild(t, ast.NewFunc("main", loop(), loop(), ast.Return(nil)))
	require.Len(t, f.Blocks, 7)
	labels := make([]string, 0, len(f.Blocks))
	for i := range f.Blocks {
		labels = append(labels, f.Blocks[i].Label)
	}
	assert.Equal(t, []string{
		"entry",
		"loop_L0", "loop_body_L1", "loop_exit_L2",
		"loop_L3", "loop_body_L4", "loop_exit_L5",
	}, labels)
}

func TestBuild_SealsNestedExit(t *testing.T) {
	// The outer exit block is created before the inner loop blocks, so it
	// must not fall through into them.
	f := mustBuild(t, ast.NewFunc("main",
		ast.Decl("i", ast.Int(0)),
		ast.While(ast.Bin("<", ast.Var("i"), ast.Int(2)),
			ast.While(ast.Bin("<", ast.Var("i"), ast.Int(1)),
				ast.Assign("i", ast.Bin("+", ast.Var("i"), ast.Int(1))),
			),
			ast.Assign("i", ast.Bin("+", ast.Var("i"), ast.Int(1))),
		),
	))
	exitID, ok := f.Lookup("loop_exit_L2")
	require.True(t, ok)
	exit := f.Block(exitID)
	require.NotEqual(t, ir.NoBlockID, f.Next(exitID))
	require.Len(t, exit.Instrs, 1)
	assert.Equal(t, ir.Ret(ir.Const(0)), exit.Instrs[0])
}

func TestBuild_LoopFreeIsNotSealed(t *testing.T) {
	f := mustBuild(t, ast.NewFunc("main", ast.Print(ast.Int(1))))
	assert.Equal(t, 1, f.InstrCount())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		fn   *ast.Func
		kind string
	}{
		{"bad operator", ast.NewFunc("main", ast.Return(ast.Bin("%", ast.Int(1), ast.Int(2)))), "binary"},
		{"negative size", ast.NewFunc("main", ast.ArrayDecl("a", -1)), "array-decl"},
		{"assign without value", ast.NewFunc("main", ast.Assign("x", nil)), "assign"},
		{"while without cond", ast.NewFunc("main", ast.While(nil)), "while"},
		{"print without value", ast.NewFunc("main", ast.Print(nil)), "expr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ir.Build(tt.fn)
			var be *ir.BuildError
			require.True(t, errors.As(err, &be), "got %v", err)
			assert.Equal(t, tt.kind, be.Kind)
		})
	}
}

func TestBuild_CountersArePerBuild(t *testing.T) {
	fn := ast.NewFunc("main",
		ast.While(ast.Bin("<", ast.Var("x"), ast.Int(1)), ast.Assign("x", ast.Int(1))),
	)
	a := mustBuild(t, fn)
	b := mustBuild(t, fn)
	assert.Equal(t, a.String(), b.String())
}

package ssa_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimix/internal/ast"
	"optimix/internal/ir"
	"optimix/internal/ssa"
)

func build(t *testing.T, body ...*ast.Stmt) *ir.Func {
	t.Helper()
	f, err := ir.Build(ast.NewFunc("main", body...))
	require.NoError(t, err)
	return f
}

func countLoop() []*ast.Stmt {
	return []*ast.Stmt{
		ast.Decl("x", ast.Int(0)),
		ast.While(ast.Bin("<", ast.Var("x"), ast.Int(3)),
			ast.Assign("x", ast.Bin("+", ast.Var("x"), ast.Int(1))),
		),
		ast.Return(ast.Var("x")),
	}
}

func TestRun_Loop(t *testing.T) {
	f := build(t, countLoop()...)
	st, err := ssa.Run(f)
	require.NoError(t, err)
	require.NoError(t, ir.Validate(f))

	want := "function main:\n" +
		"entry:\n" +
		"  MOV x_1, 0\n" +
		"  JMP loop_L0\n" +
		"loop_L0:\n" +
		"  PHI x_2, x_1, entry, x_3, loop_body_L1\n" +
		"  LT t0_1, x_2, 3\n" +
		"  JMP_IF loop_body_L1, t0_1\n" +
		"  JMP loop_exit_L2\n" +
		"loop_body_L1:\n" +
		"  ADD t1_1, x_2, 1\n" +
		"  MOV x_3, t1_1\n" +
		"  JMP loop_L0\n" +
		"loop_exit_L2:\n" +
		"  RET x_2\n"
	assert.Equal(t, want, f.String())
	assert.Equal(t, ssa.Stats{Blocks: 4, Edges: 4, Phis: 1, Defs: 5}, st)
}

func TestRun_Idempotent(t *testing.T) {
	f := build(t, countLoop()...)
	_, err := ssa.Run(f)
	require.NoError(t, err)
	once := f.String()
	names := baseNames(f)

	_, err = ssa.Run(f)
	require.NoError(t, err)
	assert.Equal(t, once, f.String())
	assert.Equal(t, names, baseNames(f))
}

func TestRun_StraightLineHasNoPhis(t *testing.T) {
	f := build(t,
		ast.Decl("x", ast.Int(1)),
		ast.Assign("x", ast.Bin("+", ast.Var("x"), ast.Int(1))),
		ast.Return(ast.Var("x")),
	)
	st, err := ssa.Run(f)
	require.NoError(t, err)
	assert.Zero(t, st.Phis)
	want := "function main:\n" +
		"entry:\n" +
		"  MOV x_1, 1\n" +
		"  ADD t0_1, x_1, 1\n" +
		"  MOV x_2, t0_1\n" +
		"  RET x_2\n"
	assert.Equal(t, want, f.String())
}

func TestRun_UndefinedUseIsVersionZero(t *testing.T) {
	f := build(t, ast.Decl("y", nil), ast.Return(ast.Var("y")))
	_, err := ssa.Run(f)
	require.NoError(t, err)
	assert.Equal(t, ir.Var("y"), f.Blocks[0].Instrs[0].Args[0])
}

func TestRun_ArraysAreNotVersioned(t *testing.T) {
	f := build(t,
		ast.ArrayDecl("a", 2),
		ast.IndexAssign("a", ast.Int(0), ast.Int(7)),
		ast.Return(ast.Index("a", ast.Int(0))),
	)
	_, err := ssa.Run(f)
	require.NoError(t, err)
	want := "function main:\n" +
		"entry:\n" +
		"  ALLOCA a, 2\n" +
		"  STORE a, 0, 7\n" +
		"  LOAD t0_1, a, 0\n" +
		"  RET t0_1\n"
	assert.Equal(t, want, f.String())
}

func TestRun_UnknownLabel(t *testing.T) {
	f := ir.NewFunc("main")
	_, err := f.NewBlock(ir.EntryLabel)
	require.NoError(t, err)
	f.Blocks[0].Append(ir.Jmp("nowhere"))

	_, err = ssa.Run(f)
	var le *ssa.LabelError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "nowhere", le.Label)
	assert.Equal(t, ir.EntryLabel, le.Block)
}

func TestBuildCFG_EdgesAndFallthrough(t *testing.T) {
	f := ir.NewFunc("main")
	for _, l := range []string{"entry", "a", "b"} {
		_, err := f.NewBlock(l)
		require.NoError(t, err)
	}
	// entry jumps to b twice and otherwise falls through to a.
	f.Blocks[0].Append(ir.JmpIf("b", ir.Const(1)))
	f.Blocks[0].Append(ir.JmpIf("b", ir.Const(0)))
	f.Blocks[1].Append(ir.Print(ir.Const(1)))
	f.Blocks[2].Append(ir.Ret(ir.Const(0)))

	require.NoError(t, ssa.BuildCFG(f))
	require.NoError(t, ssa.BuildCFG(f))

	assert.Equal(t, []ir.BlockID{2, 1}, f.Blocks[0].Succs)
	assert.Equal(t, []ir.BlockID{0}, f.Blocks[1].Preds)
	assert.Equal(t, []ir.BlockID{2}, f.Blocks[1].Succs)
	assert.Equal(t, []ir.BlockID{0, 1}, f.Blocks[2].Preds)
	assert.Empty(t, f.Blocks[2].Succs)
	assert.Equal(t, 3, ssa.EdgeCount(f))
}

func TestComputeDominance_Diamond(t *testing.T) {
	// entry -> then | else -> join
	f := ir.NewFunc("main")
	for _, l := range []string{"entry", "then", "else", "join", "dead"} {
		_, err := f.NewBlock(l)
		require.NoError(t, err)
	}
	f.Blocks[0].Append(ir.JmpIf("then", ir.Var("c")))
	f.Blocks[0].Append(ir.Jmp("else"))
	f.Blocks[1].Append(ir.Mov(ir.Var("x"), ir.Const(1)))
	f.Blocks[1].Append(ir.Jmp("join"))
	f.Blocks[2].Append(ir.Mov(ir.Var("x"), ir.Const(2)))
	f.Blocks[2].Append(ir.Jmp("join"))
	f.Blocks[3].Append(ir.Ret(ir.Var("x")))
	f.Blocks[4].Append(ir.Ret(ir.Const(9)))
	require.NoError(t, ssa.BuildCFG(f))

	d := ssa.ComputeDominance(f)
	assert.Equal(t, ir.BlockID(0), d.RPO[0])
	assert.Len(t, d.RPO, 4)
	assert.Equal(t, []ir.BlockID{ir.NoBlockID, 0, 0, 0, ir.NoBlockID}, d.IDom)
	assert.Equal(t, []ir.BlockID{3}, d.Frontier[1])
	assert.Equal(t, []ir.BlockID{3}, d.Frontier[2])
	assert.Empty(t, d.Frontier[0])
	assert.True(t, d.Dominates(0, 3))
	assert.False(t, d.Dominates(1, 3))
	assert.False(t, d.Reachable(4))
	assert.False(t, d.Dominates(0, 4))

	st, err := ssa.Run(f)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Phis)
	assert.Equal(t, 1, st.Unreachable)
	assert.Equal(t, "PHI x_3, x_1, then, x_2, else", f.Blocks[3].Instrs[0].String())
	assert.Equal(t, "RET x_3", f.Blocks[3].Instrs[1].String())
}

func TestRun_NestedLoops(t *testing.T) {
	f := build(t,
		ast.Decl("i", ast.Int(0)),
		ast.Decl("s", ast.Int(0)),
		ast.While(ast.Bin("<", ast.Var("i"), ast.Int(3)),
			ast.Decl("j", ast.Int(0)),
			ast.While(ast.Bin("<", ast.Var("j"), ast.Int(2)),
				ast.Assign("s", ast.Bin("+", ast.Var("s"), ast.Int(1))),
				ast.Assign("j", ast.Bin("+", ast.Var("j"), ast.Int(1))),
			),
			ast.Assign("i", ast.Bin("+", ast.Var("i"), ast.Int(1))),
		),
		ast.Return(ast.Var("s")),
	)
	st, err := ssa.Run(f)
	require.NoError(t, err)
	require.NoError(t, ir.Validate(f))
	assertSingleDefs(t, f)

	// j is reset in the outer body before any read, so the outer header
	// carries no PHI for it
	assert.Equal(t, []string{"i", "s"}, phiNames(t, f, "loop_L0"))
	assert.Equal(t, []string{"j", "s"}, phiNames(t, f, "loop_L3"))
	assert.Equal(t, 4, st.Phis)
}

func phiNames(t *testing.T, f *ir.Func, label string) []string {
	t.Helper()
	id, ok := f.Lookup(label)
	require.True(t, ok, label)
	bb := f.Block(id)
	var names []string
	for _, in := range bb.Instrs[:bb.PhiCount()] {
		names = append(names, in.Result.Name)
	}
	slices.Sort(names)
	return names
}

func baseNames(f *ir.Func) []string {
	var names []string
	for i := range f.Blocks {
		for _, in := range f.Blocks[i].Instrs {
			if in.Result.IsVar() {
				names = append(names, in.Result.Name)
			}
			for _, a := range in.Args {
				if a.IsVar() {
					names = append(names, a.Name)
				}
			}
		}
	}
	slices.Sort(names)
	return names
}

func assertSingleDefs(t *testing.T, f *ir.Func) {
	t.Helper()
	defs := make(map[ir.Operand]int)
	for i := range f.Blocks {
		for _, in := range f.Blocks[i].Instrs {
			if in.Op.Defines() {
				defs[in.Result]++
			}
		}
	}
	for op, n := range defs {
		assert.Equal(t, 1, n, "%s defined %d times", op, n)
		assert.Positive(t, op.Version, "%s has no version", op)
	}
}

package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimix/internal/ir"
)

func newFunc(t *testing.T, labels ...string) *ir.Func {
	t.Helper()
	f := ir.NewFunc("main")
	for _, l := range labels {
		_, err := f.NewBlock(l)
		require.NoError(t, err)
	}
	return f
}

func TestValidate_OK(t *testing.T) {
	f := newFunc(t, "entry", "next")
	f.Blocks[0].Append(ir.Mov(ir.Var("x"), ir.Const(1)))
	f.Blocks[0].Append(ir.Jmp("next"))
	f.Blocks[1].Append(ir.Phi(ir.VarV("x", 2), ir.PhiEdge{Value: ir.VarV("x", 1), Pred: "entry"}))
	f.Blocks[1].Append(ir.Ret(ir.VarV("x", 2)))
	assert.NoError(t, ir.Validate(f))
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *ir.Func)
		want  string
	}{
		{
			name: "unknown jump target",
			setup: func(f *ir.Func) {
				f.Blocks[0].Append(ir.Jmp("nowhere"))
			},
			want: `target "nowhere" does not exist`,
		},
		{
			name: "phi after instruction",
			setup: func(f *ir.Func) {
				f.Blocks[0].Append(ir.Print(ir.Const(1)))
				f.Blocks[0].Append(ir.Phi(ir.Var("x"), ir.PhiEdge{Value: ir.Const(1), Pred: "entry"}))
			},
			want: "PHI after non-PHI instruction",
		},
		{
			name: "missing result",
			setup: func(f *ir.Func) {
				f.Blocks[0].Append(ir.Instr{Op: ir.OpAdd, Args: []ir.Operand{ir.Const(1), ir.Const(2)}})
			},
			want: "ADD: result must be a variable",
		},
		{
			name: "wrong arity",
			setup: func(f *ir.Func) {
				f.Blocks[0].Append(ir.Instr{Op: ir.OpRet})
			},
			want: "RET: got 0 operands, want 1",
		},
		{
			name: "label used as value",
			setup: func(f *ir.Func) {
				f.Blocks[0].Append(ir.Print(ir.Label("entry")))
			},
			want: "operand 0 is a label",
		},
		{
			name: "odd phi",
			setup: func(f *ir.Func) {
				f.Blocks[0].Append(ir.Instr{Op: ir.OpPhi, Result: ir.Var("x"), Args: []ir.Operand{ir.Const(1)}})
			},
			want: "want (value, label) pairs",
		},
		{
			name: "bad constant",
			setup: func(f *ir.Func) {
				f.Blocks[0].Append(ir.Ret(ir.Operand{Kind: ir.OperandConst, Name: "x1"}))
			},
			want: `bad constant "x1"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFunc(t, "entry")
			tt.setup(f)
			err := ir.Validate(f)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_EntryAndDuplicates(t *testing.T) {
	f := &ir.Func{Name: "main", Blocks: []ir.Block{
		{Label: "start"},
		{Label: "start"},
	}}
	err := ir.Validate(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `first block is "start"`)
	assert.Contains(t, err.Error(), `label "start" already used`)
}

func TestNewBlock_DuplicateLabel(t *testing.T) {
	f := newFunc(t, "entry")
	_, err := f.NewBlock("entry")
	assert.Error(t, err)
}

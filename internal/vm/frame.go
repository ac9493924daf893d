package vm

import "optimix/internal/ir"

// Frame is the position of the single activation: the current block, the
// instruction pointer inside it, and the block control arrived from.
type Frame struct {
	Func    *ir.Func
	BB      ir.BlockID
	IP      int
	Prev    ir.BlockID // ir.NoBlockID on entry
	Entered bool       // leading PHIs of BB already resolved
}

// NewFrame returns a frame positioned before the entry block.
func NewFrame(fn *ir.Func) Frame {
	return Frame{Func: fn, BB: 0, Prev: ir.NoBlockID}
}

// CurrentBlock returns the block being executed, or nil.
func (f *Frame) CurrentBlock() *ir.Block {
	return f.Func.Block(f.BB)
}

// CurrentInstr returns the next instruction, or nil at the end of the block.
func (f *Frame) CurrentInstr() *ir.Instr {
	b := f.CurrentBlock()
	if b == nil || f.IP >= len(b.Instrs) {
		return nil
	}
	return &b.Instrs[f.IP]
}

// AtBlockEnd reports whether every instruction of the block has run.
func (f *Frame) AtBlockEnd() bool {
	b := f.CurrentBlock()
	return b == nil || f.IP >= len(b.Instrs)
}

// PrevLabel returns the label of the block control came from.
func (f *Frame) PrevLabel() string {
	if b := f.Func.Block(f.Prev); b != nil {
		return b.Label
	}
	return ""
}

// transfer moves to block to. Its PHIs resolve on the next step.
func (f *Frame) transfer(to ir.BlockID) {
	f.Prev = f.BB
	f.BB = to
	f.IP = 0
	f.Entered = false
}

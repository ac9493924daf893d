package ssa

import (
	"fmt"

	"optimix/internal/ir"
)

// LabelError reports a jump whose label names no block of the function.
type LabelError struct {
	Func  string
	Block string
	Label string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("ssa: %s: block %s jumps to unknown label %q", e.Func, e.Block, e.Label)
}

// BuildCFG recomputes every block's Preds and Succs from jump targets.
// Blocks without JMP or RET also get an edge to the next block in creation
// order, since that is where execution continues. Calling it again yields
// the same edges.
func BuildCFG(f *ir.Func) error {
	if f == nil {
		return nil
	}
	f.Reindex()
	for i := range f.Blocks {
		f.Blocks[i].Preds = nil
		f.Blocks[i].Succs = nil
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			label, ok := bb.Instrs[j].Target()
			if !ok {
				continue
			}
			to, found := f.Lookup(label)
			if !found {
				return &LabelError{Func: f.Name, Block: bb.Label, Label: label}
			}
			addEdge(f, bb.ID, to)
		}
		if !bb.Terminated() {
			if next := f.Next(bb.ID); next != ir.NoBlockID {
				addEdge(f, bb.ID, next)
			}
		}
	}
	return nil
}

func addEdge(f *ir.Func, from, to ir.BlockID) {
	src := f.Block(from)
	if src.HasSucc(to) {
		return
	}
	src.Succs = append(src.Succs, to)
	dst := f.Block(to)
	dst.Preds = append(dst.Preds, from)
}

// EdgeCount returns the number of CFG edges.
func EdgeCount(f *ir.Func) int {
	n := 0
	for i := range f.Blocks {
		n += len(f.Blocks[i].Succs)
	}
	return n
}

package ssa

import "optimix/internal/ir"

type renamer struct {
	f      *ir.Func
	dom    *DomTree
	next   map[string]int
	stacks map[string][]int
	defs   int
}

func newRenamer(f *ir.Func, d *DomTree) *renamer {
	return &renamer{
		f:      f,
		dom:    d,
		next:   make(map[string]int),
		stacks: make(map[string][]int),
	}
}

// top returns the live version of name, or 0 when none reaches here.
func (r *renamer) top(name string) int {
	s := r.stacks[name]
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

func (r *renamer) push(name string) int {
	r.next[name]++
	v := r.next[name]
	r.stacks[name] = append(r.stacks[name], v)
	r.defs++
	return v
}

// rename walks the dominator tree from id. Versions pushed in a subtree are
// popped before returning.
func (r *renamer) rename(id ir.BlockID) {
	bb := &r.f.Blocks[id]
	var pushed []string

	for j := range bb.Instrs {
		in := &bb.Instrs[j]
		in.Uses(func(_ int, op *ir.Operand) {
			op.Version = r.top(op.Name)
		})
		if in.Op.Defines() && in.Result.IsVar() {
			in.Result.Version = r.push(in.Result.Name)
			pushed = append(pushed, in.Result.Name)
		}
		if label, ok := in.Target(); ok {
			if to, found := r.f.Lookup(label); found {
				r.fillPhis(to, bb.Label)
			}
		}
	}
	if !bb.Terminated() {
		if next := r.f.Next(id); next != ir.NoBlockID {
			r.fillPhis(next, bb.Label)
		}
	}

	for _, child := range r.dom.Children[id] {
		r.rename(child)
	}

	for i := len(pushed) - 1; i >= 0; i-- {
		name := pushed[i]
		s := r.stacks[name]
		r.stacks[name] = s[:len(s)-1]
	}
}

// fillPhis stamps the PHI operands of block to that flow in from pred.
func (r *renamer) fillPhis(to ir.BlockID, pred string) {
	bb := &r.f.Blocks[to]
	for j := 0; j < len(bb.Instrs) && bb.Instrs[j].Op == ir.OpPhi; j++ {
		args := bb.Instrs[j].Args
		for k := 0; k+1 < len(args); k += 2 {
			if args[k+1].Name == pred && args[k].IsVar() {
				args[k].Version = r.top(args[k].Name)
			}
		}
	}
}

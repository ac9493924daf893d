package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"optimix/internal/ir"
)

// CheckSSAInvariants runs the structural checks an SSA function must pass:
// 1) every defined register carries a version > 0 and is defined once
// 2) every versioned use refers to a defined register
// 3) PHIs lead their block and have exactly one pair per reachable predecessor
// Array operands must stay unversioned. Unreachable blocks are skipped.
func CheckSSAInvariants(f *ir.Func) error {
	if f == nil {
		return fmt.Errorf("nil function")
	}

	reachable := reachableFrom(f)
	defs := make(map[ir.Operand]string)
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		if !reachable[bb.ID] {
			continue
		}
		for j := range bb.Instrs {
			in := &bb.Instrs[j]
			if !in.Op.Defines() {
				continue
			}
			if in.Result.Version <= 0 {
				return fmt.Errorf("%s:%d: %s defines unversioned %s", bb.Label, j, in.Op, in.Result)
			}
			if prev, dup := defs[in.Result]; dup {
				return fmt.Errorf("%s:%d: %s already defined in %s", bb.Label, j, in.Result, prev)
			}
			defs[in.Result] = bb.Label
		}
	}

	for i := range f.Blocks {
		bb := &f.Blocks[i]
		id, err := safecast.Conv[int32](i)
		if err != nil {
			return fmt.Errorf("block index overflow: %w", err)
		}
		if !reachable[ir.BlockID(id)] {
			continue
		}
		heads := bb.PhiCount()
		for j := range bb.Instrs {
			in := &bb.Instrs[j]
			if in.Op == ir.OpPhi {
				if j >= heads {
					return fmt.Errorf("%s:%d: PHI after non-PHI instruction", bb.Label, j)
				}
				if err := checkPhi(f, bb, in, reachable, defs); err != nil {
					return fmt.Errorf("%s:%d: %w", bb.Label, j, err)
				}
				continue
			}
			for k := range in.Args {
				op := in.Args[k]
				if in.ArrayArg(k) {
					if op.Version != 0 {
						return fmt.Errorf("%s:%d: array %s is versioned", bb.Label, j, op)
					}
					continue
				}
				if op.IsVar() && op.Version > 0 {
					if _, ok := defs[op]; !ok {
						return fmt.Errorf("%s:%d: use of undefined %s", bb.Label, j, op)
					}
				}
			}
		}
	}
	return nil
}

func checkPhi(f *ir.Func, bb *ir.Block, in *ir.Instr, reachable map[ir.BlockID]bool, defs map[ir.Operand]string) error {
	want := make(map[string]bool)
	for _, p := range bb.Preds {
		if reachable[p] {
			want[f.Blocks[p].Label] = true
		}
	}
	edges := in.Edges()
	if len(edges) != len(want) {
		return fmt.Errorf("PHI %s has %d pairs for %d predecessors", in.Result, len(edges), len(want))
	}
	for _, e := range edges {
		if !want[e.Pred] {
			return fmt.Errorf("PHI %s names non-predecessor %s", in.Result, e.Pred)
		}
		if e.Value.Name != in.Result.Name {
			return fmt.Errorf("PHI %s merges foreign name %s", in.Result, e.Value)
		}
		if e.Value.Version > 0 {
			if _, ok := defs[e.Value]; !ok {
				return fmt.Errorf("PHI %s reads undefined %s", in.Result, e.Value)
			}
		}
	}
	return nil
}

func reachableFrom(f *ir.Func) map[ir.BlockID]bool {
	seen := make(map[ir.BlockID]bool)
	if len(f.Blocks) == 0 {
		return seen
	}
	stack := []ir.BlockID{0}
	seen[0] = true
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range f.Blocks[id].Succs {
			if !seen[s] {
				seen[s] = true
				stack = append(stack, s)
			}
		}
	}
	return seen
}

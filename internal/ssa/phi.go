package ssa

import (
	"slices"

	"optimix/internal/ir"
)

// globalNames returns the names read in some block before that block
// defines them, and the blocks defining each name. Only these names can
// need a PHI.
func globalNames(f *ir.Func, d *DomTree) (globals []string, defBlocks map[string][]ir.BlockID) {
	seen := make(map[string]bool)
	defBlocks = make(map[string][]ir.BlockID)
	for _, id := range d.RPO {
		bb := &f.Blocks[id]
		killed := make(map[string]bool)
		for j := range bb.Instrs {
			in := &bb.Instrs[j]
			in.Uses(func(_ int, op *ir.Operand) {
				if !killed[op.Name] && !seen[op.Name] {
					seen[op.Name] = true
					globals = append(globals, op.Name)
				}
			})
			if in.Op.Defines() && in.Result.IsVar() {
				name := in.Result.Name
				killed[name] = true
				if blocks := defBlocks[name]; len(blocks) == 0 || blocks[len(blocks)-1] != id {
					defBlocks[name] = append(blocks, id)
				}
			}
		}
	}
	slices.Sort(globals)
	return globals, defBlocks
}

// liveIn returns, per reachable block, the names whose value on entry may
// be read before being redefined. Unreachable blocks get nil.
func liveIn(f *ir.Func, d *DomTree) []map[string]bool {
	live := make([]map[string]bool, len(f.Blocks))
	kills := make([]map[string]bool, len(f.Blocks))
	for _, id := range d.RPO {
		in, killed := make(map[string]bool), make(map[string]bool)
		for j := range f.Blocks[id].Instrs {
			instr := &f.Blocks[id].Instrs[j]
			instr.Uses(func(_ int, op *ir.Operand) {
				if !killed[op.Name] {
					in[op.Name] = true
				}
			})
			if instr.Op.Defines() && instr.Result.IsVar() {
				killed[instr.Result.Name] = true
			}
		}
		live[id], kills[id] = in, killed
	}

	for changed := true; changed; {
		changed = false
		for i := len(d.RPO) - 1; i >= 0; i-- {
			id := d.RPO[i]
			for _, succ := range f.Blocks[id].Succs {
				for name := range live[succ] {
					if !kills[id][name] && !live[id][name] {
						live[id][name] = true
						changed = true
					}
				}
			}
		}
	}
	return live
}

// placePhis inserts PHIs on the iterated dominance frontier of every
// global name's definitions, skipping blocks where the name is dead on
// entry, and returns how many were inserted.
func placePhis(f *ir.Func, d *DomTree) int {
	globals, defBlocks := globalNames(f, d)
	live := liveIn(f, d)
	need := make([][]string, len(f.Blocks))

	for _, name := range globals {
		has := make(map[ir.BlockID]bool)
		queued := make(map[ir.BlockID]bool)
		work := slices.Clone(defBlocks[name])
		for _, b := range work {
			queued[b] = true
		}
		for len(work) > 0 {
			n := work[len(work)-1]
			work = work[:len(work)-1]
			for _, df := range d.Frontier[n] {
				if has[df] {
					continue
				}
				has[df] = true
				if !live[df][name] {
					continue
				}
				need[df] = append(need[df], name)
				if !queued[df] {
					queued[df] = true
					work = append(work, df)
				}
			}
		}
	}

	count := 0
	for id, names := range need {
		if len(names) == 0 {
			continue
		}
		bb := &f.Blocks[id]
		phis := make([]ir.Instr, 0, len(names)+len(bb.Instrs))
		for _, name := range names {
			var edges []ir.PhiEdge
			for _, p := range bb.Preds {
				if d.Reachable(p) {
					edges = append(edges, ir.PhiEdge{Value: ir.Var(name), Pred: f.Blocks[p].Label})
				}
			}
			phis = append(phis, ir.Phi(ir.Var(name), edges...))
		}
		bb.Instrs = append(phis, bb.Instrs...)
		count += len(names)
	}
	return count
}

// stripPhis removes PHIs and clears every version stamp, restoring the
// builder's output shape.
func stripPhis(f *ir.Func) {
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		kept := bb.Instrs[:0]
		for _, in := range bb.Instrs {
			if in.Op == ir.OpPhi {
				continue
			}
			in.Result.Version = 0
			for k := range in.Args {
				in.Args[k].Version = 0
			}
			kept = append(kept, in)
		}
		bb.Instrs = kept
	}
}

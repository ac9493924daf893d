// Package ssa converts builder output into versioned single-assignment form.
//
// Run rebuilds the CFG, computes dominance, inserts PHIs on iterated
// dominance frontiers where the name is live on entry and renames every
// register along the dominator tree.
// Array names (operand 0 of ALLOCA, LOAD and STORE) are memory, not
// registers, and are never versioned.
package ssa

import (
	"optimix/internal/ir"
)

// Stats summarizes one Run.
type Stats struct {
	Blocks      int
	Unreachable int
	Edges       int
	Phis        int // only PHIs whose name is live on block entry
	Defs        int // versions assigned, PHIs included
}

// Run converts f to SSA form in place. Running it on its own output
// produces the same function.
func Run(f *ir.Func) (Stats, error) {
	var st Stats
	if f == nil || len(f.Blocks) == 0 {
		return st, nil
	}
	stripPhis(f)
	if err := BuildCFG(f); err != nil {
		return st, err
	}
	dom := ComputeDominance(f)

	st.Blocks = len(f.Blocks)
	st.Unreachable = len(f.Blocks) - len(dom.RPO)
	st.Edges = EdgeCount(f)
	st.Phis = placePhis(f, dom)

	r := newRenamer(f, dom)
	r.rename(dom.RPO[0])
	st.Defs = r.defs
	return st, nil
}

package ssa

import (
	"slices"

	"optimix/internal/ir"
)

// DomTree holds dominance information for the blocks reachable from entry.
// Unreachable blocks have IDom == ir.NoBlockID and no frontier.
type DomTree struct {
	// RPO lists reachable blocks in reverse postorder, entry first.
	RPO []ir.BlockID
	// IDom maps a block to its immediate dominator. The entry block and
	// unreachable blocks map to ir.NoBlockID.
	IDom []ir.BlockID
	// Children lists the dominator tree children of each block.
	Children [][]ir.BlockID
	// Frontier is the dominance frontier of each block.
	Frontier [][]ir.BlockID

	rpoIndex []int // position in RPO, -1 if unreachable
}

// ComputeDominance computes immediate dominators with the Cooper, Harvey
// and Kennedy iteration, then the dominator tree and frontiers. Edges must
// already be populated by BuildCFG.
func ComputeDominance(f *ir.Func) *DomTree {
	n := len(f.Blocks)
	d := &DomTree{
		IDom:     make([]ir.BlockID, n),
		Children: make([][]ir.BlockID, n),
		Frontier: make([][]ir.BlockID, n),
		rpoIndex: make([]int, n),
	}
	for i := range d.IDom {
		d.IDom[i] = ir.NoBlockID
		d.rpoIndex[i] = -1
	}
	if n == 0 {
		return d
	}

	d.RPO = reversePostorder(f)
	for i, id := range d.RPO {
		d.rpoIndex[id] = i
	}

	// idom[entry] = entry during the iteration.
	entry := d.RPO[0]
	d.IDom[entry] = entry
	for changed := true; changed; {
		changed = false
		for _, b := range d.RPO[1:] {
			newIDom := ir.NoBlockID
			for _, p := range f.Blocks[b].Preds {
				if d.IDom[p] == ir.NoBlockID {
					continue
				}
				if newIDom == ir.NoBlockID {
					newIDom = p
				} else {
					newIDom = d.intersect(p, newIDom)
				}
			}
			if newIDom != ir.NoBlockID && d.IDom[b] != newIDom {
				d.IDom[b] = newIDom
				changed = true
			}
		}
	}

	// Children in creation order so renaming numbers versions top-down.
	for i := range f.Blocks {
		b := ir.BlockID(i)
		if b != entry && d.Reachable(b) {
			d.Children[d.IDom[b]] = append(d.Children[d.IDom[b]], b)
		}
	}

	for _, b := range d.RPO {
		var preds []ir.BlockID
		for _, p := range f.Blocks[b].Preds {
			if d.Reachable(p) {
				preds = append(preds, p)
			}
		}
		if len(preds) < 2 {
			continue
		}
		for _, p := range preds {
			for runner := p; runner != d.IDom[b]; runner = d.IDom[runner] {
				if !slices.Contains(d.Frontier[runner], b) {
					d.Frontier[runner] = append(d.Frontier[runner], b)
				}
				if runner == entry {
					break
				}
			}
		}
	}

	d.IDom[entry] = ir.NoBlockID
	return d
}

func (d *DomTree) intersect(a, b ir.BlockID) ir.BlockID {
	for a != b {
		for d.rpoIndex[a] > d.rpoIndex[b] {
			a = d.IDom[a]
		}
		for d.rpoIndex[b] > d.rpoIndex[a] {
			b = d.IDom[b]
		}
	}
	return a
}

// Reachable reports whether id is reachable from entry.
func (d *DomTree) Reachable(id ir.BlockID) bool {
	return id >= 0 && int(id) < len(d.rpoIndex) && d.rpoIndex[id] >= 0
}

// Dominates reports whether a dominates b. Every reachable block dominates
// itself.
func (d *DomTree) Dominates(a, b ir.BlockID) bool {
	if !d.Reachable(a) || !d.Reachable(b) {
		return false
	}
	for b != ir.NoBlockID {
		if a == b {
			return true
		}
		b = d.IDom[b]
	}
	return false
}

func reversePostorder(f *ir.Func) []ir.BlockID {
	type item struct {
		id   ir.BlockID
		next int
	}
	visited := make([]bool, len(f.Blocks))
	post := make([]ir.BlockID, 0, len(f.Blocks))
	stack := []item{{id: 0}}
	visited[0] = true
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := f.Blocks[top.id].Succs
		if top.next < len(succs) {
			s := succs[top.next]
			top.next++
			if !visited[s] {
				visited[s] = true
				stack = append(stack, item{id: s})
			}
			continue
		}
		post = append(post, top.id)
		stack = stack[:len(stack)-1]
	}
	slices.Reverse(post)
	return post
}

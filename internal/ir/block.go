package ir

// BlockID indexes a block inside its function's block arena.
type BlockID int32

// NoBlockID marks a missing block.
const NoBlockID BlockID = -1

// Block is a labelled instruction sequence. Preds and Succs are populated
// by the SSA pass and refer to blocks of the same function.
type Block struct {
	ID     BlockID   `msgpack:"id"`
	Label  string    `msgpack:"label"`
	Instrs []Instr   `msgpack:"instrs"`
	Preds  []BlockID `msgpack:"preds,omitempty"`
	Succs  []BlockID `msgpack:"succs,omitempty"`
}

// Append adds an instruction at the end of the block.
func (b *Block) Append(in Instr) {
	b.Instrs = append(b.Instrs, in)
}

// Terminated reports whether control never falls off the end of b.
func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	for i := range b.Instrs {
		if b.Instrs[i].Op.EndsBlock() {
			return true
		}
	}
	return false
}

// PhiCount returns the number of PHIs at the head of b.
func (b *Block) PhiCount() int {
	n := 0
	for n < len(b.Instrs) && b.Instrs[n].Op == OpPhi {
		n++
	}
	return n
}

// HasPred reports whether id is a predecessor of b.
func (b *Block) HasPred(id BlockID) bool {
	for _, p := range b.Preds {
		if p == id {
			return true
		}
	}
	return false
}

// HasSucc reports whether id is a successor of b.
func (b *Block) HasSucc(id BlockID) bool {
	for _, s := range b.Succs {
		if s == id {
			return true
		}
	}
	return false
}

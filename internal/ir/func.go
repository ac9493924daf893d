package ir

import "fmt"

// EntryLabel is the label of every function's first block.
const EntryLabel = "entry"

// Func is a function body: blocks in creation order. Creation order is
// the interpreter's fallthrough order.
type Func struct {
	Name   string  `msgpack:"name"`
	Blocks []Block `msgpack:"blocks"`

	index map[string]BlockID
}

// NewFunc returns an empty function.
func NewFunc(name string) *Func {
	return &Func{Name: name, index: make(map[string]BlockID)}
}

// NewBlock appends an empty block and returns its ID.
func (f *Func) NewBlock(label string) (BlockID, error) {
	if f.index == nil {
		f.Reindex()
	}
	if _, dup := f.index[label]; dup {
		return NoBlockID, fmt.Errorf("function %s: duplicate block label %q", f.Name, label)
	}
	id := BlockID(len(f.Blocks))
	f.Blocks = append(f.Blocks, Block{ID: id, Label: label})
	f.index[label] = id
	return id, nil
}

// Block returns the block with the given ID, or nil.
func (f *Func) Block(id BlockID) *Block {
	if f == nil || id < 0 || int(id) >= len(f.Blocks) {
		return nil
	}
	return &f.Blocks[id]
}

// Entry returns the first block, or nil for an empty function.
func (f *Func) Entry() *Block {
	return f.Block(0)
}

// Lookup resolves a label by exact match.
func (f *Func) Lookup(label string) (BlockID, bool) {
	if f == nil {
		return NoBlockID, false
	}
	if f.index == nil {
		f.Reindex()
	}
	id, ok := f.index[label]
	return id, ok
}

// Next returns the block created right after id, or NoBlockID.
func (f *Func) Next(id BlockID) BlockID {
	if f == nil || id < 0 || int(id)+1 >= len(f.Blocks) {
		return NoBlockID
	}
	return id + 1
}

// Reindex rebuilds the label index and block IDs from the block slice.
// The first occurrence of a duplicated label wins.
func (f *Func) Reindex() {
	f.index = make(map[string]BlockID, len(f.Blocks))
	for i := range f.Blocks {
		f.Blocks[i].ID = BlockID(i)
		if _, dup := f.index[f.Blocks[i].Label]; !dup {
			f.index[f.Blocks[i].Label] = BlockID(i)
		}
	}
}

// InstrCount returns the number of instructions across all blocks.
func (f *Func) InstrCount() int {
	n := 0
	for i := range f.Blocks {
		n += len(f.Blocks[i].Instrs)
	}
	return n
}

// Clone returns a deep copy of f.
func (f *Func) Clone() *Func {
	if f == nil {
		return nil
	}
	out := &Func{Name: f.Name, Blocks: make([]Block, len(f.Blocks))}
	for i := range f.Blocks {
		src := &f.Blocks[i]
		dst := &out.Blocks[i]
		dst.ID = src.ID
		dst.Label = src.Label
		dst.Instrs = make([]Instr, len(src.Instrs))
		for j := range src.Instrs {
			dst.Instrs[j] = src.Instrs[j].Clone()
		}
		dst.Preds = append([]BlockID(nil), src.Preds...)
		dst.Succs = append([]BlockID(nil), src.Succs...)
	}
	out.Reindex()
	return out
}

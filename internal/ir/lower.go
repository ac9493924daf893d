package ir

import (
	"fmt"
	"strconv"

	"optimix/internal/ast"
)

// BuildError reports a syntax tree the builder cannot lower.
type BuildError struct {
	Func string
	Kind string // statement or expression kind
	Msg  string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("ir: build %s: %s: %s", e.Func, e.Kind, e.Msg)
}

// Build lowers one syntax tree function into IR. The result has a single
// "entry" block unless the body contains loops.
func Build(fn *ast.Func) (*Func, error) {
	if fn == nil {
		return nil, &BuildError{Kind: "func", Msg: "nil function"}
	}
	b := &builder{f: NewFunc(fn.Name)}
	entry, err := b.f.NewBlock(EntryLabel)
	if err != nil {
		return nil, err
	}
	b.cur = entry

	for _, st := range fn.Body {
		if err := b.lowerStmt(st); err != nil {
			return nil, err
		}
	}
	b.seal()
	return b.f, nil
}

// builder holds per-build state: counters never outlive one Build call.
type builder struct {
	f         *Func
	cur       BlockID
	nextTemp  int
	nextLabel int
}

func (b *builder) curBlock() *Block {
	return b.f.Block(b.cur)
}

func (b *builder) emit(in Instr) {
	b.curBlock().Append(in)
}

func (b *builder) newTemp() Operand {
	name := "t" + strconv.Itoa(b.nextTemp)
	b.nextTemp++
	return Var(name)
}

func (b *builder) newLabel(prefix string) string {
	label := prefix + "L" + strconv.Itoa(b.nextLabel)
	b.nextLabel++
	return label
}

func (b *builder) newBlock(prefix string) (BlockID, error) {
	return b.f.NewBlock(b.newLabel(prefix))
}

func (b *builder) startBlock(id BlockID) {
	b.cur = id
}

// seal terminates the final block when creation-order fallthrough would
// otherwise enter a block that belongs to an enclosing loop.
func (b *builder) seal() {
	if b.curBlock().Terminated() || b.f.Next(b.cur) == NoBlockID {
		return
	}
	b.emit(Ret(Const(0)))
}

func (b *builder) errorf(kind fmt.Stringer, format string, args ...any) error {
	return &BuildError{Func: b.f.Name, Kind: kind.String(), Msg: fmt.Sprintf(format, args...)}
}

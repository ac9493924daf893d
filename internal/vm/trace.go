package vm

import (
	"fmt"
	"io"

	"optimix/internal/ir"
)

// Tracer outputs execution traces for debugging.
type Tracer struct {
	w io.Writer
}

// NewTracer creates a new tracer that writes to w.
func NewTracer(w io.Writer) *Tracer {
	return &Tracer{w: w}
}

// TraceInstr traces execution of an instruction.
// Format: <func> <block>:ip<ip> <instr>
func (t *Tracer) TraceInstr(fn *ir.Func, bb ir.BlockID, ip int, in *ir.Instr, writes []RegWrite) {
	if t == nil || t.w == nil {
		return
	}
	label := "?"
	if b := fn.Block(bb); b != nil {
		label = b.Label
	}
	fmt.Fprintf(t.w, "%s %s:ip%d %s\n", fn.Name, label, ip, in.String())
	for _, w := range writes {
		fmt.Fprintf(t.w, "    write %s = %d\n", w.Reg, w.Value)
	}
}

// TraceEnter traces entry into a block and the PHI writes it resolved.
// Format: <func> enter <block> [from <pred>]
func (t *Tracer) TraceEnter(fn *ir.Func, bb *ir.Block, from string, writes []RegWrite) {
	if t == nil || t.w == nil {
		return
	}
	if from == "" {
		fmt.Fprintf(t.w, "%s enter %s\n", fn.Name, bb.Label)
	} else {
		fmt.Fprintf(t.w, "%s enter %s from %s\n", fn.Name, bb.Label, from)
	}
	for _, w := range writes {
		fmt.Fprintf(t.w, "    phi %s = %d\n", w.Reg, w.Value)
	}
}

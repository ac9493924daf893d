package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// DumpOptions configures function dumping.
type DumpOptions struct {
	Color bool // ANSI colors for opcodes and labels
	Edges bool // append "; preds=... succs=..." to block headers
}

// Dump writes the textual form of f:
//
//	function main:
//	entry:
//	  MOV x_1, 0
//	  JMP loop_L0
func Dump(w io.Writer, f *Func, opts DumpOptions) error {
	if w == nil || f == nil {
		return nil
	}
	p := newPalette(opts.Color)

	if _, err := fmt.Fprintf(w, "function %s:\n", f.Name); err != nil {
		return err
	}
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		header := p.label.Sprint(bb.Label) + ":"
		if opts.Edges {
			header += fmt.Sprintf(" ; preds=%s succs=%s", blockList(f, bb.Preds), blockList(f, bb.Succs))
		}
		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
		for j := range bb.Instrs {
			if _, err := fmt.Fprintf(w, "  %s\n", formatInstr(&bb.Instrs[j], p)); err != nil {
				return err
			}
		}
	}
	return nil
}

// String renders f without colors.
func (f *Func) String() string {
	var sb strings.Builder
	_ = Dump(&sb, f, DumpOptions{})
	return sb.String()
}

// String renders one instruction.
func (in Instr) String() string {
	return formatInstr(&in, newPalette(false))
}

func formatInstr(in *Instr, p palette) string {
	op := p.opcode.Sprint(in.Op.String())
	switch in.Op {
	case OpJmp:
		return op + " " + argOrBlank(in.Args, 0)
	case OpJmpIf:
		return op + " " + argOrBlank(in.Args, 0) + ", " + argOrBlank(in.Args, 1)
	case OpRet:
		if len(in.Args) == 0 {
			return op + " 0"
		}
		return op + " " + in.Args[0].String()
	}

	parts := make([]string, 0, len(in.Args)+1)
	if !in.Result.IsNone() {
		parts = append(parts, in.Result.String())
	}
	for _, a := range in.Args {
		parts = append(parts, a.String())
	}
	if len(parts) == 0 {
		return op
	}
	return op + " " + strings.Join(parts, ", ")
}

func argOrBlank(args []Operand, i int) string {
	if i < len(args) {
		return args[i].String()
	}
	return "?"
}

func blockList(f *Func, ids []BlockID) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if bb := f.Block(id); bb != nil {
			names = append(names, bb.Label)
		} else {
			names = append(names, fmt.Sprintf("#%d", id))
		}
	}
	return "[" + strings.Join(names, " ") + "]"
}

type palette struct {
	opcode *color.Color
	label  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		opcode: color.New(color.FgCyan),
		label:  color.New(color.FgYellow, color.Bold),
	}
	if enabled {
		p.opcode.EnableColor()
		p.label.EnableColor()
	} else {
		p.opcode.DisableColor()
		p.label.DisableColor()
	}
	return p
}

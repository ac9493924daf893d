package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented tree of fn to w.
func Dump(w io.Writer, fn *Func) error {
	if w == nil || fn == nil {
		return nil
	}
	p := &printer{w: w}
	p.line(0, "Func(%s)", fn.Name)
	for _, s := range fn.Body {
		p.stmt(1, s)
	}
	return p.err
}

// String renders fn as Dump does.
func (fn *Func) String() string {
	var sb strings.Builder
	_ = Dump(&sb, fn)
	return sb.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (p *printer) stmt(depth int, s *Stmt) {
	if s == nil {
		p.line(depth, "<nil stmt>")
		return
	}
	switch s.Kind {
	case StmtReturn:
		p.line(depth, "Return")
	case StmtVarDecl:
		p.line(depth, "VarDecl(%s)", s.Name)
	case StmtAssign:
		p.line(depth, "Assign(%s)", s.Name)
	case StmtIndexAssign:
		p.line(depth, "IndexAssign(%s)", s.Name)
		p.expr(depth+1, s.Index)
	case StmtWhile:
		p.line(depth, "While")
		p.expr(depth+1, s.Cond)
		for _, b := range s.Body {
			p.stmt(depth+1, b)
		}
		return
	case StmtPrint:
		p.line(depth, "Print")
	case StmtArrayDecl:
		p.line(depth, "ArrayDecl(%s, %d)", s.Name, s.Size)
		return
	default:
		p.line(depth, "Stmt(%d)", s.Kind)
		return
	}
	if s.Value != nil {
		p.expr(depth+1, s.Value)
	}
}

func (p *printer) expr(depth int, e *Expr) {
	if e == nil {
		p.line(depth, "<nil expr>")
		return
	}
	switch e.Kind {
	case ExprInt:
		p.line(depth, "Int(%d)", e.Value)
	case ExprVar:
		p.line(depth, "Var(%s)", e.Name)
	case ExprIndex:
		p.line(depth, "Index(%s)", e.Name)
		p.expr(depth+1, e.Index)
	case ExprBinary:
		p.line(depth, "Binary(%s)", e.Op)
		p.expr(depth+1, e.Left)
		p.expr(depth+1, e.Right)
	default:
		p.line(depth, "Expr(%d)", e.Kind)
	}
}

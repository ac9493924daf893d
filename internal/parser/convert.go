package parser

import (
	"optimix/internal/ast"
)

func convertStmts(in []*Statement) ([]*ast.Stmt, error) {
	out := make([]*ast.Stmt, 0, len(in))
	for _, st := range in {
		s, err := convertStmt(st)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func convertStmt(st *Statement) (*ast.Stmt, error) {
	switch {
	case st.Return != nil:
		if st.Return.Value == nil {
			return ast.Return(nil), nil
		}
		v, err := convertExpr(st.Return.Value)
		if err != nil {
			return nil, err
		}
		return ast.Return(v), nil

	case st.While != nil:
		cond, err := convertExpr(st.While.Cond)
		if err != nil {
			return nil, err
		}
		body, err := convertStmts(st.While.Body)
		if err != nil {
			return nil, err
		}
		return ast.While(cond, body...), nil

	case st.Print != nil:
		v, err := convertExpr(st.Print.Value)
		if err != nil {
			return nil, err
		}
		return ast.Print(v), nil

	case st.Decl != nil:
		d := st.Decl
		if d.Size != nil {
			if d.Init != nil {
				return nil, &Error{Pos: st.Pos, Msg: "array declaration cannot have an initializer"}
			}
			return ast.ArrayDecl(d.Name, *d.Size), nil
		}
		if d.Init == nil {
			return ast.Decl(d.Name, nil), nil
		}
		v, err := convertExpr(d.Init)
		if err != nil {
			return nil, err
		}
		return ast.Decl(d.Name, v), nil

	case st.Assign != nil:
		a := st.Assign
		v, err := convertExpr(a.Value)
		if err != nil {
			return nil, err
		}
		if a.Index == nil {
			return ast.Assign(a.Name, v), nil
		}
		idx, err := convertExpr(a.Index)
		if err != nil {
			return nil, err
		}
		return ast.IndexAssign(a.Name, idx, v), nil
	}
	return nil, &Error{Pos: st.Pos, Msg: "empty statement"}
}

func convertExpr(e *Expr) (*ast.Expr, error) {
	left, err := convertAdditive(e.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range e.Ops {
		right, err := convertAdditive(op.Right)
		if err != nil {
			return nil, err
		}
		left = ast.Bin(op.Op, left, right)
	}
	return left, nil
}

func convertAdditive(a *Additive) (*ast.Expr, error) {
	left, err := convertTerm(a.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range a.Ops {
		right, err := convertTerm(op.Right)
		if err != nil {
			return nil, err
		}
		left = ast.Bin(op.Op, left, right)
	}
	return left, nil
}

func convertTerm(t *Term) (*ast.Expr, error) {
	left, err := convertUnary(t.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range t.Ops {
		right, err := convertUnary(op.Right)
		if err != nil {
			return nil, err
		}
		left = ast.Bin(op.Op, left, right)
	}
	return left, nil
}

// convertUnary lowers `-e` to `0 - e`.
func convertUnary(u *Unary) (*ast.Expr, error) {
	v, err := convertPrimary(u.Value)
	if err != nil {
		return nil, err
	}
	if u.Neg {
		return ast.Bin("-", ast.Int(0), v), nil
	}
	return v, nil
}

func convertPrimary(p *Primary) (*ast.Expr, error) {
	switch {
	case p.Number != nil:
		return ast.Int(*p.Number), nil
	case p.Index != nil:
		idx, err := convertExpr(p.Index.Index)
		if err != nil {
			return nil, err
		}
		return ast.Index(p.Index.Name, idx), nil
	case p.Ident != nil:
		return ast.Var(*p.Ident), nil
	case p.Parens != nil:
		return convertExpr(p.Parens)
	}
	return nil, &Error{Pos: p.Pos, Msg: "empty expression"}
}

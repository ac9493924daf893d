package ir

import "optimix/internal/ast"

func (b *builder) lowerExpr(e *ast.Expr) (Operand, error) {
	if e == nil {
		return Operand{}, &BuildError{Func: b.f.Name, Kind: "expr", Msg: "missing expression"}
	}
	switch e.Kind {
	case ast.ExprInt:
		return Const(e.Value), nil

	case ast.ExprVar:
		if e.Name == "" {
			return Operand{}, b.errorf(e.Kind, "empty variable name")
		}
		return Var(e.Name), nil

	case ast.ExprIndex:
		if e.Name == "" {
			return Operand{}, b.errorf(e.Kind, "empty array name")
		}
		idx, err := b.lowerExpr(e.Index)
		if err != nil {
			return Operand{}, err
		}
		dst := b.newTemp()
		b.emit(Load(dst, e.Name, idx))
		return dst, nil

	case ast.ExprBinary:
		op, ok := BinaryOpcode(e.Op)
		if !ok {
			return Operand{}, b.errorf(e.Kind, "unsupported operator %q", e.Op)
		}
		lhs, err := b.lowerExpr(e.Left)
		if err != nil {
			return Operand{}, err
		}
		rhs, err := b.lowerExpr(e.Right)
		if err != nil {
			return Operand{}, err
		}
		dst := b.newTemp()
		b.emit(Binary(op, dst, lhs, rhs))
		return dst, nil
	}
	return Operand{}, b.errorf(e.Kind, "unknown expression kind")
}

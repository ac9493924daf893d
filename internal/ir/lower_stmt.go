package ir

import "optimix/internal/ast"

func (b *builder) lowerStmt(st *ast.Stmt) error {
	if st == nil {
		return &BuildError{Func: b.f.Name, Kind: "stmt", Msg: "nil statement"}
	}

	switch st.Kind {
	case ast.StmtReturn:
		val := Const(0)
		if st.Value != nil {
			v, err := b.lowerExpr(st.Value)
			if err != nil {
				return err
			}
			val = v
		}
		b.emit(Ret(val))
		return nil

	case ast.StmtVarDecl:
		if st.Name == "" {
			return b.errorf(st.Kind, "empty variable name")
		}
		// A declaration without initializer leaves the name undefined.
		if st.Value == nil {
			return nil
		}
		val, err := b.lowerExpr(st.Value)
		if err != nil {
			return err
		}
		b.emit(Mov(Var(st.Name), val))
		return nil

	case ast.StmtAssign:
		if st.Name == "" {
			return b.errorf(st.Kind, "empty variable name")
		}
		if st.Value == nil {
			return b.errorf(st.Kind, "missing value for %s", st.Name)
		}
		val, err := b.lowerExpr(st.Value)
		if err != nil {
			return err
		}
		b.emit(Mov(Var(st.Name), val))
		return nil

	case ast.StmtIndexAssign:
		if st.Name == "" {
			return b.errorf(st.Kind, "empty array name")
		}
		if st.Index == nil || st.Value == nil {
			return b.errorf(st.Kind, "%s: index and value are required", st.Name)
		}
		idx, err := b.lowerExpr(st.Index)
		if err != nil {
			return err
		}
		val, err := b.lowerExpr(st.Value)
		if err != nil {
			return err
		}
		b.emit(Store(st.Name, idx, val))
		return nil

	case ast.StmtArrayDecl:
		if st.Name == "" {
			return b.errorf(st.Kind, "empty array name")
		}
		if st.Size < 0 {
			return b.errorf(st.Kind, "%s: negative size %d", st.Name, st.Size)
		}
		b.emit(Alloca(st.Name, Const(st.Size)))
		return nil

	case ast.StmtPrint:
		val, err := b.lowerExpr(st.Value)
		if err != nil {
			return err
		}
		b.emit(Print(val))
		return nil

	case ast.StmtWhile:
		return b.lowerWhile(st)
	}
	return b.errorf(st.Kind, "unknown statement kind")
}

// lowerWhile emits the condition/body/exit triple. All three blocks exist
// before any jump to them is emitted.
func (b *builder) lowerWhile(st *ast.Stmt) error {
	if st.Cond == nil {
		return b.errorf(st.Kind, "missing condition")
	}
	condBB, err := b.newBlock("loop_")
	if err != nil {
		return err
	}
	bodyBB, err := b.newBlock("loop_body_")
	if err != nil {
		return err
	}
	exitBB, err := b.newBlock("loop_exit_")
	if err != nil {
		return err
	}
	condLabel := b.f.Blocks[condBB].Label

	b.emit(Jmp(condLabel))

	b.startBlock(condBB)
	c, err := b.lowerExpr(st.Cond)
	if err != nil {
		return err
	}
	b.emit(JmpIf(b.f.Blocks[bodyBB].Label, c))
	b.emit(Jmp(b.f.Blocks[exitBB].Label))

	b.startBlock(bodyBB)
	for _, s := range st.Body {
		if err := b.lowerStmt(s); err != nil {
			return err
		}
	}
	b.emit(Jmp(condLabel))

	b.startBlock(exitBB)
	return nil
}

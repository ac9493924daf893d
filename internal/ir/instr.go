package ir

// Instr is one IR instruction. Result is OperandNone for void opcodes.
//
// Argument layout per opcode:
//
//	ADD..NEQ   dst  = [lhs, rhs]
//	MOV        dst  = [src]
//	JMP             [label]
//	JMP_IF          [label, cond]
//	PHI        dst  = [v1, pred1, v2, pred2, ...]
//	RET             [value]
//	PRINT           [value]
//	ALLOCA          [array, size]
//	LOAD       dst  = [array, index]
//	STORE           [array, index, value]
type Instr struct {
	Op     Opcode    `msgpack:"op"`
	Result Operand   `msgpack:"res"`
	Args   []Operand `msgpack:"args"`
}

// PhiEdge is one (value, predecessor) pair of a PHI.
type PhiEdge struct {
	Value Operand
	Pred  string
}

// Binary returns dst = lhs <op> rhs.
func Binary(op Opcode, dst, lhs, rhs Operand) Instr {
	return Instr{Op: op, Result: dst, Args: []Operand{lhs, rhs}}
}

// Mov returns dst = src.
func Mov(dst, src Operand) Instr {
	return Instr{Op: OpMov, Result: dst, Args: []Operand{src}}
}

// Jmp returns an unconditional jump.
func Jmp(target string) Instr {
	return Instr{Op: OpJmp, Args: []Operand{Label(target)}}
}

// JmpIf returns a jump taken when cond is non-zero.
func JmpIf(target string, cond Operand) Instr {
	return Instr{Op: OpJmpIf, Args: []Operand{Label(target), cond}}
}

// Ret returns a return of value.
func Ret(value Operand) Instr {
	return Instr{Op: OpRet, Args: []Operand{value}}
}

// Print returns a print of value.
func Print(value Operand) Instr {
	return Instr{Op: OpPrint, Args: []Operand{value}}
}

// Alloca returns a zero-filled array allocation.
func Alloca(array string, size Operand) Instr {
	return Instr{Op: OpAlloca, Args: []Operand{Var(array), size}}
}

// Load returns dst = array[index].
func Load(dst Operand, array string, index Operand) Instr {
	return Instr{Op: OpLoad, Result: dst, Args: []Operand{Var(array), index}}
}

// Store returns array[index] = value.
func Store(array string, index, value Operand) Instr {
	return Instr{Op: OpStore, Args: []Operand{Var(array), index, value}}
}

// Phi returns dst = phi(edges...).
func Phi(dst Operand, edges ...PhiEdge) Instr {
	args := make([]Operand, 0, 2*len(edges))
	for _, e := range edges {
		args = append(args, e.Value, Label(e.Pred))
	}
	return Instr{Op: OpPhi, Result: dst, Args: args}
}

// Target returns the label a JMP or JMP_IF names.
func (in *Instr) Target() (string, bool) {
	if !in.Op.IsBranch() || len(in.Args) == 0 || in.Args[0].Kind != OperandLabel {
		return "", false
	}
	return in.Args[0].Name, true
}

// Edges returns the (value, predecessor) pairs of a PHI.
func (in *Instr) Edges() []PhiEdge {
	if in.Op != OpPhi {
		return nil
	}
	edges := make([]PhiEdge, 0, len(in.Args)/2)
	for i := 0; i+1 < len(in.Args); i += 2 {
		edges = append(edges, PhiEdge{Value: in.Args[i], Pred: in.Args[i+1].Name})
	}
	return edges
}

// ArrayArg reports whether Args[i] names an array rather than a register.
func (in *Instr) ArrayArg(i int) bool {
	if i != 0 {
		return false
	}
	switch in.Op {
	case OpAlloca, OpLoad, OpStore:
		return true
	}
	return false
}

// Uses calls fn for every register operand the instruction reads.
// PHI values are skipped: they are read on the incoming edge, not here.
func (in *Instr) Uses(fn func(i int, op *Operand)) {
	if in.Op == OpPhi {
		return
	}
	for i := range in.Args {
		if in.Args[i].Kind == OperandVar && !in.ArrayArg(i) {
			fn(i, &in.Args[i])
		}
	}
}

// Clone returns a deep copy of in.
func (in Instr) Clone() Instr {
	in.Args = append([]Operand(nil), in.Args...)
	return in
}

package ir

import "fmt"

// Opcode enumerates IR instruction opcodes.
type Opcode uint8

const (
	OpInvalid Opcode = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMov
	OpLt
	OpGt
	OpEq
	OpNeq
	OpJmp   // unconditional jump
	OpJmpIf // jump when the condition is non-zero
	OpPhi
	OpRet
	OpPrint
	OpCall // reserved, never emitted
	OpAlloca
	OpLoad
	OpStore
)

var opcodeNames = [...]string{
	OpInvalid: "INVALID",
	OpAdd:     "ADD",
	OpSub:     "SUB",
	OpMul:     "MUL",
	OpDiv:     "DIV",
	OpMov:     "MOV",
	OpLt:      "LT",
	OpGt:      "GT",
	OpEq:      "EQ",
	OpNeq:     "NEQ",
	OpJmp:     "JMP",
	OpJmpIf:   "JMP_IF",
	OpPhi:     "PHI",
	OpRet:     "RET",
	OpPrint:   "PRINT",
	OpCall:    "CALL",
	OpAlloca:  "ALLOCA",
	OpLoad:    "LOAD",
	OpStore:   "STORE",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OP(%d)", op)
}

// IsArith reports whether op is ADD, SUB, MUL or DIV.
func (op Opcode) IsArith() bool {
	return op >= OpAdd && op <= OpDiv
}

// IsCompare reports whether op is LT, GT, EQ or NEQ.
func (op Opcode) IsCompare() bool {
	return op >= OpLt && op <= OpNeq
}

// IsBranch reports whether op names a target block.
func (op Opcode) IsBranch() bool {
	return op == OpJmp || op == OpJmpIf
}

// EndsBlock reports whether op unconditionally leaves the block.
func (op Opcode) EndsBlock() bool {
	return op == OpJmp || op == OpRet
}

// Defines reports whether op writes its result register.
func (op Opcode) Defines() bool {
	switch {
	case op.IsArith(), op.IsCompare():
		return true
	case op == OpMov, op == OpLoad, op == OpPhi:
		return true
	}
	return false
}

// BinaryOpcode maps a source operator symbol to its opcode.
func BinaryOpcode(symbol string) (Opcode, bool) {
	switch symbol {
	case "+":
		return OpAdd, true
	case "-":
		return OpSub, true
	case "*":
		return OpMul, true
	case "/":
		return OpDiv, true
	case "<":
		return OpLt, true
	case ">":
		return OpGt, true
	case "==":
		return OpEq, true
	case "!=":
		return OpNeq, true
	}
	return OpInvalid, false
}

package ir

import (
	"strconv"
)

// OperandKind distinguishes operand types.
type OperandKind uint8

const (
	// OperandNone marks an absent operand (the result slot of void opcodes).
	OperandNone OperandKind = iota
	// OperandVar is a named register. Version is stamped by the SSA pass.
	OperandVar
	// OperandConst is an integer literal kept as its decimal text.
	OperandConst
	// OperandLabel names a basic block.
	OperandLabel
)

func (k OperandKind) String() string {
	switch k {
	case OperandNone:
		return "none"
	case OperandVar:
		return "var"
	case OperandConst:
		return "const"
	case OperandLabel:
		return "label"
	default:
		return "unknown"
	}
}

// Operand is a tagged instruction operand. Two operands are equal (==) only
// when kind, name and version all match.
type Operand struct {
	Kind    OperandKind `msgpack:"k"`
	Name    string      `msgpack:"n"`
	Version int         `msgpack:"v,omitempty"`
}

// Var returns an unversioned variable operand.
func Var(name string) Operand {
	return Operand{Kind: OperandVar, Name: name}
}

// VarV returns a variable operand with an explicit SSA version.
func VarV(name string, version int) Operand {
	return Operand{Kind: OperandVar, Name: name, Version: version}
}

// Const returns a constant operand.
func Const(v int64) Operand {
	return Operand{Kind: OperandConst, Name: strconv.FormatInt(v, 10)}
}

// Label returns a block label operand.
func Label(name string) Operand {
	return Operand{Kind: OperandLabel, Name: name}
}

// IsVar reports whether o is a variable.
func (o Operand) IsVar() bool { return o.Kind == OperandVar }

// IsNone reports whether o is absent.
func (o Operand) IsNone() bool { return o.Kind == OperandNone }

// Base returns o with its version cleared.
func (o Operand) Base() Operand {
	o.Version = 0
	return o
}

// Int parses a constant operand. Non-constants report ok=false.
func (o Operand) Int() (v int64, ok bool) {
	if o.Kind != OperandConst {
		return 0, false
	}
	v, err := strconv.ParseInt(o.Name, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// String renders variables as name or name_version, everything else as its text.
func (o Operand) String() string {
	switch o.Kind {
	case OperandNone:
		return ""
	case OperandVar:
		if o.Version > 0 {
			return o.Name + "_" + strconv.Itoa(o.Version)
		}
		return o.Name
	default:
		return o.Name
	}
}

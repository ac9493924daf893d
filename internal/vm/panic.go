package vm

import (
	"fmt"

	"optimix/internal/ir"
)

// PanicCode identifies the kind of VM fault.
type PanicCode int

// Stable fault codes - do not change values.
const (
	PanicArrayNotFound PanicCode = 1001 // VM1001: array used before ALLOCA
	PanicOutOfBounds   PanicCode = 1002 // VM1002: array index out of bounds
	PanicUnmatchedPhi  PanicCode = 1003 // VM1003: no PHI pair for the incoming block
	PanicUnknownLabel  PanicCode = 1004 // VM1004: jump to a label with no block
	PanicBadAlloc      PanicCode = 1005 // VM1005: negative or oversized ALLOCA
	PanicStepLimit     PanicCode = 1006 // VM1006: step budget exhausted
	PanicCancelled     PanicCode = 1007 // VM1007: context cancelled
	PanicMalformed     PanicCode = 1008 // VM1008: malformed instruction
	PanicUnimplemented PanicCode = 1999 // VM1999: unimplemented opcode
)

// String returns the code as "VM1001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// VMError is a runtime fault. It is never confused with a return value.
type VMError struct {
	Code    PanicCode
	Message string
	Func    string
	Block   string // label of the faulting block, "" before entry
	IP      int
}

// Error implements the error interface.
func (e *VMError) Error() string {
	if e.Block == "" {
		return fmt.Sprintf("panic %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("panic %s: %s (at %s %s:%d)", e.Code, e.Message, e.Func, e.Block, e.IP)
}

// errorBuilder stamps faults with the current location.
type errorBuilder struct {
	vm *VM
}

func (eb *errorBuilder) makeError(code PanicCode, msg string) *VMError {
	e := &VMError{Code: code, Message: msg, IP: eb.vm.frame.IP}
	if eb.vm.Func != nil {
		e.Func = eb.vm.Func.Name
		if bb := eb.vm.Func.Block(eb.vm.frame.BB); bb != nil {
			e.Block = bb.Label
		}
	}
	return e
}

func (eb *errorBuilder) arrayNotFound(name string) *VMError {
	return eb.makeError(PanicArrayNotFound, fmt.Sprintf("array %q not found", name))
}

func (eb *errorBuilder) outOfBounds(name string, index int64, length int) *VMError {
	return eb.makeError(PanicOutOfBounds, fmt.Sprintf("index %d out of bounds for array %q of length %d", index, name, length))
}

func (eb *errorBuilder) unmatchedPhi(dst ir.Operand, from string) *VMError {
	if from == "" {
		return eb.makeError(PanicUnmatchedPhi, fmt.Sprintf("PHI %s reached without a predecessor", dst))
	}
	return eb.makeError(PanicUnmatchedPhi, fmt.Sprintf("PHI %s has no value for predecessor %s", dst, from))
}

func (eb *errorBuilder) unknownLabel(label string) *VMError {
	return eb.makeError(PanicUnknownLabel, fmt.Sprintf("unknown label %q", label))
}

func (eb *errorBuilder) badAlloc(name string, size int64) *VMError {
	return eb.makeError(PanicBadAlloc, fmt.Sprintf("cannot allocate %d elements for array %q", size, name))
}

func (eb *errorBuilder) stepLimit(limit int64) *VMError {
	return eb.makeError(PanicStepLimit, fmt.Sprintf("step limit %d exceeded", limit))
}

func (eb *errorBuilder) cancelled(err error) *VMError {
	return eb.makeError(PanicCancelled, fmt.Sprintf("execution cancelled: %v", err))
}

func (eb *errorBuilder) malformed(in *ir.Instr, what string) *VMError {
	return eb.makeError(PanicMalformed, fmt.Sprintf("malformed %s: %s", in.Op, what))
}

func (eb *errorBuilder) unimplemented(what string) *VMError {
	return eb.makeError(PanicUnimplemented, fmt.Sprintf("unimplemented: %s", what))
}

package vm

import (
	"fmt"

	"fortio.org/safecast"

	"optimix/internal/ir"
)

// maxArrayLen caps a single ALLOCA.
const maxArrayLen = 1 << 24

// enterBlock resolves the leading PHIs of the current block in parallel:
// every PHI reads the values live on the incoming edge before any of them
// writes.
func (vm *VM) enterBlock(frame *Frame) *VMError {
	bb := frame.CurrentBlock()
	frame.Entered = true
	from := frame.PrevLabel()
	n := bb.PhiCount()

	writes := make([]RegWrite, 0, n)
	for i := 0; i < n; i++ {
		frame.IP = i
		in := &bb.Instrs[i]
		v, ok, vmErr := vm.phiValue(in, from)
		if vmErr != nil {
			return vmErr
		}
		if ok {
			writes = append(writes, RegWrite{Reg: in.Result, Value: v})
		}
	}
	for _, w := range writes {
		vm.write(w.Reg, w.Value)
	}
	frame.IP = n
	if vm.Trace != nil {
		vm.Trace.TraceEnter(vm.Func, bb, from, writes)
	}
	return nil
}

// phiValue selects the PHI operand flowing in from block from.
func (vm *VM) phiValue(in *ir.Instr, from string) (int64, bool, *VMError) {
	if from != "" {
		for _, e := range in.Edges() {
			if e.Pred == from {
				return vm.read(in, e.Value), true, nil
			}
		}
	}
	if vm.opts.LenientPhi {
		return 0, false, nil
	}
	return 0, false, vm.eb.unmatchedPhi(in.Result, from)
}

// advanceBlock continues in the next block in creation order, or halts with
// result 0 when the current block is the last one.
func (vm *VM) advanceBlock(frame *Frame) {
	next := vm.Func.Next(frame.BB)
	if next == ir.NoBlockID {
		vm.halt(0)
		return
	}
	frame.transfer(next)
}

func (vm *VM) halt(result int64) {
	vm.Result = result
	vm.Halted = true
}

func (vm *VM) execInstr(frame *Frame, in *ir.Instr) *VMError {
	var writes []RegWrite
	if vm.Trace != nil {
		defer func(bb ir.BlockID, ip int) {
			vm.Trace.TraceInstr(vm.Func, bb, ip, in, writes)
		}(frame.BB, frame.IP)
	}

	switch {
	case in.Op.IsArith(), in.Op.IsCompare():
		if len(in.Args) != 2 {
			return vm.eb.malformed(in, "want 2 operands")
		}
		v := evalBinary(in.Op, vm.read(in, in.Args[0]), vm.read(in, in.Args[1]))
		writes = vm.write(in.Result, v)
		frame.IP++
		return nil
	}

	switch in.Op {
	case ir.OpMov:
		if len(in.Args) != 1 {
			return vm.eb.malformed(in, "want 1 operand")
		}
		writes = vm.write(in.Result, vm.read(in, in.Args[0]))
		frame.IP++

	case ir.OpPhi:
		// A PHI past the block head resolves on its own.
		v, ok, vmErr := vm.phiValue(in, frame.PrevLabel())
		if vmErr != nil {
			return vmErr
		}
		if ok {
			writes = vm.write(in.Result, v)
		}
		frame.IP++

	case ir.OpJmp:
		to, vmErr := vm.target(in)
		if vmErr != nil {
			return vmErr
		}
		frame.transfer(to)

	case ir.OpJmpIf:
		if len(in.Args) != 2 {
			return vm.eb.malformed(in, "want label and condition")
		}
		to, vmErr := vm.target(in)
		if vmErr != nil {
			return vmErr
		}
		if vm.read(in, in.Args[1]) != 0 {
			frame.transfer(to)
			return nil
		}
		frame.IP++

	case ir.OpRet:
		var v int64
		if len(in.Args) > 0 {
			v = vm.read(in, in.Args[0])
		}
		vm.halt(v)

	case ir.OpPrint:
		if len(in.Args) != 1 {
			return vm.eb.malformed(in, "want 1 operand")
		}
		vm.RT.Print(vm.read(in, in.Args[0]))
		frame.IP++

	case ir.OpAlloca:
		if len(in.Args) != 2 {
			return vm.eb.malformed(in, "want array and size")
		}
		name := in.Args[0].Name
		size := vm.read(in, in.Args[1])
		n, err := safecast.Conv[int](size)
		if err != nil || n < 0 || n > maxArrayLen {
			return vm.eb.badAlloc(name, size)
		}
		vm.mem[name] = make([]int64, n)
		frame.IP++

	case ir.OpLoad:
		if len(in.Args) != 2 {
			return vm.eb.malformed(in, "want array and index")
		}
		buf, i, vmErr := vm.element(in, in.Args[0].Name, in.Args[1])
		if vmErr != nil {
			return vmErr
		}
		writes = vm.write(in.Result, buf[i])
		frame.IP++

	case ir.OpStore:
		if len(in.Args) != 3 {
			return vm.eb.malformed(in, "want array, index and value")
		}
		buf, i, vmErr := vm.element(in, in.Args[0].Name, in.Args[1])
		if vmErr != nil {
			return vmErr
		}
		buf[i] = vm.read(in, in.Args[2])
		frame.IP++

	case ir.OpCall:
		return vm.eb.unimplemented("CALL")

	default:
		return vm.eb.unimplemented(fmt.Sprintf("opcode %s", in.Op))
	}
	return nil
}

// evalBinary computes arithmetic with int64 wraparound. Division by zero
// yields 0; comparisons yield 0 or 1.
func evalBinary(op ir.Opcode, a, b int64) int64 {
	switch op {
	case ir.OpAdd:
		return a + b
	case ir.OpSub:
		return a - b
	case ir.OpMul:
		return a * b
	case ir.OpDiv:
		if b == 0 {
			return 0
		}
		return a / b
	case ir.OpLt:
		return boolInt(a < b)
	case ir.OpGt:
		return boolInt(a > b)
	case ir.OpEq:
		return boolInt(a == b)
	case ir.OpNeq:
		return boolInt(a != b)
	}
	return 0
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// read evaluates a value operand. A register never written reads as 0.
func (vm *VM) read(in *ir.Instr, op ir.Operand) int64 {
	switch op.Kind {
	case ir.OperandConst:
		v, ok := op.Int()
		if !ok {
			panic(vm.eb.malformed(in, fmt.Sprintf("bad constant %q", op.Name)))
		}
		return v
	case ir.OperandVar:
		return vm.regs[regKey{name: op.Name, version: op.Version}]
	}
	panic(vm.eb.malformed(in, fmt.Sprintf("%s operand used as a value", op.Kind)))
}

// RegWrite records one register modification.
type RegWrite struct {
	Reg   ir.Operand
	Value int64
}

func (vm *VM) write(dst ir.Operand, v int64) []RegWrite {
	if !dst.IsVar() {
		panic(vm.eb.makeError(PanicMalformed, fmt.Sprintf("result %q is not a variable", dst.String())))
	}
	vm.regs[regKey{name: dst.Name, version: dst.Version}] = v
	return []RegWrite{{Reg: dst, Value: v}}
}

func (vm *VM) target(in *ir.Instr) (ir.BlockID, *VMError) {
	label, ok := in.Target()
	if !ok {
		return ir.NoBlockID, vm.eb.malformed(in, "missing label")
	}
	to, ok := vm.labels[label]
	if !ok {
		return ir.NoBlockID, vm.eb.unknownLabel(label)
	}
	return to, nil
}

// element resolves array[index] with a bounds check.
func (vm *VM) element(in *ir.Instr, name string, index ir.Operand) ([]int64, int, *VMError) {
	buf, ok := vm.mem[name]
	if !ok {
		return nil, 0, vm.eb.arrayNotFound(name)
	}
	idx := vm.read(in, index)
	i, err := safecast.Conv[int](idx)
	if err != nil || i < 0 || i >= len(buf) {
		return nil, 0, vm.eb.outOfBounds(name, idx, len(buf))
	}
	return buf, i, nil
}

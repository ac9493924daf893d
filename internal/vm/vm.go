// Package vm interprets IR functions block by block.
//
// Registers are keyed by variable name and SSA version, so the same
// interpreter runs both raw builder output (every version 0) and SSA form.
// Array memory is keyed by array name only. A block that ends without a
// taken jump or RET continues in the next block in creation order; when
// there is none the program halts with result 0.
package vm

import (
	"context"

	"optimix/internal/ir"
)

// Options configures VM execution.
type Options struct {
	// MaxSteps bounds the number of steps; 0 means unlimited.
	MaxSteps int64
	// LenientPhi makes a PHI with no pair for the incoming block a no-op
	// instead of a fault.
	LenientPhi bool
	// Trace receives one line per step when non-nil.
	Trace *Tracer
}

// cancelCheckInterval is how many steps Run executes between context checks.
const cancelCheckInterval = 1024

type regKey struct {
	name    string
	version int
}

// VM is a direct IR interpreter for one function. A VM runs once; create a
// new one for every execution.
type VM struct {
	Func   *ir.Func
	RT     Runtime
	Trace  *Tracer
	Steps  int64
	Result int64
	Halted bool

	opts   Options
	labels map[string]ir.BlockID
	regs   map[regKey]int64
	mem    map[string][]int64
	frame  Frame
	eb     *errorBuilder
}

// New creates a VM for f. f is only read.
func New(f *ir.Func, rt Runtime, opts Options) *VM {
	vm := &VM{
		Func:  f,
		RT:    rt,
		Trace: opts.Trace,
		opts:  opts,
		regs:  make(map[regKey]int64),
		mem:   make(map[string][]int64),
	}
	vm.eb = &errorBuilder{vm: vm}
	if vm.RT == nil {
		vm.RT = NewDefaultRuntime()
	}
	if f == nil || len(f.Blocks) == 0 {
		vm.Halted = true
		vm.frame = Frame{Func: f, BB: ir.NoBlockID, Prev: ir.NoBlockID}
		return vm
	}
	vm.labels = make(map[string]ir.BlockID, len(f.Blocks))
	for i := range f.Blocks {
		if _, dup := vm.labels[f.Blocks[i].Label]; !dup {
			vm.labels[f.Blocks[i].Label] = ir.BlockID(i)
		}
	}
	vm.frame = NewFrame(f)
	return vm
}

// Run executes until RET, an implicit halt or a fault.
func (vm *VM) Run(ctx context.Context) (int64, *VMError) {
	for !vm.Halted {
		if vm.Steps%cancelCheckInterval == 0 && ctx != nil {
			if err := ctx.Err(); err != nil {
				return 0, vm.eb.cancelled(err)
			}
		}
		if vmErr := vm.Step(); vmErr != nil {
			return 0, vmErr
		}
	}
	return vm.Result, nil
}

// Step executes exactly one instruction, one block entry (PHI resolution)
// or one fallthrough transition.
func (vm *VM) Step() (vmErr *VMError) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*VMError); ok {
				vmErr = e
				return
			}
			panic(r)
		}
	}()

	if vm.Halted {
		return nil
	}
	vm.Steps++
	if vm.opts.MaxSteps > 0 && vm.Steps > vm.opts.MaxSteps {
		return vm.eb.stepLimit(vm.opts.MaxSteps)
	}

	frame := &vm.frame
	if !frame.Entered {
		return vm.enterBlock(frame)
	}
	if frame.AtBlockEnd() {
		vm.advanceBlock(frame)
		return nil
	}
	return vm.execInstr(frame, frame.CurrentInstr())
}

// Frame returns the current position.
func (vm *VM) Frame() Frame {
	return vm.frame
}

// Register returns the value of a register and whether it was ever written.
func (vm *VM) Register(name string, version int) (int64, bool) {
	v, ok := vm.regs[regKey{name: name, version: version}]
	return v, ok
}

// Array returns a copy of an allocated array, or nil.
func (vm *VM) Array(name string) []int64 {
	buf, ok := vm.mem[name]
	if !ok {
		return nil
	}
	return append([]int64(nil), buf...)
}

// Execute runs f on a fresh VM. It is the single place where a fault turns
// into an error: the returned value is meaningful only when err is nil.
func Execute(ctx context.Context, f *ir.Func, rt Runtime, opts Options) (int64, error) {
	res, vmErr := New(f, rt, opts).Run(ctx)
	if vmErr != nil {
		return 0, vmErr
	}
	return res, nil
}

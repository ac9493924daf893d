package ir

import (
	"errors"
	"fmt"
)

// Validate checks function invariants and returns every violation joined.
func Validate(f *Func) error {
	if f == nil {
		return nil
	}
	var errs []error

	if err := validateLabels(f); err != nil {
		errs = append(errs, err)
	}
	if err := validatePhiPlacement(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateTargets(f); err != nil {
		errs = append(errs, err)
	}
	if err := validateOperands(f); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("function %s: %w", f.Name, err)
	}
	return nil
}

// validateLabels checks that labels are unique and the first block is entry.
func validateLabels(f *Func) error {
	if len(f.Blocks) == 0 {
		return errors.New("no blocks")
	}
	var errs []error
	if f.Blocks[0].Label != EntryLabel {
		errs = append(errs, fmt.Errorf("first block is %q, want %q", f.Blocks[0].Label, EntryLabel))
	}
	seen := make(map[string]int, len(f.Blocks))
	for i := range f.Blocks {
		label := f.Blocks[i].Label
		if label == "" {
			errs = append(errs, fmt.Errorf("block #%d: empty label", i))
			continue
		}
		if prev, dup := seen[label]; dup {
			errs = append(errs, fmt.Errorf("block #%d: label %q already used by block #%d", i, label, prev))
			continue
		}
		seen[label] = i
	}
	return errors.Join(errs...)
}

// validatePhiPlacement checks that PHIs only appear at block heads.
func validatePhiPlacement(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		head := bb.PhiCount()
		for j := head; j < len(bb.Instrs); j++ {
			if bb.Instrs[j].Op == OpPhi {
				errs = append(errs, fmt.Errorf("%s:%d: PHI after non-PHI instruction", bb.Label, j))
			}
		}
	}
	return errors.Join(errs...)
}

// validateTargets checks that jump and PHI labels name existing blocks.
func validateTargets(f *Func) error {
	labels := make(map[string]bool, len(f.Blocks))
	for i := range f.Blocks {
		labels[f.Blocks[i].Label] = true
	}
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			in := &bb.Instrs[j]
			if target, ok := in.Target(); ok && !labels[target] {
				errs = append(errs, fmt.Errorf("%s:%d: %s target %q does not exist", bb.Label, j, in.Op, target))
			}
			for _, e := range in.Edges() {
				if !labels[e.Pred] {
					errs = append(errs, fmt.Errorf("%s:%d: PHI predecessor %q does not exist", bb.Label, j, e.Pred))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// validateOperands checks arity and operand kinds per opcode.
func validateOperands(f *Func) error {
	var errs []error
	for i := range f.Blocks {
		bb := &f.Blocks[i]
		for j := range bb.Instrs {
			if err := checkInstr(&bb.Instrs[j]); err != nil {
				errs = append(errs, fmt.Errorf("%s:%d: %w", bb.Label, j, err))
			}
		}
	}
	return errors.Join(errs...)
}

func checkInstr(in *Instr) error {
	value := func(i int) error {
		switch in.Args[i].Kind {
		case OperandVar:
			if in.Args[i].Name == "" {
				return fmt.Errorf("%s: operand %d has empty name", in.Op, i)
			}
			return nil
		case OperandConst:
			if _, ok := in.Args[i].Int(); !ok {
				return fmt.Errorf("%s: operand %d: bad constant %q", in.Op, i, in.Args[i].Name)
			}
			return nil
		}
		return fmt.Errorf("%s: operand %d is a %s, want a value", in.Op, i, in.Args[i].Kind)
	}
	arity := func(n int) error {
		if len(in.Args) != n {
			return fmt.Errorf("%s: got %d operands, want %d", in.Op, len(in.Args), n)
		}
		return nil
	}
	result := func(want bool) error {
		if want && (!in.Result.IsVar() || in.Result.Name == "") {
			return fmt.Errorf("%s: result must be a variable", in.Op)
		}
		if !want && !in.Result.IsNone() {
			return fmt.Errorf("%s: unexpected result %s", in.Op, in.Result)
		}
		return nil
	}
	array := func() error {
		if !in.Args[0].IsVar() || in.Args[0].Name == "" {
			return fmt.Errorf("%s: operand 0 must name an array", in.Op)
		}
		return nil
	}

	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	switch {
	case in.Op.IsArith(), in.Op.IsCompare():
		add(result(true))
		if err := arity(2); err != nil {
			return err
		}
		add(value(0))
		add(value(1))
	case in.Op == OpMov:
		add(result(true))
		if err := arity(1); err != nil {
			return err
		}
		add(value(0))
	case in.Op == OpJmp:
		add(result(false))
		if err := arity(1); err != nil {
			return err
		}
		if in.Args[0].Kind != OperandLabel {
			add(fmt.Errorf("JMP: operand 0 must be a label"))
		}
	case in.Op == OpJmpIf:
		add(result(false))
		if err := arity(2); err != nil {
			return err
		}
		if in.Args[0].Kind != OperandLabel {
			add(fmt.Errorf("JMP_IF: operand 0 must be a label"))
		}
		add(value(1))
	case in.Op == OpPhi:
		add(result(true))
		if len(in.Args) == 0 || len(in.Args)%2 != 0 {
			return fmt.Errorf("PHI: got %d operands, want (value, label) pairs", len(in.Args))
		}
		for k := 0; k < len(in.Args); k += 2 {
			add(value(k))
			if in.Args[k+1].Kind != OperandLabel {
				add(fmt.Errorf("PHI: operand %d must be a label", k+1))
			}
		}
	case in.Op == OpRet, in.Op == OpPrint:
		add(result(false))
		if err := arity(1); err != nil {
			return err
		}
		add(value(0))
	case in.Op == OpAlloca:
		add(result(false))
		if err := arity(2); err != nil {
			return err
		}
		add(array())
		add(value(1))
	case in.Op == OpLoad:
		add(result(true))
		if err := arity(2); err != nil {
			return err
		}
		add(array())
		add(value(1))
	case in.Op == OpStore:
		add(result(false))
		if err := arity(3); err != nil {
			return err
		}
		add(array())
		add(value(1))
		add(value(2))
	case in.Op == OpCall:
		// reserved: accepted structurally, rejected at run time
	default:
		add(fmt.Errorf("unknown opcode %s", in.Op))
	}
	return errors.Join(errs...)
}

// Package fuzztests holds fuzz harnesses that push arbitrary source text
// through the whole pipeline (parse, build, validate, ssa, exec) and check
// that nothing panics, hangs or breaks the SSA invariants.
package fuzztests

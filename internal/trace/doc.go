// Package trace records spans for the optimix pipeline.
//
// Spans mark the stages a program goes through (parse, build, validate,
// ssa, exec) so a slow or hanging run can be located after the fact.
//
// Enable tracing from the command line:
//
//	optimix run --trace=- --trace-level=phase prog.mini
//
// # Tracers
//
//   - Nop: disabled tracing, every call is free
//   - StreamTracer: formats and writes each event as it happens
//   - RingTracer: keeps the last N events for a post-mortem dump
//   - MultiTracer: fans events out to several tracers
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: ring only, dumped when a run faults
//   - LevelPhase: driver and stage boundaries
//   - LevelDetail: adds one span per compiled function
//   - LevelDebug: adds point events (SSA stats, VM results)
//
// # Context
//
// The tracer and the current span travel in a context.Context:
//
//	ctx = trace.WithTracer(ctx, t)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "ssa", parent)
//	defer span.End("")
package trace

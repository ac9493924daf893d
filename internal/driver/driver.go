// Package driver runs the optimix pipeline: parse, build, validate, ssa and
// exec. Every phase opens a trace span, records an observ.Timer phase and
// logs its boundaries through the optimix.driver logger.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/tliron/commonlog"

	"optimix/internal/ast"
	"optimix/internal/ir"
	"optimix/internal/observ"
	"optimix/internal/parser"
	"optimix/internal/ssa"
	"optimix/internal/trace"
	"optimix/internal/vm"
)

var log = commonlog.GetLogger("optimix.driver")

// Options configures compilation and execution.
type Options struct {
	NoSSA      bool  // stop after the builder and run raw IR
	MaxSteps   int64 // VM step budget, 0 for unlimited
	LenientPhi bool
	Jobs       int       // RunFiles parallelism, <= 0 for GOMAXPROCS
	VMTrace    io.Writer // per-step VM trace, nil to disable
	Observer   PhaseObserver
	Cache      *Cache
}

// Artifact is a compiled program.
type Artifact struct {
	Name   string
	Source *ast.Func // nil when loaded from disk
	Func   *ir.Func
	SSA    bool
	Stats  ssa.Stats
	Cached bool
	Timer  *observ.Timer
}

func newArtifact(name string) *Artifact {
	return &Artifact{Name: name, Timer: observ.NewTimer()}
}

// phase runs fn as one named pipeline phase.
func (a *Artifact) phase(ctx context.Context, opts Options, name string, fn func() (string, error)) error {
	_, span := trace.Start(ctx, trace.ScopePhase, name)
	opts.Observer.notify(PhaseEvent{Unit: a.Name, Name: name, Status: PhaseStart})
	log.Debugf("%s: %s", a.Name, name)

	start := time.Now()
	idx := a.Timer.Begin(name)
	note, err := fn()
	a.Timer.End(idx, note)
	elapsed := time.Since(start)

	detail := note
	if err != nil {
		detail = "error"
		span.WithExtra("error", err.Error())
	}
	span.End(detail)
	opts.Observer.notify(PhaseEvent{Unit: a.Name, Name: name, Status: PhaseEnd, Elapsed: elapsed, Note: note, Err: err})
	if err != nil {
		log.Debugf("%s: %s failed: %s", a.Name, name, err)
		return err
	}
	log.Debugf("%s: %s done in %s %s", a.Name, name, elapsed.Round(time.Microsecond), note)
	return nil
}

// Compile lowers fn to IR, validates it and, unless opts.NoSSA is set,
// converts it to SSA form and validates it again.
func Compile(ctx context.Context, fn *ast.Func, opts Options) (*Artifact, error) {
	if fn == nil {
		return nil, errors.New("driver: nil function")
	}
	ctx, span := trace.Start(ctx, trace.ScopeFunc, "func:"+fn.Name)
	defer span.End("")

	art := newArtifact(fn.Name)
	if err := art.compile(ctx, fn, opts); err != nil {
		return nil, err
	}
	return art, nil
}

func (a *Artifact) compile(ctx context.Context, fn *ast.Func, opts Options) error {
	a.Source = fn
	err := a.phase(ctx, opts, "build", func() (string, error) {
		f, err := ir.Build(fn)
		if err != nil {
			return "", err
		}
		a.Func = f
		return fmt.Sprintf("blocks=%d instrs=%d", len(f.Blocks), f.InstrCount()), nil
	})
	if err != nil {
		return err
	}
	if err := a.phase(ctx, opts, "validate", func() (string, error) { return "", ir.Validate(a.Func) }); err != nil {
		return err
	}
	if opts.NoSSA {
		return nil
	}

	err = a.phase(ctx, opts, "ssa", func() (string, error) {
		st, err := ssa.Run(a.Func)
		if err != nil {
			return "", err
		}
		a.Stats = st
		a.SSA = true
		trace.Point(trace.FromContext(ctx), trace.ScopeEvent, "ssa.stats", trace.CurrentSpan(ctx).SpanID, a.Name, map[string]string{
			"blocks":      strconv.Itoa(st.Blocks),
			"unreachable": strconv.Itoa(st.Unreachable),
			"edges":       strconv.Itoa(st.Edges),
			"phis":        strconv.Itoa(st.Phis),
			"defs":        strconv.Itoa(st.Defs),
		})
		return fmt.Sprintf("phis=%d defs=%d", st.Phis, st.Defs), nil
	})
	if err != nil {
		return err
	}
	return a.phase(ctx, opts, "verify", func() (string, error) { return "", ir.Validate(a.Func) })
}

// CompileFile reads, parses and compiles one source file.
func CompileFile(ctx context.Context, path string, opts Options) (*Artifact, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return CompileSource(ctx, path, src, opts)
}

// CompileSource parses and compiles src. name is used for diagnostics.
// With opts.Cache set, a previously compiled artifact for the same source
// and SSA setting is reused.
func CompileSource(ctx context.Context, name string, src []byte, opts Options) (*Artifact, error) {
	ctx, span := trace.Start(ctx, trace.ScopeFunc, "file:"+name)
	defer span.End("")

	art := newArtifact(name)
	key := CacheKey(src, !opts.NoSSA)
	if opts.Cache != nil {
		var hit bool
		err := art.phase(ctx, opts, "cache", func() (string, error) {
			cached, ok, err := opts.Cache.Get(key)
			if err != nil || !ok {
				return "miss", err
			}
			hit = true
			art.Func, art.SSA, art.Cached = cached.Func, cached.SSA, true
			return "hit", nil
		})
		if err != nil {
			log.Warningf("%s: ignoring cache: %s", name, err)
		}
		if hit {
			return art, nil
		}
	}

	var fn *ast.Func
	err := art.phase(ctx, opts, "parse", func() (string, error) {
		var err error
		fn, err = parser.ParseSource(name, string(src))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("stmts=%d", len(fn.Body)), nil
	})
	if err != nil {
		return nil, err
	}
	if err := art.compile(ctx, fn, opts); err != nil {
		return nil, err
	}
	if opts.Cache != nil {
		if err := opts.Cache.Put(key, art.Func, art.SSA); err != nil {
			log.Warningf("%s: cache write failed: %s", name, err)
		}
	}
	return art, nil
}

// Load reads an artifact written by ir.SaveArtifact.
func Load(ctx context.Context, path string, opts Options) (*Artifact, error) {
	art := newArtifact(path)
	err := art.phase(ctx, opts, "load", func() (string, error) {
		loaded, err := ir.LoadArtifact(path)
		if err != nil {
			return "", err
		}
		art.Func, art.SSA = loaded.Func, loaded.SSA
		return fmt.Sprintf("ssa=%t", loaded.SSA), nil
	})
	if err != nil {
		return nil, err
	}
	return art, nil
}

// Run executes art on a fresh VM. A fault is returned as a *vm.VMError.
func Run(ctx context.Context, art *Artifact, rt vm.Runtime, opts Options) (int64, error) {
	if art == nil || art.Func == nil {
		return 0, errors.New("driver: nil artifact")
	}
	vmOpts := vm.Options{MaxSteps: opts.MaxSteps, LenientPhi: opts.LenientPhi}
	if opts.VMTrace != nil {
		vmOpts.Trace = vm.NewTracer(opts.VMTrace)
	}

	var res int64
	err := art.phase(ctx, opts, "exec", func() (string, error) {
		machine := vm.New(art.Func, rt, vmOpts)
		out, vmErr := machine.Run(ctx)
		note := fmt.Sprintf("steps=%d", machine.Steps)
		trace.Point(trace.FromContext(ctx), trace.ScopeEvent, "exec.result", trace.CurrentSpan(ctx).SpanID, art.Name, map[string]string{
			"steps":  strconv.FormatInt(machine.Steps, 10),
			"result": strconv.FormatInt(out, 10),
		})
		if vmErr != nil {
			return note, vmErr
		}
		res = out
		return note, nil
	})
	if err != nil {
		return 0, err
	}
	return res, nil
}

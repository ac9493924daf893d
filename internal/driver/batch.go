package driver

import (
	"bytes"
	"context"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"optimix/internal/trace"
	"optimix/internal/vm"
)

// FileResult is the outcome of one program in RunFiles.
type FileResult struct {
	Path     string
	Artifact *Artifact // nil when compilation failed
	Result   int64
	Output   []byte // PRINT output
	Trace    []byte // VM trace, when Options.VMTrace is set
	Err      error  // compile error or *vm.VMError
}

// RunFiles compiles and executes each path concurrently, at most opts.Jobs
// at a time. Every program gets its own VM and output buffer; results come
// back in input order. Per-file failures are reported in FileResult.Err;
// the returned error is only set when ctx is cancelled. When opts.VMTrace
// is set, the per-file traces are also copied to it in input order.
func RunFiles(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "run_files")
	defer span.End("")

	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	span.WithExtra("files", strconv.Itoa(len(paths))).WithExtra("jobs", strconv.Itoa(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// index i is owned by this goroutine
			results[i] = runOne(gctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	if opts.VMTrace != nil {
		for i := range results {
			if _, err := opts.VMTrace.Write(results[i].Trace); err != nil {
				return results, err
			}
		}
	}
	return results, nil
}

func runOne(ctx context.Context, path string, opts Options) FileResult {
	res := FileResult{Path: path}
	var out, traceBuf bytes.Buffer
	if opts.VMTrace != nil {
		opts.VMTrace = &traceBuf
	}

	art, err := CompileFile(ctx, path, opts)
	if err != nil {
		res.Err = err
		return res
	}
	res.Artifact = art

	rt := vm.NewRuntimeWithWriter(&out)
	res.Result, res.Err = Run(ctx, art, rt, opts)
	res.Output = out.Bytes()
	res.Trace = traceBuf.Bytes()
	return res
}

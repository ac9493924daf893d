package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optimix/internal/ast"
	"optimix/internal/ir"
	"optimix/internal/parser"
	"optimix/internal/testkit"
	"optimix/internal/trace"
	"optimix/internal/vm"
)

func phaseNames(a *Artifact) []string {
	var names []string
	for _, p := range a.Timer.Phases() {
		names = append(names, p.Name)
	}
	return names
}

func TestCompileAndRunSamples(t *testing.T) {
	for _, p := range testkit.Programs() {
		for _, noSSA := range []bool{false, true} {
			t.Run(p.Name+"/ssa="+strconv.FormatBool(!noSSA), func(t *testing.T) {
				opts := Options{NoSSA: noSSA}
				art, err := CompileSource(context.Background(), p.Name+".mini", []byte(p.Source), opts)
				require.NoError(t, err)
				assert.Equal(t, !noSSA, art.SSA)
				if !noSSA {
					require.NoError(t, testkit.CheckSSAInvariants(art.Func))
				}

				rt := vm.NewTestRuntime()
				res, err := Run(context.Background(), art, rt, opts)
				if p.Fault != 0 {
					var vmErr *vm.VMError
					require.ErrorAs(t, err, &vmErr)
					assert.Equal(t, p.Fault, vmErr.Code)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, p.Result, res)
				assert.Equal(t, p.Output, rt.Printed())
			})
		}
	}
}

func TestCompilePhases(t *testing.T) {
	p, ok := testkit.Lookup("factorial")
	require.True(t, ok)

	art, err := Compile(context.Background(), p.AST(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "validate", "ssa", "verify"}, phaseNames(art))
	assert.Equal(t, "main", art.Name)
	assert.Equal(t, 2, art.Stats.Phis) // n and result

	raw, err := Compile(context.Background(), p.AST(), Options{NoSSA: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "validate"}, phaseNames(raw))
	assert.Zero(t, raw.Stats)

	_, err = Compile(context.Background(), nil, Options{})
	assert.Error(t, err)
}

func TestCompileSourcePhasesAndErrors(t *testing.T) {
	art, err := CompileSource(context.Background(), "p.mini", []byte("int main() { return 1 + 2; }"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"parse", "build", "validate", "ssa", "verify"}, phaseNames(art))
	assert.Equal(t, "stmts=1", art.Timer.Phases()[0].Note)

	_, err = CompileSource(context.Background(), "bad.mini", []byte("int main() { return 1 +; }"), Options{})
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "bad.mini", perr.Pos.Filename)

	fn := ast.NewFunc("main", ast.Return(ast.Bin("%", ast.Int(1), ast.Int(2))))
	_, err = Compile(context.Background(), fn, Options{})
	var berr *ir.BuildError
	require.ErrorAs(t, err, &berr)
}

func TestObserverSeesEveryPhase(t *testing.T) {
	var mu sync.Mutex
	var events []PhaseEvent
	opts := Options{Observer: func(ev PhaseEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	}}
	art, err := CompileSource(context.Background(), "p.mini", []byte("int main() { print(1); return 0; }"), opts)
	require.NoError(t, err)
	_, err = Run(context.Background(), art, vm.NewTestRuntime(), opts)
	require.NoError(t, err)

	require.Len(t, events, 12)
	assert.Equal(t, PhaseEvent{Unit: "p.mini", Name: "parse", Status: PhaseStart}, events[0])
	last := events[len(events)-1]
	assert.Equal(t, "exec", last.Name)
	assert.Equal(t, PhaseEnd, last.Status)
	assert.Equal(t, "steps=3", last.Note)
	assert.NoError(t, last.Err)
}

func TestRunFaultIsVMError(t *testing.T) {
	p, _ := testkit.Lookup("out_of_bounds")
	art, err := CompileSource(context.Background(), "oob.mini", []byte(p.Source), Options{})
	require.NoError(t, err)

	res, err := Run(context.Background(), art, vm.NewTestRuntime(), Options{})
	assert.Zero(t, res)
	var vmErr *vm.VMError
	require.ErrorAs(t, err, &vmErr)
	assert.Equal(t, vm.PanicOutOfBounds, vmErr.Code)

	_, err = Run(context.Background(), nil, vm.NewTestRuntime(), Options{})
	assert.Error(t, err)
}

func TestRunStepLimitAndTrace(t *testing.T) {
	src := []byte("int main() { int x = 0; while (x < 1) { x = x; } return 0; }")
	art, err := CompileSource(context.Background(), "spin.mini", src, Options{})
	require.NoError(t, err)

	var vmErr *vm.VMError
	_, err = Run(context.Background(), art, vm.NewTestRuntime(), Options{MaxSteps: 100})
	require.ErrorAs(t, err, &vmErr)
	assert.Equal(t, vm.PanicStepLimit, vmErr.Code)

	var buf bytes.Buffer
	art, err = CompileSource(context.Background(), "p.mini", []byte("int main() { return 5; }"), Options{})
	require.NoError(t, err)
	res, err := Run(context.Background(), art, vm.NewTestRuntime(), Options{VMTrace: &buf})
	require.NoError(t, err)
	assert.EqualValues(t, 5, res)
	assert.Equal(t, "main enter entry\nmain entry:ip0 RET 5\n", buf.String())
}

func TestTraceSpans(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)

	art, err := CompileSource(ctx, "p.mini", []byte("int main() { return 2 * 3; }"), Options{})
	require.NoError(t, err)
	_, err = Run(ctx, art, vm.NewTestRuntime(), Options{})
	require.NoError(t, err)

	var begins []string
	var points []string
	for _, ev := range ring.Snapshot() {
		switch ev.Kind {
		case trace.KindSpanBegin:
			begins = append(begins, ev.Name)
		case trace.KindPoint:
			points = append(points, ev.Name)
		}
	}
	assert.Equal(t, []string{"file:p.mini", "parse", "build", "validate", "ssa", "verify", "exec"}, begins)
	assert.Equal(t, []string{"ssa.stats", "exec.result"}, points)
}

func writeProgram(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunFilesKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	var want []testkit.Program
	for _, p := range testkit.Programs() {
		paths = append(paths, writeProgram(t, dir, p.Name+".mini", p.Source))
		want = append(want, p)
	}
	paths = append(paths, filepath.Join(dir, "missing.mini"))
	paths = append(paths, writeProgram(t, dir, "broken.mini", "int main() {"))

	results, err := RunFiles(context.Background(), paths, Options{Jobs: 3})
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, p := range want {
		r := results[i]
		assert.Equal(t, paths[i], r.Path)
		if p.Fault != 0 {
			var vmErr *vm.VMError
			require.ErrorAs(t, r.Err, &vmErr, p.Name)
			continue
		}
		require.NoError(t, r.Err, p.Name)
		assert.Equal(t, p.Result, r.Result, p.Name)
		var lines []string
		for _, v := range p.Output {
			lines = append(lines, strconv.FormatInt(v, 10)+"\n")
		}
		assert.Equal(t, strings.Join(lines, ""), string(r.Output), p.Name)
	}

	missing := results[len(want)]
	assert.ErrorIs(t, missing.Err, os.ErrNotExist)
	assert.Nil(t, missing.Artifact)

	var perr *parser.Error
	assert.ErrorAs(t, results[len(want)+1].Err, &perr)
}

func TestRunFilesTraceAndCancel(t *testing.T) {
	dir := t.TempDir()
	a := writeProgram(t, dir, "a.mini", "int main() { return 1; }")
	b := writeProgram(t, dir, "b.mini", "int main() { return 2; }")

	var buf bytes.Buffer
	results, err := RunFiles(context.Background(), []string{a, b}, Options{Jobs: 2, VMTrace: &buf})
	require.NoError(t, err)
	assert.Equal(t, "main enter entry\nmain entry:ip0 RET 1\n", string(results[0].Trace))
	assert.Equal(t, "main enter entry\nmain entry:ip0 RET 1\nmain enter entry\nmain entry:ip0 RET 2\n", buf.String())

	empty, err := RunFiles(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunFiles(ctx, []string{a, b}, Options{Jobs: 1})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	src := []byte("int main() { int x = 4; while (x > 1) { x = x - 1; } return x; }")

	first, err := CompileSource(context.Background(), "c.mini", src, Options{Cache: cache})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := CompileSource(context.Background(), "c.mini", src, Options{Cache: cache})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.True(t, second.SSA)
	assert.Equal(t, []string{"cache"}, phaseNames(second))
	assert.Equal(t, first.Func.String(), second.Func.String())

	res, err := Run(context.Background(), second, vm.NewTestRuntime(), Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res)

	// raw and SSA builds never share an entry
	raw, err := CompileSource(context.Background(), "c.mini", src, Options{Cache: cache, NoSSA: true})
	require.NoError(t, err)
	assert.False(t, raw.Cached)
	assert.NotEqual(t, CacheKey(src, true), CacheKey(src, false))

	require.NoError(t, cache.DropAll())
	again, err := CompileSource(context.Background(), "c.mini", src, Options{Cache: cache})
	require.NoError(t, err)
	assert.False(t, again.Cached)
}

func TestCacheIgnoresCorruptEntry(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	src := []byte("int main() { return 3; }")
	key := CacheKey(src, true)
	require.NoError(t, os.MkdirAll(filepath.Dir(cache.pathFor(key)), 0o755))
	require.NoError(t, os.WriteFile(cache.pathFor(key), []byte("junk"), 0o644))

	art, err := CompileSource(context.Background(), "c.mini", src, Options{Cache: cache})
	require.NoError(t, err)
	assert.False(t, art.Cached)

	var nilCache *Cache
	_, ok, err := nilCache.Get(key)
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.NoError(t, nilCache.Put(key, art.Func, true))
}

func TestLoadArtifact(t *testing.T) {
	art, err := CompileSource(context.Background(), "p.mini", []byte("int main() { print(9); return 4; }"), Options{})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "p.oir")
	require.NoError(t, ir.SaveArtifact(path, art.Func, art.SSA))

	loaded, err := Load(context.Background(), path, Options{})
	require.NoError(t, err)
	assert.True(t, loaded.SSA)
	rt := vm.NewTestRuntime()
	res, err := Run(context.Background(), loaded, rt, Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, res)
	assert.Equal(t, []int64{9}, rt.Printed())

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "nope.oir"), Options{})
	assert.Error(t, err)
}

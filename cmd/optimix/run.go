package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"optimix/internal/driver"
	"optimix/internal/ir"
	"optimix/internal/parser"
	"optimix/internal/vm"
)

var runCmd = &cobra.Command{
	Use:     "run [flags] <file>...",
	Aliases: []string{"compile"},
	Short:   "Compile and execute programs",
	Long: `Compile each file to IR, convert it to SSA form and execute it on the interpreter.
With several files, programs run concurrently and their output is printed in argument order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExecution,
}

func init() {
	addCompileFlags(runCmd)
	runCmd.Flags().Int64("max-steps", 0, "abort after this many VM steps (0 = unlimited)")
	runCmd.Flags().Bool("lenient-phi", false, "treat a PHI without a matching predecessor as a no-op")
	runCmd.Flags().Bool("vm-trace", false, "trace every VM step to stderr")
	runCmd.Flags().Int("jobs", 0, "programs to run in parallel (0 = GOMAXPROCS)")
	runCmd.Flags().Bool("emit-ir", false, "print the IR before running")
	runCmd.Flags().Bool("watch", false, "re-run when a file changes")
	runCmd.Flags().String("ui", "auto", "live progress for several files (auto|on|off)")
}

func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-ssa", false, "skip the SSA pass and use raw builder output")
	cmd.Flags().Bool("cache", false, "reuse compiled artifacts from the user cache directory")
}

// runSettings are the run flags after config defaults were applied.
type runSettings struct {
	opts    driver.Options
	vmTrace bool
	emitIR  bool
	quiet   bool
	timings bool
	ui      uiMode
}

func compileOptions(cmd *cobra.Command) (driver.Options, error) {
	var opts driver.Options
	noSSA, err := cmd.Flags().GetBool("no-ssa")
	if err != nil {
		return opts, fmt.Errorf("failed to get no-ssa flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return opts, fmt.Errorf("failed to get cache flag: %w", err)
	}
	opts.NoSSA = noSSA
	if useCache {
		cache, err := driver.OpenCache("optimix")
		if err != nil {
			log.Warningf("artifact cache disabled: %s", err)
		} else {
			opts.Cache = cache
		}
	}
	if verbose, _ := cmd.Flags().GetCount("verbose"); verbose >= 3 {
		opts.Observer = logPhase
	}
	return opts, nil
}

func readRunSettings(cmd *cobra.Command) (runSettings, error) {
	var s runSettings
	opts, err := compileOptions(cmd)
	if err != nil {
		return s, err
	}
	s.opts = opts
	flags := cmd.Flags()
	if s.opts.MaxSteps, err = flags.GetInt64("max-steps"); err != nil {
		return s, fmt.Errorf("failed to get max-steps flag: %w", err)
	}
	if s.opts.MaxSteps < 0 {
		return s, fmt.Errorf("--max-steps must not be negative")
	}
	if s.opts.LenientPhi, err = flags.GetBool("lenient-phi"); err != nil {
		return s, fmt.Errorf("failed to get lenient-phi flag: %w", err)
	}
	if s.opts.Jobs, err = flags.GetInt("jobs"); err != nil {
		return s, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if s.vmTrace, err = flags.GetBool("vm-trace"); err != nil {
		return s, fmt.Errorf("failed to get vm-trace flag: %w", err)
	}
	if s.emitIR, err = flags.GetBool("emit-ir"); err != nil {
		return s, fmt.Errorf("failed to get emit-ir flag: %w", err)
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return s, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if s.ui, err = readUIMode(uiValue); err != nil {
		return s, err
	}
	return s, nil
}

func runExecution(cmd *cobra.Command, args []string) error {
	s, err := readRunSettings(cmd)
	if err != nil {
		return err
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("failed to get watch flag: %w", err)
	}
	if watch {
		return watchAndRun(cmd, args, s)
	}
	return runFiles(cmd, args, s)
}

// runFiles executes one file with streaming output, or several files
// concurrently with buffered output.
func runFiles(cmd *cobra.Command, paths []string, s runSettings) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if s.vmTrace {
		s.opts.VMTrace = stderr
	}

	if len(paths) == 1 {
		return runSingle(cmd, paths[0], s)
	}

	var results []driver.FileResult
	var err error
	if !s.quiet && shouldUseTUI(s.ui, stderr) {
		results, err = runFilesWithUI(cmd.Context(), stderr, paths, s.opts)
	} else {
		results, err = driver.RunFiles(cmd.Context(), paths, s.opts)
	}
	if err != nil {
		return err
	}
	failed := 0
	for i := range results {
		r := &results[i]
		fmt.Fprintf(stdout, "==> %s <==\n", r.Path)
		if r.Artifact != nil && s.emitIR {
			if err := ir.Dump(stdout, r.Artifact.Func, ir.DumpOptions{Color: useColor()}); err != nil {
				return err
			}
		}
		if _, err := stdout.Write(r.Output); err != nil {
			return err
		}
		if !reportOutcome(cmd, r.Path, r.Artifact, r.Result, r.Err, s) {
			failed++
		}
	}
	if failed > 0 {
		return &exitError{err: fmt.Errorf("%d of %d programs failed", failed, len(results))}
	}
	return nil
}

func runSingle(cmd *cobra.Command, path string, s runSettings) error {
	stdout := cmd.OutOrStdout()
	art, err := driver.CompileFile(cmd.Context(), path, s.opts)
	if err != nil {
		reportOutcome(cmd, path, nil, 0, err, s)
		return &exitError{err: err}
	}
	if s.emitIR {
		if err := ir.Dump(stdout, art.Func, ir.DumpOptions{Color: useColor()}); err != nil {
			return err
		}
	}
	rt := vm.NewRuntimeWithWriter(stdout)
	res, err := driver.Run(cmd.Context(), art, rt, s.opts)
	if err == nil {
		err = rt.Err()
	}
	if !reportOutcome(cmd, path, art, res, err, s) {
		return &exitError{err: err}
	}
	return nil
}

// reportOutcome prints the result line or the failure and reports success.
func reportOutcome(cmd *cobra.Command, path string, art *driver.Artifact, res int64, err error, s runSettings) bool {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if art != nil && s.timings {
		printTimings(stderr, path, art.Timer)
	}
	if err == nil {
		if !s.quiet {
			fmt.Fprintf(stdout, "Program returned: %d\n", res)
		}
		return true
	}

	var vmErr *vm.VMError
	if errors.As(err, &vmErr) {
		faultColor.Fprint(stderr, "fault: ")
		fmt.Fprintf(stderr, "%s: %s\n", path, vmErr)
		dumpTraceRing(cmd, stderr)
		return false
	}
	reportCompileError(stderr, path, err)
	return false
}

// reportCompileError renders parse errors with a caret under the source line.
func reportCompileError(w io.Writer, path string, err error) {
	var src []byte
	var perr *parser.Error
	if errors.As(err, &perr) {
		src, _ = os.ReadFile(path)
	} else {
		err = fmt.Errorf("%s: %w", path, err)
	}
	parser.FormatError(w, string(src), err, useColor())
}

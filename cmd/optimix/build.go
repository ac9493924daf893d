package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"optimix/internal/ast"
	"optimix/internal/driver"
	"optimix/internal/ir"
	"optimix/internal/parser"
	"optimix/internal/vm"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] <file>",
	Short: "Compile a program and print its IR",
	Long:  `Compile a program and print the IR, or write it as an .oir artifact with -o.`,
	Args:  cobra.ExactArgs(1),
	RunE:  buildExecution,
}

var execCmd = &cobra.Command{
	Use:   "exec [flags] <file.oir>",
	Short: "Execute a compiled .oir artifact",
	Args:  cobra.ExactArgs(1),
	RunE:  execExecution,
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Print the syntax tree of a program",
	Args:  cobra.ExactArgs(1),
	RunE:  parseExecution,
}

func init() {
	addCompileFlags(buildCmd)
	buildCmd.Flags().StringP("output", "o", "", "write an .oir artifact instead of printing")
	buildCmd.Flags().Bool("edges", false, "annotate blocks with predecessors and successors")

	execCmd.Flags().Int64("max-steps", 0, "abort after this many VM steps (0 = unlimited)")
	execCmd.Flags().Bool("lenient-phi", false, "treat a PHI without a matching predecessor as a no-op")
	execCmd.Flags().Bool("vm-trace", false, "trace every VM step to stderr")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	opts, err := compileOptions(cmd)
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	edges, err := cmd.Flags().GetBool("edges")
	if err != nil {
		return fmt.Errorf("failed to get edges flag: %w", err)
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	path := args[0]
	art, err := driver.CompileFile(cmd.Context(), path, opts)
	if err != nil {
		reportCompileError(cmd.ErrOrStderr(), path, err)
		return &exitError{err: err}
	}
	if timings {
		printTimings(cmd.ErrOrStderr(), path, art.Timer)
	}

	if output == "" {
		return ir.Dump(cmd.OutOrStdout(), art.Func, ir.DumpOptions{Color: useColor(), Edges: edges})
	}
	if err := ir.SaveArtifact(output, art.Func, art.SSA); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		okColor.Fprint(cmd.ErrOrStderr(), "wrote ")
		fmt.Fprintf(cmd.ErrOrStderr(), "%s (%d blocks, %d instructions)\n", output, len(art.Func.Blocks), art.Func.InstrCount())
	}
	return nil
}

func execExecution(cmd *cobra.Command, args []string) error {
	s, err := readExecSettings(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	art, err := driver.Load(cmd.Context(), path, s.opts)
	if err != nil {
		return err
	}
	rt := vm.NewRuntimeWithWriter(cmd.OutOrStdout())
	res, err := driver.Run(cmd.Context(), art, rt, s.opts)
	if err == nil {
		err = rt.Err()
	}
	if !reportOutcome(cmd, path, art, res, err, s) {
		return &exitError{err: err}
	}
	return nil
}

func readExecSettings(cmd *cobra.Command) (runSettings, error) {
	var s runSettings
	var err error
	flags := cmd.Flags()
	if s.opts.MaxSteps, err = flags.GetInt64("max-steps"); err != nil {
		return s, fmt.Errorf("failed to get max-steps flag: %w", err)
	}
	if s.opts.LenientPhi, err = flags.GetBool("lenient-phi"); err != nil {
		return s, fmt.Errorf("failed to get lenient-phi flag: %w", err)
	}
	if s.vmTrace, err = flags.GetBool("vm-trace"); err != nil {
		return s, fmt.Errorf("failed to get vm-trace flag: %w", err)
	}
	if s.vmTrace {
		s.opts.VMTrace = cmd.ErrOrStderr()
	}
	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return s, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if s.timings, err = flags.GetBool("timings"); err != nil {
		return s, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return s, nil
}

func parseExecution(cmd *cobra.Command, args []string) error {
	path := args[0]
	fn, src, err := parser.ParseFile(path)
	if err != nil {
		if src == nil {
			return err
		}
		parser.FormatError(cmd.ErrOrStderr(), string(src), err, useColor())
		return &exitError{err: err}
	}
	return ast.Dump(cmd.OutOrStdout(), fn)
}

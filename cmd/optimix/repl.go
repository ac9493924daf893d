package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"optimix/internal/ast"
	"optimix/internal/driver"
	"optimix/internal/ir"
	"optimix/internal/parser"
	"optimix/internal/vm"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive session",
	Long: `Type statements of a main function one at a time. A return statement compiles
and runs everything entered so far. Commands: :ir, :ast, :reset, :quit.`,
	Args: cobra.NoArgs,
	RunE: replExecution,
}

func init() {
	addCompileFlags(replCmd)
	replCmd.Flags().Int64("max-steps", 1_000_000, "abort after this many VM steps (0 = unlimited)")
}

func replExecution(cmd *cobra.Command, args []string) error {
	opts, err := compileOptions(cmd)
	if err != nil {
		return err
	}
	if opts.MaxSteps, err = cmd.Flags().GetInt64("max-steps"); err != nil {
		return fmt.Errorf("failed to get max-steps flag: %w", err)
	}

	newPrompt := color.GreenString(">") + " "
	contPrompt := color.GreenString(".") + " "
	cfg := &readline.Config{
		Prompt:            newPrompt,
		InterruptPrompt:   "^C",
		EOFPrompt:         ":quit",
		HistorySearchFold: true,
	}
	if dir, err := os.UserCacheDir(); err == nil {
		if err := os.MkdirAll(filepath.Join(dir, "optimix"), 0o755); err == nil {
			cfg.HistoryFile = filepath.Join(dir, "optimix", "repl-history")
		}
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return fmt.Errorf("failed to start line editor: %w", err)
	}
	defer rl.Close()

	s := newSession(opts, rl.Stdout(), rl.Stderr())
	pending := ""
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if pending == "" && line == "" {
				return nil
			}
			pending = ""
			rl.SetPrompt(newPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		pending += line + "\n"
		if unclosed(pending) {
			rl.SetPrompt(contPrompt)
			continue
		}
		input := pending
		pending = ""
		rl.SetPrompt(newPrompt)
		if s.handle(cmd.Context(), input) {
			return nil
		}
	}
}

// unclosed reports whether src opens more braces or parens than it closes.
func unclosed(src string) bool {
	depth := 0
	for _, r := range src {
		switch r {
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		}
	}
	return depth > 0
}

// session holds the statements entered so far.
type session struct {
	stmts []*ast.Stmt
	opts  driver.Options
	out   io.Writer
	errw  io.Writer
	n     int // inputs seen, for diagnostics
}

func newSession(opts driver.Options, out, errw io.Writer) *session {
	return &session{opts: opts, out: out, errw: errw}
}

func (s *session) function(extra ...*ast.Stmt) *ast.Func {
	body := append(append([]*ast.Stmt(nil), s.stmts...), extra...)
	return &ast.Func{Name: "main", Body: body}
}

// handle processes one input and reports whether the session should end.
func (s *session) handle(ctx context.Context, input string) bool {
	trimmed := strings.TrimSpace(input)
	switch trimmed {
	case "":
		return false
	case ":quit", ":q":
		return true
	case ":reset":
		s.stmts = nil
		fmt.Fprintln(s.out, "session cleared")
		return false
	case ":ast":
		if err := ast.Dump(s.out, s.function()); err != nil {
			fmt.Fprintln(s.errw, "error:", err)
		}
		return false
	case ":ir":
		art, err := driver.Compile(ctx, s.function(ast.Return(nil)), s.opts)
		if err != nil {
			fmt.Fprintln(s.errw, "error:", err)
			return false
		}
		if err := ir.Dump(s.out, art.Func, ir.DumpOptions{Color: useColor()}); err != nil {
			fmt.Fprintln(s.errw, "error:", err)
		}
		return false
	}
	if strings.HasPrefix(trimmed, ":") {
		fmt.Fprintf(s.errw, "unknown command %s (try :ir, :ast, :reset, :quit)\n", trimmed)
		return false
	}

	s.n++
	stmts, err := parser.ParseStatements(fmt.Sprintf("<input %d>", s.n), input)
	if err != nil {
		parser.FormatError(s.errw, input, err, useColor())
		return false
	}
	for i, st := range stmts {
		if st.Kind != ast.StmtReturn {
			continue
		}
		s.run(ctx, s.function(stmts[:i+1]...))
		// the return and anything after it are not kept
		s.stmts = append(s.stmts, stmts[:i]...)
		return false
	}
	s.stmts = append(s.stmts, stmts...)
	return false
}

func (s *session) run(ctx context.Context, fn *ast.Func) {
	art, err := driver.Compile(ctx, fn, s.opts)
	if err != nil {
		fmt.Fprintln(s.errw, "error:", err)
		return
	}
	res, err := driver.Run(ctx, art, vm.NewRuntimeWithWriter(s.out), s.opts)
	if err != nil {
		faultColor.Fprint(s.errw, "fault: ")
		fmt.Fprintln(s.errw, err)
		return
	}
	fmt.Fprintf(s.out, "Program returned: %d\n", res)
}

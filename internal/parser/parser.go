// Package parser turns optimix source text into syntax trees.
package parser

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"optimix/internal/ast"
)

var (
	programParser = participle.MustBuild[Program](
		participle.Lexer(Lexer),
		participle.Elide("Comment", "Whitespace"),
	)
	snippetParser = participle.MustBuild[Snippet](
		participle.Lexer(Lexer),
		participle.Elide("Comment", "Whitespace"),
	)
)

// Error is a syntax error with its source position.
type Error struct {
	Pos lexer.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Msg)
}

// ParseFile reads and parses one source file.
func ParseFile(path string) (*ast.Func, []byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}
	fn, err := ParseSource(path, string(src))
	return fn, src, err
}

// ParseSource parses a whole `int name() { ... }` program.
func ParseSource(name, src string) (*ast.Func, error) {
	prog, err := programParser.ParseString(name, src)
	if err != nil {
		return nil, wrapError(name, err)
	}
	body, err := convertStmts(prog.Body)
	if err != nil {
		return nil, err
	}
	return &ast.Func{Name: prog.Name, Body: body}, nil
}

// ParseStatements parses a statement list without the function wrapper.
func ParseStatements(name, src string) ([]*ast.Stmt, error) {
	sn, err := snippetParser.ParseString(name, src)
	if err != nil {
		return nil, wrapError(name, err)
	}
	return convertStmts(sn.Stmts)
}

func wrapError(name string, err error) error {
	var pe participle.Error
	if errors.As(err, &pe) {
		return &Error{Pos: pe.Position(), Msg: pe.Message()}
	}
	return &Error{Pos: lexer.Position{Filename: name}, Msg: err.Error()}
}

package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// FormatError writes a caret diagnostic for err against src. Errors that
// carry no position are written as a single line.
func FormatError(w io.Writer, src string, err error, useColor bool) {
	red := color.New(color.FgRed, color.Bold)
	caretColor := color.New(color.FgHiRed)
	if useColor {
		red.EnableColor()
		caretColor.EnableColor()
	} else {
		red.DisableColor()
		caretColor.DisableColor()
	}

	var pe *Error
	if !errors.As(err, &pe) {
		red.Fprintf(w, "error: %s\n", err)
		return
	}
	lines := strings.Split(src, "\n")
	if pe.Pos.Line <= 0 || pe.Pos.Line > len(lines) {
		red.Fprintf(w, "syntax error: %s\n", pe)
		return
	}

	line := strings.TrimRight(lines[pe.Pos.Line-1], "\r")
	col := max(pe.Pos.Column, 1)
	red.Fprintf(w, "syntax error in %s at line %d, column %d:\n", pe.Pos.Filename, pe.Pos.Line, pe.Pos.Column)
	fmt.Fprintln(w, line)
	caretColor.Fprintln(w, strings.Repeat(" ", col-1)+"^")
	fmt.Fprintf(w, "-> %s\n", pe.Msg)
}

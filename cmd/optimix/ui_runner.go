package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"optimix/internal/driver"
	"optimix/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides whether a multi-file run shows live progress on w.
func shouldUseTUI(mode uiMode, w io.Writer) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		f, ok := w.(*os.File)
		return ok && isTerminal(f)
	}
}

type runOutcome struct {
	results []driver.FileResult
	err     error
}

// runFilesWithUI runs driver.RunFiles while a progress view renders phase
// events on out.
func runFilesWithUI(ctx context.Context, out io.Writer, paths []string, opts driver.Options) ([]driver.FileResult, error) {
	events := make(chan ui.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	prev := opts.Observer
	opts.Observer = func(ev driver.PhaseEvent) {
		if prev != nil {
			prev(ev)
		}
		if ev.Status == driver.PhaseStart {
			events <- ui.Event{File: ev.Unit, Phase: ev.Name, Status: ui.StatusWorking}
		}
	}

	go func() {
		results, err := driver.RunFiles(ctx, paths, opts)
		for i := range results {
			status := ui.StatusDone
			if results[i].Err != nil {
				status = ui.StatusError
			}
			events <- ui.Event{File: results[i].Path, Status: status}
		}
		close(events)
		outcomeCh <- runOutcome{results: results, err: err}
	}()

	model := ui.NewProgressModel("running", paths, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the pipeline from blocking on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

package vm

import (
	"io"
	"os"
	"strconv"
	"sync"
)

// Runtime is the interface between the VM and the outside world.
type Runtime interface {
	// Print receives the value of a PRINT instruction.
	Print(v int64)
}

// DefaultRuntime writes each printed value on its own line.
type DefaultRuntime struct {
	w   io.Writer
	err error
}

// NewDefaultRuntime creates a runtime printing to stdout.
func NewDefaultRuntime() *DefaultRuntime {
	return &DefaultRuntime{w: os.Stdout}
}

// NewRuntimeWithWriter creates a runtime printing to w.
func NewRuntimeWithWriter(w io.Writer) *DefaultRuntime {
	return &DefaultRuntime{w: w}
}

func (r *DefaultRuntime) Print(v int64) {
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, strconv.FormatInt(v, 10)+"\n")
}

// Err returns the first write error, if any.
func (r *DefaultRuntime) Err() error {
	return r.err
}

// TestRuntime records printed values.
type TestRuntime struct {
	mu      sync.Mutex
	printed []int64
}

// NewTestRuntime creates an empty recording runtime.
func NewTestRuntime() *TestRuntime {
	return &TestRuntime{}
}

func (r *TestRuntime) Print(v int64) {
	r.mu.Lock()
	r.printed = append(r.printed, v)
	r.mu.Unlock()
}

// Printed returns a copy of the recorded values.
func (r *TestRuntime) Printed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.printed...)
}

package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(files ...string) (*progressModel, chan Event) {
	ch := make(chan Event, 16)
	m := NewProgressModel("running", files, ch).(*progressModel)
	return m, ch
}

func lineFor(t *testing.T, view, file string) string {
	t.Helper()
	for _, line := range strings.Split(view, "\n") {
		if strings.HasSuffix(line, " "+file) {
			return line
		}
	}
	require.Failf(t, "missing line", "no line for %s in:\n%s", file, view)
	return ""
}

func TestProgressModel_Phases(t *testing.T) {
	m, _ := newTestModel("a.mini", "b.mini")

	view := m.View()
	assert.Contains(t, view, "running (0/2)")
	assert.Contains(t, lineFor(t, view, "a.mini"), "queued")

	m.Update(eventMsg{File: "a.mini", Phase: "ssa", Status: StatusWorking})
	m.Update(eventMsg{File: "b.mini", Status: StatusError})
	view = m.View()
	assert.Contains(t, lineFor(t, view, "a.mini"), "ssa")
	assert.Contains(t, lineFor(t, view, "b.mini"), "error")
	assert.Contains(t, view, "running (1/2)")

	m.Update(eventMsg{File: "a.mini", Status: StatusDone})
	m.Update(eventMsg{File: "a.mini", Phase: "exec", Status: StatusWorking})
	assert.Contains(t, lineFor(t, m.View(), "a.mini"), "done")
}

func TestProgressModel_UnknownFileIgnored(t *testing.T) {
	m, _ := newTestModel("a.mini")
	_, cmd := m.Update(eventMsg{File: "zzz.mini", Status: StatusDone})
	assert.NotNil(t, cmd)
	assert.Equal(t, 0, m.finished())
}

func TestProgressModel_QuitsWhenEventsClose(t *testing.T) {
	m, ch := newTestModel("a.mini")
	close(ch)
	msg := m.listenForEvent()()
	assert.Equal(t, doneMsg{}, msg)

	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.True(t, m.done)
	assert.Contains(t, m.View(), "done: running (0/1)")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

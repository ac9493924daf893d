package observ

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerPhases(t *testing.T) {
	tm := NewTimer()
	done := tm.Track("parse")
	time.Sleep(time.Millisecond)
	done("3 stmts")
	idx := tm.Begin("ssa")
	tm.End(idx, "")
	tm.End(42, "ignored")

	phases := tm.Phases()
	require.Len(t, phases, 2)
	assert.Equal(t, "parse", phases[0].Name)
	assert.Equal(t, "3 stmts", phases[0].Note)
	assert.GreaterOrEqual(t, phases[0].Dur, time.Millisecond)
	assert.Equal(t, phases[0].Dur, tm.Duration("parse"))
	assert.Zero(t, tm.Duration("exec"))
}

func TestTimerReportAndSummary(t *testing.T) {
	assert.Equal(t, Report{}, NewTimer().Report())

	tm := NewTimer()
	tm.Track("build")("")
	tm.Track("exec")("120")

	r := tm.Report()
	require.Len(t, r.Phases, 2)
	assert.InDelta(t, r.Phases[0].DurationMS+r.Phases[1].DurationMS, r.TotalMS, 1e-9)

	s := tm.Summary()
	assert.True(t, strings.HasPrefix(s, "timings:\n  build "))
	assert.Contains(t, s, "// 120")
	assert.Contains(t, s, "  total ")
}

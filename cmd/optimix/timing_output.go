package main

import (
	"fmt"
	"io"
	"time"

	"optimix/internal/driver"
	"optimix/internal/observ"
)

func printTimings(out io.Writer, label string, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	dimColor.Fprintf(out, "%s ", label)
	fmt.Fprint(out, timer.Summary())
}

// logPhase is the -vvv phase observer.
func logPhase(ev driver.PhaseEvent) {
	switch {
	case ev.Status == driver.PhaseStart:
		return
	case ev.Err != nil:
		log.Infof("%s: %s failed after %.3f ms", ev.Unit, ev.Name, toMillis(ev.Elapsed))
	default:
		log.Infof("%s: %s %.3f ms %s", ev.Unit, ev.Name, toMillis(ev.Elapsed), ev.Note)
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

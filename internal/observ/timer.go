// Package observ measures how long the passes of a run take.
package observ

import (
	"fmt"
	"io"
	"strings"
	"time"
)

type phase struct {
	name    string
	started time.Time
	dur     time.Duration
	note    string
}

// Timer records named phases of one run. A nil *Timer records nothing, so
// callers can time unconditionally.
type Timer struct {
	phases []phase
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]phase, 0, 4)} }

// Begin opens a phase and returns its handle for End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, phase{name: name, started: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase opened by Begin. Unknown handles are ignored.
func (t *Timer) End(handle int, note string) {
	if t == nil || handle < 0 || handle >= len(t.phases) {
		return
	}
	p := &t.phases[handle]
	p.dur = time.Since(p.started)
	p.note = note
}

// Report returns the recorded phases in the order they were opened.
func (t *Timer) Report() Report {
	var r Report
	if t == nil {
		return r
	}
	for _, p := range t.phases {
		ms := millis(p.dur)
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: ms, Note: p.note})
		r.TotalMS += ms
	}
	return r
}

// Summary renders the report under a "timings:" header.
func (t *Timer) Summary() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	t.Report().Write(&sb, "  ")
	return sb.String()
}

// PhaseReport is the serializable form of one phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report lists phase durations in milliseconds.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Write prints one line per phase and a closing total, each prefixed by indent.
func (r Report) Write(w io.Writer, indent string) {
	for _, p := range r.Phases {
		fmt.Fprintf(w, "%s%-12s %7.2f ms", indent, p.Name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(w, "  // %s", p.Note)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%s%-12s %7.2f ms\n", indent, "total", r.TotalMS)
}

// Merge adds up reports phase by phase. Phases keep the order in which
// their names first appear; notes are dropped.
func Merge(reports ...Report) Report {
	var out Report
	index := make(map[string]int)
	for _, r := range reports {
		for _, p := range r.Phases {
			i, ok := index[p.Name]
			if !ok {
				i = len(out.Phases)
				index[p.Name] = i
				out.Phases = append(out.Phases, PhaseReport{Name: p.Name})
			}
			out.Phases[i].DurationMS += p.DurationMS
		}
		out.TotalMS += r.TotalMS
	}
	return out
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultRingSize is the ring capacity used when Config.RingSize is unset.
const DefaultRingSize = 4096

// Tracer receives trace events. Emit must be safe for concurrent use: units
// optimized in parallel share one tracer.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// StorageMode is a set of event sinks.
type StorageMode uint8

const (
	ModeStream StorageMode = 1 << iota // write events as they happen
	ModeRing                           // keep the most recent events for post-mortem dumps
	ModeBoth   = ModeStream | ModeRing
)

func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode parses stream, ring or both.
func ParseMode(s string) (StorageMode, error) {
	for _, m := range []StorageMode{ModeStream, ModeRing, ModeBoth} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
}

// Config selects the tracer built by New.
type Config struct {
	Level      Level
	Mode       StorageMode
	Output     io.Writer // stream destination; overrides OutputPath
	OutputPath string    // stream file, "-" or empty for stderr; .ndjson/.jsonl select NDJSON
	RingSize   int       // 0 means DefaultRingSize
}

// New builds the tracer for cfg: Nop when tracing is off, otherwise one
// tracer per sink in cfg.Mode, fanned out when there are several.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.Mode&ModeBoth == 0 || cfg.Mode&^ModeBoth != 0 {
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}

	var sinks []Tracer
	if cfg.Mode&ModeStream != 0 {
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, NewStreamTracer(w, cfg.Level, formatFor(cfg.OutputPath)))
	}
	if cfg.Mode&ModeRing != 0 {
		sinks = append(sinks, NewRingTracer(cfg.RingSize, cfg.Level))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return newMulti(cfg.Level, sinks...), nil
}

// RingOf returns the ring buffer inside t, or nil when t keeps no ring.
func RingOf(t Tracer) *RingTracer {
	switch t := t.(type) {
	case *RingTracer:
		return t
	case *multiTracer:
		for _, inner := range t.sinks {
			if ring := RingOf(inner); ring != nil {
				return ring
			}
		}
	}
	return nil
}

// openOutput opens the stream destination. Stderr is wrapped so closing the
// tracer leaves it open.
func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return struct{ io.Writer }{os.Stderr}, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, nil
}

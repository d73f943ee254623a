package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"scriptc/internal/config"
	"scriptc/internal/trace"
)

// flightRecorder is the ring buffer of the active tracer, dumped when a
// command fails or panics.
var flightRecorder *trace.RingTracer

// setupTracing initializes the tracer from the trace flags, falling back to
// the [trace] table of scriptc.toml for flags left unset. The returned cleanup
// dumps the ring buffer to stderr when failed is true.
func setupTracing(cmd *cobra.Command, defaults config.TraceConfig) (func(failed bool), error) {
	flags := cmd.Root().PersistentFlags()

	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	if !flags.Changed("trace") && defaults.Output != "" {
		traceOutput = defaults.Output
	}

	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	if !flags.Changed("trace-level") && defaults.Level != "" {
		levelStr = defaults.Level
	}

	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	if !flags.Changed("trace-mode") && defaults.Mode != "" {
		modeStr = defaults.Mode
	}

	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	heartbeatInterval, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	flightRecorder = trace.RingOf(tracer)

	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	stopHeartbeat := trace.StartHeartbeat(tracer, heartbeatInterval)

	errOut := cmd.ErrOrStderr()
	cleanup := func(failed bool) {
		stopHeartbeat()
		if failed {
			dumpTrace(errOut, "command failed")
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(errOut, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(errOut, "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

// dumpTrace writes the flight recorder, if any, to w.
func dumpTrace(w io.Writer, reason string) {
	if flightRecorder == nil {
		return
	}
	fmt.Fprintf(w, "trace: last events before %s:\n", reason)
	if err := flightRecorder.Dump(w, trace.FormatText); err != nil {
		fmt.Fprintf(w, "trace: dump error: %v\n", err)
	}
}

// dumpTraceOnPanic dumps the flight recorder and re-panics.
func dumpTraceOnPanic() {
	if r := recover(); r != nil {
		dumpTrace(os.Stderr, "panic")
		panic(r)
	}
}

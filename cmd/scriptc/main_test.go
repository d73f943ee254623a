package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"scriptc/internal/config"
	"scriptc/internal/js"
	"scriptc/internal/observ"
	"scriptc/internal/pipeline"
	"scriptc/internal/prune"
	"scriptc/internal/snapshot"
	"scriptc/internal/trace"
)

func newOptCommand(t *testing.T, cfg config.Config, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "opt"}
	addOptFlags(cmd)
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cmd.SetContext(context.WithValue(context.Background(), configKey{}, cfg))
	return cmd
}

func TestOptConfigOverrides(t *testing.T) {
	cmd := newOptCommand(t, config.Default(), "--strategy", "reachability", "--rounds", "3", "--wrapper-root", "Element", "--no-prune")
	cfg, err := optConfig(cmd)
	if err != nil {
		t.Fatalf("optConfig: %v", err)
	}
	if cfg.Prune.Strategy != "reachability" || cfg.Prune.MaxRounds != 3 || cfg.Wrapper.Root != "Element" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Prune.Enabled || !cfg.Canonicalize.Enabled {
		t.Fatalf("pass toggles = canonicalize %v, prune %v", cfg.Canonicalize.Enabled, cfg.Prune.Enabled)
	}
}

func TestOptConfigKeepsFileSettings(t *testing.T) {
	base := config.Default()
	base.Prune.MaxRounds = 7
	cfg, err := optConfig(newOptCommand(t, base))
	if err != nil {
		t.Fatalf("optConfig: %v", err)
	}
	if cfg.Prune.MaxRounds != 7 {
		t.Fatalf("MaxRounds = %d, want 7", cfg.Prune.MaxRounds)
	}
}

func TestOptConfigRejectsBadValues(t *testing.T) {
	if _, err := optConfig(newOptCommand(t, config.Default(), "--strategy", "greedy")); err == nil {
		t.Fatalf("unknown strategy accepted")
	}
	_, err := optConfig(newOptCommand(t, config.Default(), "--rounds", "0"))
	if err == nil || !strings.Contains(err.Error(), "max_rounds") {
		t.Fatalf("expected max_rounds error, got %v", err)
	}
}

func TestPrintOptResults(t *testing.T) {
	color.NoColor = true
	name := (&js.Program{}).NewName("dead", js.NameObfuscatable)
	results := []pipeline.FileResult{
		{Path: "a.snap", Summary: pipeline.Summary{Prune: []prune.Report{
			{Removed: []*js.Name{name}, Changed: true},
			{},
		}}},
		{Path: "b.snap", Err: errors.New("b.snap: corrupt snapshot")},
	}
	var out, errOut bytes.Buffer
	failed := printOptResults(&out, &errOut, results, false, false)
	if failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
	want := "✓ a.snap: 0 wrapper sites, 0 declarations retyped, 1 functions removed in 2 rounds\n"
	if out.String() != want {
		t.Fatalf("stdout = %q, want %q", out.String(), want)
	}
	if errOut.String() != "✗ b.snap: corrupt snapshot\n" {
		t.Fatalf("stderr = %q", errOut.String())
	}

	out.Reset()
	printOptResults(&out, &errOut, results[:1], true, false)
	if out.Len() != 0 {
		t.Fatalf("quiet output = %q", out.String())
	}
}

func TestDumpUnit(t *testing.T) {
	color.NoColor = true
	p := &js.Program{Name: "demo"}
	f := p.NewName("f", js.NameObfuscatable)
	p.Stmts = []*js.Stmt{js.NewFunctionDecl(f, nil, nil)}

	var out bytes.Buffer
	if err := dumpUnit(&out, &snapshot.Unit{Name: "demo", JS: p}, "all"); err != nil {
		t.Fatalf("dumpUnit: %v", err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "== hir: none ==\n== js: demo ==\nfunction f()") {
		t.Fatalf("dump = %q", got)
	}

	out.Reset()
	if err := dumpUnit(&out, &snapshot.Unit{Name: "demo", JS: p}, "hir"); err != nil {
		t.Fatalf("dumpUnit: %v", err)
	}
	if out.String() != "== hir: none ==\n" {
		t.Fatalf("hir-only dump = %q", out.String())
	}
}

func TestDumpTrace(t *testing.T) {
	ring := trace.NewRingTracer(8, trace.LevelPhase)
	trace.Begin(ring, trace.ScopePass, "prune", 0).End("")

	prev := flightRecorder
	flightRecorder = ring
	defer func() { flightRecorder = prev }()

	var out bytes.Buffer
	dumpTrace(&out, "command failed")
	got := out.String()
	if !strings.HasPrefix(got, "trace: last events before command failed:\n") || !strings.Contains(got, "prune") {
		t.Fatalf("dump = %q", got)
	}
}

func TestPrintBatchTimings(t *testing.T) {
	rep := observ.Report{TotalMS: 2, Phases: []observ.PhaseReport{{Name: "load", DurationMS: 2}}}
	results := []pipeline.FileResult{
		{Path: "a.snap", Timing: rep},
		{Path: "b.snap", Timing: rep},
		{Path: "c.snap", Err: errors.New("c.snap: missing")},
	}
	var out bytes.Buffer
	printBatchTimings(&out, results)
	got := out.String()
	if !strings.HasPrefix(got, "all 2 units:\n") || !strings.Contains(got, "load            4.00 ms") {
		t.Fatalf("batch timings = %q", got)
	}

	out.Reset()
	printBatchTimings(&out, results[:1])
	if out.Len() != 0 {
		t.Fatalf("single unit printed a batch total: %q", out.String())
	}
}

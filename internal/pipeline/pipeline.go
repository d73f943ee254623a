// Package pipeline runs the optimizer over compilation units: wrapper type
// canonicalization on the object-model IR, then dead function pruning on the
// script IR, repeated until a round removes nothing or the configured round
// limit is reached.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"scriptc/internal/config"
	"scriptc/internal/hir"
	"scriptc/internal/observ"
	"scriptc/internal/prune"
	"scriptc/internal/snapshot"
	"scriptc/internal/trace"
	"scriptc/internal/types"
	"scriptc/internal/wrapnorm"
)

// ErrUnknownWrapperRoot is returned when [wrapper].root names no class of the unit.
var ErrUnknownWrapperRoot = errors.New("unknown wrapper root")

// Request configures one unit run.
type Request struct {
	File     string // display name for progress events; defaults to the unit name
	Unit     *snapshot.Unit
	Config   config.Config
	Progress ProgressSink
	Timer    *observ.Timer // optional
}

// Summary captures what the passes did to one unit.
type Summary struct {
	Unit      string
	Canonical wrapnorm.Result
	Prune     []prune.Report // one report per executed round
	Timings   Timings
}

// Removed returns every function name pruned across all rounds.
func (s Summary) Removed() int {
	n := 0
	for _, rep := range s.Prune {
		n += len(rep.Removed)
	}
	return n
}

// Changed reports whether any pass modified the unit.
func (s Summary) Changed() bool {
	return s.Canonical.Changed || s.Removed() > 0
}

// Run executes the enabled passes over req.Unit in place.
func Run(ctx context.Context, req *Request) (sum Summary, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil || req.Unit == nil {
		return Summary{}, fmt.Errorf("pipeline: missing unit")
	}
	unit := req.Unit
	file := req.File
	if file == "" {
		file = unit.Name
	}
	sum.Unit = unit.Name

	ctx, span := trace.Start(trace.WithUnit(ctx, file), trace.ScopeUnit, unit.Name)
	defer func() {
		if err != nil {
			span.End("failed")
			return
		}
		span.WithExtra("replaced", strconv.Itoa(sum.Canonical.Replaced)).
			WithExtra("rounds", strconv.Itoa(len(sum.Prune))).
			WithExtra("removed", strconv.Itoa(sum.Removed())).
			End("")
	}()

	cfg := req.Config
	if err := cfg.Validate(); err != nil {
		return sum, fmt.Errorf("pipeline: %w", err)
	}

	if err := canonicalize(ctx, req, file, &sum); err != nil {
		return sum, err
	}
	if err := pruneRounds(ctx, req, file, &sum); err != nil {
		return sum, err
	}
	return sum, nil
}

func canonicalize(ctx context.Context, req *Request, file string, sum *Summary) error {
	prog := req.Unit.HIR
	if !req.Config.Canonicalize.Enabled || prog == nil {
		emit(req.Progress, file, StageCanonicalize, StatusSkipped, nil, 0)
		return nil
	}
	emit(req.Progress, file, StageCanonicalize, StatusWorking, nil, 0)
	start := time.Now()
	phase := req.Timer.Begin(string(StageCanonicalize))

	opts, err := WrapperOptions(prog, req.Config.Wrapper.Root)
	if err == nil {
		sum.Canonical, err = wrapnorm.Canonicalize(ctx, prog, opts)
	}
	elapsed := time.Since(start)
	sum.Timings.Add(StageCanonicalize, elapsed)
	if err != nil {
		req.Timer.End(phase, "failed")
		emit(req.Progress, file, StageCanonicalize, StatusError, err, elapsed)
		return err
	}
	req.Timer.End(phase, fmt.Sprintf("replaced=%d retyped=%d", sum.Canonical.Replaced, sum.Canonical.Retyped))
	emit(req.Progress, file, StageCanonicalize, StatusDone, nil, elapsed)
	return nil
}

func pruneRounds(ctx context.Context, req *Request, file string, sum *Summary) error {
	prog := req.Unit.JS
	if !req.Config.Prune.Enabled || prog == nil {
		emit(req.Progress, file, StagePrune, StatusSkipped, nil, 0)
		return nil
	}
	strategy, err := req.Config.PruneStrategy()
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	emit(req.Progress, file, StagePrune, StatusWorking, nil, 0)
	start := time.Now()
	phase := req.Timer.Begin(string(StagePrune))

	for round := 0; round < req.Config.Prune.MaxRounds; round++ {
		rep, err := prune.Run(ctx, prog, strategy)
		if err != nil {
			elapsed := time.Since(start)
			sum.Timings.Add(StagePrune, elapsed)
			req.Timer.End(phase, "failed")
			emit(req.Progress, file, StagePrune, StatusError, err, elapsed)
			return err
		}
		sum.Prune = append(sum.Prune, rep)
		if !rep.Changed {
			break
		}
	}

	elapsed := time.Since(start)
	sum.Timings.Add(StagePrune, elapsed)
	req.Timer.End(phase, fmt.Sprintf("rounds=%d removed=%d", len(sum.Prune), sum.Removed()))
	emit(req.Progress, file, StagePrune, StatusDone, nil, elapsed)
	return nil
}

// WrapperOptions resolves a configured wrapper root against prog. An empty
// root keeps the unit's own wrapper family.
func WrapperOptions(prog *hir.Program, root string) (wrapnorm.Options, error) {
	if root == "" {
		return wrapnorm.Options{}, nil
	}
	in := prog.Types
	id, ok := in.LookupNominal(root)
	if !ok {
		return wrapnorm.Options{}, fmt.Errorf("pipeline: %w %q in %s", ErrUnknownWrapperRoot, root, prog.Name)
	}
	if tt, _ := in.Lookup(id); tt.Kind != types.KindClass {
		return wrapnorm.Options{}, fmt.Errorf("pipeline: wrapper root %q is a %s, not a class", root, tt.Kind)
	}
	return wrapnorm.Options{
		Canonical: id,
		IsWrapper: func(t types.TypeID) bool { return in.IsSubclass(t, id) },
	}, nil
}

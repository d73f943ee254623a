package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"scriptc/internal/config"
	"scriptc/internal/observ"
	"scriptc/internal/snapshot"
)

// BatchRequest configures a run over several snapshot files.
type BatchRequest struct {
	Files    []string
	OutDir   string // empty rewrites each snapshot in place
	Config   config.Config
	Jobs     int // <= 0 uses GOMAXPROCS
	Progress ProgressSink
	Timings  bool // collect an observ report per file
	DryRun   bool // run the passes without writing results
}

// FileResult is the outcome of one file of a batch.
type FileResult struct {
	Path    string
	Output  string
	Summary Summary
	Timing  observ.Report
	Err     error
}

// RunFiles optimizes every file concurrently. Per-file failures are reported
// in the results; the returned error is reserved for cancellation and
// invalid requests.
func RunFiles(ctx context.Context, req BatchRequest) ([]FileResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(req.Files) == 0 {
		return nil, nil
	}
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}
	outputs, err := outputPaths(req.Files, req.OutDir)
	if err != nil {
		return nil, err
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for _, path := range req.Files {
		emit(req.Progress, path, StageLoad, StatusQueued, nil, 0)
	}

	// Each goroutine owns results[i].
	results := make([]FileResult, len(req.Files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))

	for i, path := range req.Files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = runFile(gctx, req, path, outputs[i])
			if err := gctx.Err(); err != nil {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runFile(ctx context.Context, req BatchRequest, path, output string) (res FileResult) {
	res = FileResult{Path: path, Output: output}
	var timer *observ.Timer
	if req.Timings {
		timer = observ.NewTimer()
	}
	defer func() { res.Timing = timer.Report() }()

	emit(req.Progress, path, StageLoad, StatusWorking, nil, 0)
	start := time.Now()
	phase := timer.Begin(string(StageLoad))
	unit, err := snapshot.ReadFile(path)
	timer.End(phase, "")
	if err != nil {
		emit(req.Progress, path, StageLoad, StatusError, err, time.Since(start))
		res.Err = err
		return res
	}
	emit(req.Progress, path, StageLoad, StatusDone, nil, time.Since(start))

	res.Summary, res.Err = Run(ctx, &Request{
		File:     path,
		Unit:     unit,
		Config:   req.Config,
		Progress: req.Progress,
		Timer:    timer,
	})
	if res.Err != nil {
		res.Err = fmt.Errorf("%s: %w", path, res.Err)
		return res
	}
	if req.DryRun {
		emit(req.Progress, path, StageWrite, StatusSkipped, nil, 0)
		return res
	}

	emit(req.Progress, path, StageWrite, StatusWorking, nil, 0)
	start = time.Now()
	phase = timer.Begin(string(StageWrite))
	err = snapshot.WriteFile(output, unit)
	timer.End(phase, "")
	elapsed := time.Since(start)
	res.Summary.Timings.Add(StageWrite, elapsed)
	if err != nil {
		emit(req.Progress, path, StageWrite, StatusError, err, elapsed)
		res.Err = err
		return res
	}
	emit(req.Progress, path, StageWrite, StatusDone, nil, elapsed)
	return res
}

// outputPaths maps inputs to their destinations and rejects two inputs that
// would be written to the same file.
func outputPaths(files []string, outDir string) ([]string, error) {
	out := make([]string, len(files))
	seen := make(map[string]string, len(files))
	for i, path := range files {
		dst := path
		if outDir != "" {
			dst = filepath.Join(outDir, filepath.Base(path))
		}
		clean := filepath.Clean(dst)
		if prev, dup := seen[clean]; dup {
			return nil, fmt.Errorf("%s and %s would both be written to %s", prev, path, dst)
		}
		seen[clean] = path
		out[i] = dst
	}
	return out, nil
}

// Package trace records span events for the scriptc passes.
//
// A Tracer is attached to a context with WithTracer and retrieved with
// FromContext; passes open a span around their work:
//
//	ctx, span := trace.Start(ctx, trace.ScopePass, "prune")
//	defer span.End("")
//
// WithUnit tags everything started below a context with the snapshot being
// processed, which keeps the events of concurrently optimized units apart.
//
// Enable tracing from the command line:
//
//	scriptc opt --trace=- --trace-level=pass unit.snap
//
// Levels filter by scope: LevelPhase keeps driver and pass spans, LevelDetail
// adds per-unit spans, LevelDebug keeps everything. The stream tracer writes
// events as they happen, the ring tracer keeps the most recent ones in memory.
package trace

package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
)

// FromContext returns the context's tracer, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithTracer attaches t to ctx. A nil tracer attaches Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// spanContext identifies the innermost open span and the unit being
// processed. Units run concurrently, so Unit is what tells their events apart.
type spanContext struct {
	SpanID uint64
	Unit   string
}

// currentSpan returns the span context carried by ctx, or the zero value.
func currentSpan(ctx context.Context) spanContext {
	if ctx != nil {
		if sc, ok := ctx.Value(spanKey{}).(spanContext); ok {
			return sc
		}
	}
	return spanContext{}
}

// withSpanContext attaches sc to ctx.
func withSpanContext(ctx context.Context, sc spanContext) context.Context {
	return context.WithValue(ctx, spanKey{}, sc)
}

// WithUnit tags every span and point started below ctx with unit.
func WithUnit(ctx context.Context, unit string) context.Context {
	sc := currentSpan(ctx)
	sc.Unit = unit
	return withSpanContext(ctx, sc)
}

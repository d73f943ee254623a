package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// nextSeq returns a monotonically increasing sequence number.
func nextSeq() uint64 { return seqCounter.Add(1) }

// nextSpanID returns a unique span ID.
func nextSpanID() uint64 { return spanCounter.Add(1) }

// Span tracks one open span. A span bound to Nop is inert; every method is
// safe on it and on nil.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	unit    string
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

var inert = &Span{tracer: Nop}

// Begin starts a root-level span of no particular unit under parent (0 for
// none) and emits its begin event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, spanContext{SpanID: parent})
}

// Start begins a span on the context's tracer. The span is parented to the
// context's current span and inherits its unit; the returned context carries
// the new span.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	sc := currentSpan(ctx)
	span := begin(FromContext(ctx), scope, name, sc)
	if span.id == 0 {
		return ctx, span
	}
	return withSpanContext(ctx, spanContext{SpanID: span.id, Unit: sc.Unit}), span
}

func begin(t Tracer, scope Scope, name string, sc spanContext) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return inert
	}
	s := &Span{
		tracer:  t,
		id:      nextSpanID(),
		parent:  sc.SpanID,
		unit:    sc.Unit,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:     at,
		Seq:      nextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Unit:     s.unit,
		Name:     s.name,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

func (s *Span) live() bool {
	return s != nil && s.id != 0 && s.tracer.Enabled()
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if !s.live() {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.started)
}

// WithExtra records a key-value pair for the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 4)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

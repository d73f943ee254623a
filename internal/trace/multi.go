package trace

import "errors"

// multiTracer copies every event to several sinks.
type multiTracer struct {
	sinks []Tracer
	level Level
}

func newMulti(level Level, sinks ...Tracer) *multiTracer {
	return &multiTracer{sinks: sinks, level: level}
}

func (t *multiTracer) Emit(ev *Event) {
	for _, sink := range t.sinks {
		cp := *ev
		sink.Emit(&cp)
	}
}

func (t *multiTracer) each(op func(Tracer) error) error {
	var errs []error
	for _, sink := range t.sinks {
		if err := op(sink); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *multiTracer) Flush() error  { return t.each(Tracer.Flush) }
func (t *multiTracer) Close() error  { return t.each(Tracer.Close) }
func (t *multiTracer) Level() Level  { return t.level }
func (t *multiTracer) Enabled() bool { return t.level > LevelOff }

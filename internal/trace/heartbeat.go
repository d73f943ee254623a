package trace

import (
	"strconv"
	"time"
)

// StartHeartbeat emits a driver-scope heartbeat every interval until the
// returned stop function is called. Heartbeats with no span ends between them
// point at a pass that stopped making progress. stop waits for the emitting
// goroutine and may be called more than once.
func StartHeartbeat(t Tracer, interval time.Duration) (stop func()) {
	if t == nil || !t.Enabled() || interval <= 0 {
		return func() {}
	}

	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for beat := 1; ; beat++ {
			select {
			case now := <-ticker.C:
				t.Emit(&Event{
					Time:   now,
					Seq:    nextSeq(),
					Kind:   KindHeartbeat,
					Scope:  ScopeDriver,
					Name:   "heartbeat",
					Detail: "#" + strconv.Itoa(beat),
				})
			case <-quit:
				return
			}
		}
	}()

	stopped := false
	return func() {
		if stopped {
			return
		}
		stopped = true
		close(quit)
		<-done
	}
}

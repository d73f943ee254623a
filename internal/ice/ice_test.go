package ice

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func raising() (err error) {
	defer Recover(&err)
	RaiseIn("prune", "initializer %q has no references", "$clinit")
	return nil
}

func TestRecoverTurnsRaiseIntoError(t *testing.T) {
	err := raising()
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if !strings.Contains(err.Error(), "prune: initializer") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	wrapped := fmt.Errorf("pipeline: %w", err)
	var ie *Error
	if !errors.As(wrapped, &ie) || ie.Pass != "prune" {
		t.Fatalf("errors.As lost the pass attribution: %v", wrapped)
	}
}

func TestRecoverRepanicsForeignValues(t *testing.T) {
	defer func() {
		r := recover()
		if r != "boom" {
			t.Fatalf("expected foreign panic to propagate, got %v", r)
		}
	}()
	func() {
		var err error
		defer Recover(&err)
		panic("boom")
	}()
}

func TestGuardWrapsCollaboratorPanics(t *testing.T) {
	err := func() (err error) {
		defer Recover(&err)
		Guard("wrapper predicate", func() { panic("bad type") })
		return nil
	}()
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if !strings.Contains(err.Error(), "wrapper predicate panicked: bad type") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
